// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package recommend

import "errors"

var (
	// ErrNotFound is returned when the queried title is not in the catalog.
	// Callers present it as an empty result.
	ErrNotFound = errors.New("title not found")

	// ErrInvalidK is returned for a negative result count.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrEmptyCatalog is returned by Build when no item survives construction.
	ErrEmptyCatalog = errors.New("catalog has no items")

	// ErrInvalidOptions is returned by Build for unusable options.
	ErrInvalidOptions = errors.New("invalid build options")
)
