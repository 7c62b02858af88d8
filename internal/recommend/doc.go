// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

/*
Package recommend answers "books like this one" from content similarity.

# Feature Matrix

Build turns catalog records into one row per distinct title. Each row is a
vector over the sorted genre vocabulary (1 when the title carries the genre)
followed by one rating column holding the title's mean rating divided by the
rating scale, clamped to [0, 1]. Rows are ordered by title and every row keeps
its title, so results never depend on positional bookkeeping outside the
matrix.

	session, err := recommend.Build(records, recommend.BuildOptions{})
	items, err := session.Recommend(ctx, "The Hobbit", 5)

# Queries

A query looks the title up ignoring case, scores every other row by cosine
similarity and returns the k best. Scores tie-break by row order, which makes
results deterministic for a given input. The matrix is never modified after
Build, so a Session is safe for concurrent queries.

# Engine

Engine wraps a Session for the HTTP layer: request IDs, an LRU response cache,
Prometheus metrics and request logging.
*/
package recommend
