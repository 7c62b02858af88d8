// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package catalog

import (
	"strings"
	"unicode"
)

// TitleKey returns the lookup key for a title. Two titles have the same key
// exactly when strings.EqualFold reports them equal after trimming, so a map
// keyed by TitleKey gives case-insensitive exact matching.
//
// Each rune is replaced by the smallest rune of its simple case folding
// orbit, which is the equivalence EqualFold uses. strings.ToLower is not
// enough: final sigma and the Kelvin sign lower-case to different runes
// than their fold partners.
func TitleKey(title string) string {
	return strings.Map(foldRune, strings.TrimSpace(title))
}

func foldRune(r rune) rune {
	canonical := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < canonical {
			canonical = f
		}
	}
	return canonical
}
