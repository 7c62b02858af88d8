// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package catalog

import "strings"

// ParseGenres extracts genre labels from a list-shaped text field such as
// "['Fantasy', 'Young Adult']".
//
// The surrounding brackets are optional, but they must be balanced: a field
// that opens without closing (or the reverse) is malformed and yields no
// labels. Each comma-separated token is trimmed of whitespace and then of
// single and double quotes. Empty tokens are dropped and duplicates keep
// their first position. The result is nil when no labels remain.
func ParseGenres(field string) []string {
	s := strings.TrimSpace(field)
	if s == "" {
		return nil
	}

	opens := strings.HasPrefix(s, "[")
	closes := strings.HasSuffix(s, "]")
	if opens != closes {
		return nil
	}
	if opens {
		s = s[1 : len(s)-1]
	}

	var (
		labels []string
		seen   map[string]struct{}
	)
	for _, token := range strings.Split(s, ",") {
		label := strings.TrimSpace(strings.Trim(strings.TrimSpace(token), `'"`))
		if label == "" {
			continue
		}
		if seen == nil {
			seen = make(map[string]struct{})
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}
