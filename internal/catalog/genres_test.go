// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package catalog

import (
	"reflect"
	"testing"
)

func TestParseGenres(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field string
		want  []string
	}{
		{"python list", "['Fantasy', 'Young Adult', 'Fiction']", []string{"Fantasy", "Young Adult", "Fiction"}},
		{"double quotes", `["Classics", "Romance"]`, []string{"Classics", "Romance"}},
		{"no brackets", "Horror, Thriller", []string{"Horror", "Thriller"}},
		{"single bare label", "Poetry", []string{"Poetry"}},
		{"duplicates keep first", "['Fiction', 'Drama', 'Fiction']", []string{"Fiction", "Drama"}},
		{"padding around quotes", "[ ' Science Fiction ' ,'Space' ]", []string{"Science Fiction", "Space"}},
		{"empty tokens dropped", "['Fantasy', '', ,'Magic']", []string{"Fantasy", "Magic"}},
		{"empty list", "[]", nil},
		{"empty field", "", nil},
		{"whitespace field", "   ", nil},
		{"unbalanced open", "['Fantasy', 'Magic'", nil},
		{"unbalanced close", "'Fantasy', 'Magic']", nil},
		{"only punctuation", "[',', \"'\"]", nil},
		{"case is preserved", "['fantasy', 'Fantasy']", []string{"fantasy", "Fantasy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseGenres(tt.field)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseGenres(%q) = %#v, want %#v", tt.field, got, tt.want)
			}
		})
	}
}
