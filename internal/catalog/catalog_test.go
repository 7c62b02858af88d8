// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package catalog

import (
	"reflect"
	"testing"
)

func rec(title string, rating float64, pages int, genres ...string) Record {
	r := Record{Title: title, Genres: genres}
	if rating > 0 {
		r.Rating, r.HasRating = rating, true
	}
	if pages > 0 {
		r.NumPages, r.HasPages = pages, true
	}
	return r
}

func titlesOf(books []Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestNew_MergesLongLayout(t *testing.T) {
	t.Parallel()

	c := New([]Record{
		rec("Dune", 4.3, 896, "Science Fiction"),
		rec("Emma", 4.0, 474, "Classics"),
		rec("Dune", 1.0, 10, "Classics", "Science Fiction"),
		rec("", 5.0, 100, "Ignored"),
	})

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if got := titlesOf(c.Books()); !reflect.DeepEqual(got, []string{"Dune", "Emma"}) {
		t.Errorf("books = %v, want first-seen order [Dune Emma]", got)
	}

	dune := c.Books()[0]
	if !reflect.DeepEqual(dune.Genres, []string{"Science Fiction", "Classics"}) {
		t.Errorf("dune.Genres = %v", dune.Genres)
	}
	if dune.Rating == nil || *dune.Rating != 4.3 {
		t.Errorf("dune.Rating should come from the first row, got %v", dune.Rating)
	}
	if dune.NumPages == nil || *dune.NumPages != 896 {
		t.Errorf("dune.NumPages should come from the first row, got %v", dune.NumPages)
	}

	if got := c.Genres(); !reflect.DeepEqual(got, []string{"Classics", "Science Fiction"}) {
		t.Errorf("Genres() = %v", got)
	}
}

func TestNew_DoesNotAliasRecordGenres(t *testing.T) {
	t.Parallel()

	records := []Record{rec("Dune", 4.3, 0, "A"), rec("Dune", 4.3, 0, "B")}
	New(records)

	if !reflect.DeepEqual(records[0].Genres, []string{"A"}) {
		t.Errorf("records were modified: %v", records[0].Genres)
	}
}

func TestGet_CaseInsensitive(t *testing.T) {
	t.Parallel()

	c := New([]Record{rec("The Hobbit", 4.3, 300), rec("the hobbit", 2.0, 10)})

	for _, q := range []string{"The Hobbit", "THE HOBBIT", "  the hobbit "} {
		b, ok := c.Get(q)
		if !ok {
			t.Errorf("Get(%q) not found", q)
			continue
		}
		if b.Title != "The Hobbit" {
			t.Errorf("Get(%q) = %q, want first-seen The Hobbit", q, b.Title)
		}
	}
	if _, ok := c.Get("Hobbit"); ok {
		t.Error("Get should not match partial titles")
	}
}

func TestNew_MissingNumericsAreNil(t *testing.T) {
	t.Parallel()

	c := New([]Record{{Title: "Bare"}})
	b := c.Books()[0]
	if b.Rating != nil || b.NumPages != nil || b.NumRatings != nil || b.Price != nil {
		t.Errorf("missing numerics should be nil: %+v", b)
	}
	if b.Genres == nil {
		t.Error("Genres should be an empty slice, not nil")
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	c := New([]Record{
		rec("Dune", 4.3, 896, "Science Fiction", "Classics"),
		rec("Dune Messiah", 3.9, 256, "Science Fiction"),
		rec("Emma", 4.0, 474, "Classics", "Romance"),
		rec("Persuasion", 4.3, 249, "Classics", "Romance"),
		rec("Unrated", 0, 120, "Romance"),
		rec("No Pages", 4.5, 0, "Poetry"),
	})

	tests := []struct {
		name      string
		filter    Filter
		want      []string
		wantTotal int
	}{
		{
			name:      "no criteria sorts by rating with stable ties",
			filter:    Filter{},
			want:      []string{"No Pages", "Dune", "Persuasion", "Emma", "Dune Messiah", "Unrated"},
			wantTotal: 6,
		},
		{
			name:      "title substring ignores case",
			filter:    Filter{Title: "dUNE"},
			want:      []string{"Dune", "Dune Messiah"},
			wantTotal: 2,
		},
		{
			name:      "min rating drops unrated",
			filter:    Filter{MinRating: 4.0},
			want:      []string{"No Pages", "Dune", "Persuasion", "Emma"},
			wantTotal: 4,
		},
		{
			name:      "max pages drops books without a count",
			filter:    Filter{MaxPages: 300},
			want:      []string{"Persuasion", "Dune Messiah", "Unrated"},
			wantTotal: 3,
		},
		{
			name:      "genre matches any label",
			filter:    Filter{Genre: "romance"},
			want:      []string{"Persuasion", "Emma", "Unrated"},
			wantTotal: 3,
		},
		{
			name:      "genre substring",
			filter:    Filter{Genre: "fiction"},
			want:      []string{"Dune", "Dune Messiah"},
			wantTotal: 2,
		},
		{
			name:      "combined",
			filter:    Filter{Genre: "classics", MinRating: 4.1, MaxPages: 500},
			want:      []string{"Persuasion"},
			wantTotal: 1,
		},
		{
			name:      "limit and offset",
			filter:    Filter{Limit: 2, Offset: 1},
			want:      []string{"Dune", "Persuasion"},
			wantTotal: 6,
		},
		{
			name:      "offset past end",
			filter:    Filter{Offset: 10},
			want:      []string{},
			wantTotal: 6,
		},
		{
			name:      "no match",
			filter:    Filter{Title: "zzz"},
			want:      []string{},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := c.Filter(tt.filter)
			if got := titlesOf(res.Books); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
			if res.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", res.Total, tt.wantTotal)
			}
		})
	}
}
