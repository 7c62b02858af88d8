// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

// Package catalog reads the book metadata export and provides the
// deduplicated, read-only view of it used by the API and analytics.
//
// The export may list a title once per genre ("long" layout) or once with a
// list-shaped genres field; both are normal input. Records keep every row as
// read. Books merge rows sharing a title.
package catalog

// Record is one parsed CSV row. Numeric fields carry a presence flag that is
// false when the cell was empty or not a finite number.
type Record struct {
	// Line is the 1-based line number of the row in the source file.
	Line int

	Title   string
	Authors string
	Genres  []string
	Format  string

	Rating    float64
	HasRating bool

	NumRatings    int64
	HasNumRatings bool

	NumPages int
	HasPages bool

	CurrentReaders    int64
	HasCurrentReaders bool

	WantToRead    int64
	HasWantToRead bool

	Price    float64
	HasPrice bool
}

// Book is one distinct title. Metadata comes from the first row seen for the
// title and Genres is the union over all of its rows. Missing numerics are nil.
type Book struct {
	Title          string   `json:"title"`
	Authors        string   `json:"authors,omitempty"`
	Genres         []string `json:"genres"`
	Format         string   `json:"format,omitempty"`
	Rating         *float64 `json:"rating_score,omitempty"`
	NumRatings     *int64   `json:"num_ratings,omitempty"`
	NumPages       *int     `json:"num_pages,omitempty"`
	CurrentReaders *int64   `json:"current_readers,omitempty"`
	WantToRead     *int64   `json:"want_to_read,omitempty"`
	Price          *float64 `json:"price,omitempty"`
}

func bookFromRecord(r *Record) Book {
	b := Book{
		Title:   r.Title,
		Authors: r.Authors,
		Format:  r.Format,
		Genres:  append([]string(nil), r.Genres...),
	}
	if r.HasRating {
		v := r.Rating
		b.Rating = &v
	}
	if r.HasNumRatings {
		v := r.NumRatings
		b.NumRatings = &v
	}
	if r.HasPages {
		v := r.NumPages
		b.NumPages = &v
	}
	if r.HasCurrentReaders {
		v := r.CurrentReaders
		b.CurrentReaders = &v
	}
	if r.HasWantToRead {
		v := r.WantToRead
		b.WantToRead = &v
	}
	if r.HasPrice {
		v := r.Price
		b.Price = &v
	}
	if b.Genres == nil {
		b.Genres = []string{}
	}
	return b
}
