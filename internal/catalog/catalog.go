// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package catalog

import "sort"

// Catalog is the immutable, deduplicated set of books. It is safe for
// concurrent reads.
type Catalog struct {
	books   []Book
	byTitle map[string]int // TitleKey -> index into books
	genres  []string
}

// New merges records by exact title. Books appear in the order their title
// was first seen; record metadata comes from that first row and genres are
// unioned across rows in first-seen order. Records with an empty title are
// ignored.
func New(records []Record) *Catalog {
	c := &Catalog{byTitle: make(map[string]int)}

	exact := make(map[string]int)
	seenGenre := make(map[int]map[string]struct{})
	for i := range records {
		rec := &records[i]
		if rec.Title == "" {
			continue
		}

		idx, ok := exact[rec.Title]
		if !ok {
			idx = len(c.books)
			exact[rec.Title] = idx
			c.books = append(c.books, bookFromRecord(rec))
			set := make(map[string]struct{}, len(rec.Genres))
			for _, g := range rec.Genres {
				set[g] = struct{}{}
			}
			seenGenre[idx] = set

			key := TitleKey(rec.Title)
			if _, taken := c.byTitle[key]; !taken {
				c.byTitle[key] = idx
			}
			continue
		}

		set := seenGenre[idx]
		for _, g := range rec.Genres {
			if _, dup := set[g]; dup {
				continue
			}
			set[g] = struct{}{}
			c.books[idx].Genres = append(c.books[idx].Genres, g)
		}
	}

	vocab := make(map[string]struct{})
	for _, set := range seenGenre {
		for g := range set {
			vocab[g] = struct{}{}
		}
	}
	c.genres = make([]string, 0, len(vocab))
	for g := range vocab {
		c.genres = append(c.genres, g)
	}
	sort.Strings(c.genres)

	return c
}

// Len returns the number of distinct books.
func (c *Catalog) Len() int {
	return len(c.books)
}

// Books returns the books in catalog order. The slice must not be modified.
func (c *Catalog) Books() []Book {
	return c.books
}

// Genres returns every genre label in byte order.
func (c *Catalog) Genres() []string {
	return c.genres
}

// Get looks a book up by title, ignoring case.
func (c *Catalog) Get(title string) (Book, bool) {
	idx, ok := c.byTitle[TitleKey(title)]
	if !ok {
		return Book{}, false
	}
	return c.books[idx], true
}
