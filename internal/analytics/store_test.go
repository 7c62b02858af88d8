// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package analytics

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/nextpage/internal/catalog"
	"github.com/tomtom215/nextpage/internal/metrics"
)

func ptr[T any](v T) *T { return &v }

func testBooks() []catalog.Book {
	return []catalog.Book{
		{Title: "A", Authors: "Ann", Format: "Paperback", Rating: ptr(4.0), NumRatings: ptr(int64(100)),
			NumPages: ptr(100), Price: ptr(10.0), CurrentReaders: ptr(int64(5)), WantToRead: ptr(int64(50))},
		{Title: "B", Authors: "Bob", Format: "Hardcover", Rating: ptr(4.5), NumRatings: ptr(int64(300)),
			NumPages: ptr(200), Price: ptr(20.0)},
		{Title: "C", Authors: "Ann", Format: "Paperback", Rating: ptr(3.0), NumRatings: ptr(int64(300)),
			NumPages: ptr(300), Price: ptr(30.0)},
		{Title: "D", Format: "Kindle Edition"},
	}
}

func newTestStore(t *testing.T, books []catalog.Book) *Store {
	t.Helper()
	s, err := New(context.Background(), books, Config{Threads: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rankedTitles(books []RankedBook) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func approx(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s = nil, want %v", name, want)
		return
	}
	if math.Abs(*got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, *got, want)
	}
}

func TestNew(t *testing.T) {
	s := newTestStore(t, testBooks())
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestDSN(t *testing.T) {
	got := dsn(Config{Threads: 2, MaxMemory: "256MB"})
	for _, want := range []string{":memory:?", "threads=2", "max_memory=256MB", "autoload_known_extensions=false"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn = %q, missing %q", got, want)
		}
	}
	if strings.Contains(dsn(Config{Threads: 1}), "max_memory") {
		t.Error("empty MaxMemory should be omitted")
	}
}

func TestTopByVoters(t *testing.T) {
	s := newTestStore(t, testBooks())

	got, err := s.TopByVoters(context.Background(), 0)
	if err != nil {
		t.Fatalf("TopByVoters() error = %v", err)
	}
	// B and C tie on votes; B is rated higher. D has no votes.
	if want := []string{"B", "C", "A"}; !reflect.DeepEqual(rankedTitles(got), want) {
		t.Errorf("TopByVoters() = %v, want %v", rankedTitles(got), want)
	}
	if got[0].Authors != "Bob" || *got[0].NumRatings != 300 {
		t.Errorf("first = %+v", got[0])
	}

	two, err := s.TopByVoters(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 2 {
		t.Errorf("TopByVoters(2) returned %d rows", len(two))
	}
}

func TestTopRated(t *testing.T) {
	s := newTestStore(t, testBooks())

	got, err := s.TopRated(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopRated() error = %v", err)
	}
	if want := []string{"B", "A", "C"}; !reflect.DeepEqual(rankedTitles(got), want) {
		t.Errorf("TopRated() = %v, want %v", rankedTitles(got), want)
	}
}

func TestPageLengthHistogram(t *testing.T) {
	s := newTestStore(t, testBooks())

	got, err := s.PageLengthHistogram(context.Background(), 2)
	if err != nil {
		t.Fatalf("PageLengthHistogram() error = %v", err)
	}
	want := []HistogramBin{
		{Lower: 100, Upper: 200, Count: 1},
		{Lower: 200, Upper: 300, Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PageLengthHistogram(2) = %+v, want %+v", got, want)
	}

	def, err := s.PageLengthHistogram(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(def) != DefaultHistogramBins {
		t.Errorf("default bins = %d, want %d", len(def), DefaultHistogramBins)
	}
	var total int64
	for _, b := range def {
		total += b.Count
	}
	if total != 3 {
		t.Errorf("histogram total = %d, want 3 books with page counts", total)
	}
}

func TestPageLengthHistogram_Degenerate(t *testing.T) {
	same := newTestStore(t, []catalog.Book{
		{Title: "X", NumPages: ptr(250)},
		{Title: "Y", NumPages: ptr(250)},
	})
	got, err := same.PageLengthHistogram(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if want := []HistogramBin{{Lower: 250, Upper: 250, Count: 2}}; !reflect.DeepEqual(got, want) {
		t.Errorf("single value histogram = %+v, want %+v", got, want)
	}

	none := newTestStore(t, []catalog.Book{{Title: "Z"}})
	got, err = none.PageLengthHistogram(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("no page counts = %+v, want empty non-nil", got)
	}
}

func TestFormatDistribution(t *testing.T) {
	s := newTestStore(t, testBooks())

	got, err := s.FormatDistribution(context.Background(), 30)
	if err != nil {
		t.Fatalf("FormatDistribution() error = %v", err)
	}
	want := []FormatShare{
		{Format: "Paperback", Count: 2, Percent: 50},
		{Format: OthersLabel, Count: 2, Percent: 50},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatDistribution(30) = %+v, want %+v", got, want)
	}

	all, err := s.FormatDistribution(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("default threshold kept %d formats, want 3", len(all))
	}
}

func TestMergeSmallShares(t *testing.T) {
	tests := []struct {
		name   string
		in     []FormatShare
		min    float64
		labels []string
	}{
		{"empty", nil, 3, []string{}},
		{"nothing small", []FormatShare{{Format: "a", Count: 5}, {Format: "b", Count: 5}}, 3, []string{"a", "b"}},
		{"tail merged", []FormatShare{{Format: "a", Count: 98}, {Format: "b", Count: 1}, {Format: "c", Count: 1}}, 3, []string{"a", OthersLabel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeSmallShares(tt.in, tt.min)
			labels := make([]string, 0, len(got))
			var pct float64
			for _, f := range got {
				labels = append(labels, f.Format)
				pct += f.Percent
			}
			if !reflect.DeepEqual(labels, tt.labels) {
				t.Errorf("labels = %v, want %v", labels, tt.labels)
			}
			if len(got) > 0 && math.Abs(pct-100) > 1e-9 {
				t.Errorf("percent total = %v, want 100", pct)
			}
		})
	}
}

func TestTopAuthorsByAverage(t *testing.T) {
	s := newTestStore(t, testBooks())

	got, err := s.TopAuthorsByAverage(context.Background(), 0)
	if err != nil {
		t.Fatalf("TopAuthorsByAverage() error = %v", err)
	}
	want := []AuthorAverage{
		{Authors: "Bob", AverageRating: 4.5, Books: 1},
		{Authors: "Ann", AverageRating: 3.5, Books: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopAuthorsByAverage() = %+v, want %+v", got, want)
	}
}

func TestDescribe(t *testing.T) {
	s := newTestStore(t, testBooks())

	got, err := s.Describe(context.Background(), "num_pages")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if got.Attribute != "num_pages" || got.Count != 3 {
		t.Errorf("Describe() = %+v", got)
	}
	approx(t, "mean", got.Mean, 200)
	approx(t, "std", got.Std, 100)
	approx(t, "min", got.Min, 100)
	approx(t, "p25", got.P25, 150)
	approx(t, "p50", got.P50, 200)
	approx(t, "p75", got.P75, 250)
	approx(t, "max", got.Max, 300)
}

func TestDescribe_Sparse(t *testing.T) {
	s := newTestStore(t, testBooks())

	// Only A has current_readers.
	got, err := s.Describe(context.Background(), "current_readers")
	if err != nil {
		t.Fatal(err)
	}
	if got.Count != 1 || got.Std != nil {
		t.Errorf("single value = %+v, want count 1 and nil std", got)
	}
	approx(t, "mean", got.Mean, 5)

	empty := newTestStore(t, []catalog.Book{{Title: "Z"}})
	got, err = empty.Describe(context.Background(), "price")
	if err != nil {
		t.Fatal(err)
	}
	if got.Count != 0 || got.Mean != nil || got.Max != nil {
		t.Errorf("no values = %+v, want count 0 and nil stats", got)
	}
}

func TestCorrelation(t *testing.T) {
	s := newTestStore(t, testBooks())

	got, err := s.Correlation(context.Background(), "num_pages", "price")
	if err != nil {
		t.Fatalf("Correlation() error = %v", err)
	}
	if got.Pairs != 3 {
		t.Errorf("pairs = %d, want 3", got.Pairs)
	}
	approx(t, "coefficient", got.Coefficient, 1)

	single, err := s.Correlation(context.Background(), "current_readers", "price")
	if err != nil {
		t.Fatal(err)
	}
	if single.Pairs != 1 || single.Coefficient != nil {
		t.Errorf("one pair = %+v, want nil coefficient", single)
	}
}

func TestScatter(t *testing.T) {
	s := newTestStore(t, testBooks())

	got, err := s.Scatter(context.Background(), "num_pages", "price", 2)
	if err != nil {
		t.Fatalf("Scatter() error = %v", err)
	}
	want := []Point{{Title: "A", X: 100, Y: 10}, {Title: "B", X: 200, Y: 20}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scatter() = %+v, want %+v", got, want)
	}
}

func TestUnknownAttribute(t *testing.T) {
	s := newTestStore(t, testBooks())
	ctx := context.Background()

	if _, err := s.Describe(ctx, "title; DROP TABLE books"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Describe error = %v, want ErrUnknownAttribute", err)
	}
	if _, err := s.Correlation(ctx, "price", "genres"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Correlation error = %v, want ErrUnknownAttribute", err)
	}
	if _, err := s.Scatter(ctx, "authors", "price", 10); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Scatter error = %v, want ErrUnknownAttribute", err)
	}
	for _, a := range Attributes {
		if _, err := column(a); err != nil {
			t.Errorf("listed attribute %q rejected: %v", a, err)
		}
	}
}

func TestQueryMetrics(t *testing.T) {
	s := newTestStore(t, testBooks())
	errCounter := metrics.AnalyticsQueryErrors.WithLabelValues("top_rated")
	before := testutil.ToFloat64(errCounter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.TopRated(ctx, 5); err == nil {
		t.Fatal("TopRated() with cancelled context should fail")
	}
	if got := testutil.ToFloat64(errCounter) - before; got != 1 {
		t.Errorf("analytics_query_errors delta = %v, want 1", got)
	}
}
