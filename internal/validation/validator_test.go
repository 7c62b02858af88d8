// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package validation

import (
	"strings"
	"sync"
	"testing"
)

type similarRequest struct {
	Title string `query:"title" validate:"notblank,max=20"`
	K     int    `query:"k" validate:"min=0,max=100"`
}

type pageRequest struct {
	Limit  int    `query:"limit" validate:"min=1,max=100"`
	Offset int    `query:"offset" validate:"min=0"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc"`
	Note   string `validate:"omitempty,max=3"`
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one shared instance")
	}
}

func TestGetValidator_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if verr := ValidateStruct(&similarRequest{Title: "Dune", K: 5}); verr != nil {
				t.Errorf("ValidateStruct() = %v", verr)
			}
		}()
	}
	wg.Wait()
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"valid", &similarRequest{Title: "Dune", K: 0}, "", "", ""},
		{"blank title", &similarRequest{Title: "   ", K: 1}, "title", "notblank", "title must not be blank"},
		{"long title", &similarRequest{Title: strings.Repeat("x", 21)}, "title", "max", "title must be at most 20 characters"},
		{"negative k", &similarRequest{Title: "Dune", K: -1}, "k", "min", "k must be at least 0"},
		{"large k", &similarRequest{Title: "Dune", K: 101}, "k", "max", "k must be at most 100"},
		{"bad order", &pageRequest{Limit: 10, Order: "up"}, "order", "oneof", "order must be one of: asc desc"},
		{"field without query tag", &pageRequest{Limit: 10, Note: "long"}, "Note", "max", "Note must be at most 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field != tt.wantField || errs[0].Tag != tt.wantTag {
				t.Errorf("field/tag = %s/%s, want %s/%s", errs[0].Field, errs[0].Tag, tt.wantField, tt.wantTag)
			}
			if errs[0].Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		verr := ValidateStruct(&similarRequest{Title: "Dune", K: -1})
		apiErr := verr.ToAPIError()
		if apiErr.Code != CodeValidationError {
			t.Errorf("code = %q, want %q", apiErr.Code, CodeValidationError)
		}
		if apiErr.Message != "k must be at least 0" {
			t.Errorf("message = %q", apiErr.Message)
		}
		if apiErr.Details["field"] != "k" {
			t.Errorf("details = %v", apiErr.Details)
		}
	})

	t.Run("multiple", func(t *testing.T) {
		verr := ValidateStruct(&pageRequest{Limit: 0, Offset: -1})
		if verr == nil || len(verr.Errors()) != 2 {
			t.Fatalf("want two errors, got %v", verr)
		}
		apiErr := verr.ToAPIError()
		if !strings.Contains(apiErr.Message, "limit") || !strings.Contains(apiErr.Message, "offset") {
			t.Errorf("message = %q, want both fields", apiErr.Message)
		}
		fields, ok := apiErr.Details["fields"].([]FieldError)
		if !ok || len(fields) != 2 {
			t.Errorf("details = %v", apiErr.Details)
		}
	})

	t.Run("empty", func(t *testing.T) {
		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Code != CodeValidationError || apiErr.Message != "Validation failed" {
			t.Errorf("empty = %+v", apiErr)
		}
	})
}

func TestValidateStruct_NonStruct(t *testing.T) {
	verr := ValidateStruct("not a struct")
	if verr == nil {
		t.Fatal("ValidateStruct(string) should fail")
	}
	if verr.Errors()[0].Field != "unknown" {
		t.Errorf("field = %q, want unknown", verr.Errors()[0].Field)
	}
}
