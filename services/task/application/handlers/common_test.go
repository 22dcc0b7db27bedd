package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/taskmanager/services/task/domain"
)

func requestWithID(id string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/items/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestIDParam(t *testing.T) {
	id, err := idParam(requestWithID("42"))
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}

	for _, raw := range []string{"abc", "0", "-3", ""} {
		if _, err := idParam(requestWithID(raw)); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("id %q: expected ErrInvalidArgument, got %v", raw, err)
		}
	}
}

func TestIfMatchVersion(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   *int64
		bad    bool
	}{
		{name: "missing", header: "", want: nil},
		{name: "wildcard", header: "*", want: nil},
		{name: "plain", header: "3", want: ptr(3)},
		{name: "quoted", header: `"7"`, want: ptr(7)},
		{name: "zero", header: "0", want: ptr(0)},
		{name: "negative", header: "-1", bad: true},
		{name: "garbage", header: "abc", bad: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/items/1", nil)
			if tc.header != "" {
				r.Header.Set("If-Match", tc.header)
			}
			got, err := ifMatchVersion(r)
			if tc.bad {
				if !errors.Is(err, domain.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("expected nil, got %d", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("expected %d, got %v", *tc.want, got)
			}
		})
	}
}

func TestPageRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/items?page=2&size=10", nil)
	page := pageRequest(r)
	if page.Page != 2 || page.Size != 10 {
		t.Fatalf("expected 2/10, got %d/%d", page.Page, page.Size)
	}

	r = httptest.NewRequest(http.MethodGet, "/items", nil)
	page = pageRequest(r)
	if page.Page != 0 || page.Size != 100 {
		t.Fatalf("expected defaults 0/100, got %d/%d", page.Page, page.Size)
	}

	r = httptest.NewRequest(http.MethodGet, "/items?page=-1&size=9999", nil)
	page = pageRequest(r)
	if page.Page != 0 || page.Size != 1000 {
		t.Fatalf("expected clamped 0/1000, got %d/%d", page.Page, page.Size)
	}
}

func ptr(v int64) *int64 { return &v }
