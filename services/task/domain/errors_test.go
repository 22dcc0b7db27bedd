package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_NonNil(t *testing.T) {
	for name, err := range map[string]error{
		"ErrNotFound":         ErrNotFound,
		"ErrVersionConflict":  ErrVersionConflict,
		"ErrInvalidArgument":  ErrInvalidArgument,
		"ErrStoreUnavailable": ErrStoreUnavailable,
	} {
		if err == nil {
			t.Fatalf("%s must not be nil", name)
		}
	}
}

func TestNotFoundError_MatchesSentinel(t *testing.T) {
	err := NewNotFound("item", 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("NotFoundError must match ErrNotFound")
	}
	if errors.Is(err, ErrVersionConflict) {
		t.Fatal("NotFoundError must not match ErrVersionConflict")
	}
	if got := err.Error(); got != "item [42] not found" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestNotFoundError_CarriesDetail(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewNotFound("person", 7))
	var nf *NotFoundError
	if !errors.As(wrapped, &nf) {
		t.Fatal("errors.As must find NotFoundError through wrapping")
	}
	if nf.Kind != "person" || nf.ID != 7 {
		t.Fatalf("unexpected detail: %+v", nf)
	}
}

func TestVersionConflictError_MatchesSentinel(t *testing.T) {
	err := NewVersionConflict("item", 42, 1, 3)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatal("VersionConflictError must match ErrVersionConflict")
	}
	want := "item [42] has a different version than the expected one. Expected [1], found [3]"
	if got := err.Error(); got != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", got, want)
	}
}

func TestVersionConflictError_CarriesBothVersions(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", NewVersionConflict("tag", 3, 5, 6))
	var vc *VersionConflictError
	if !errors.As(wrapped, &vc) {
		t.Fatal("errors.As must find VersionConflictError through wrapping")
	}
	if vc.Expected != 5 || vc.Found != 6 {
		t.Fatalf("unexpected versions: %+v", vc)
	}
}

func TestNewInvalidArgument_WrapsSentinel(t *testing.T) {
	err := NewInvalidArgument("field %q too long", "name")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("NewInvalidArgument must match ErrInvalidArgument")
	}
	if want := `invalid argument: field "name" too long`; err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("query item: %w: %w", ErrStoreUnavailable, errors.New("conn refused"))
	if !errors.Is(wrapped, ErrStoreUnavailable) {
		t.Fatal("errors.Is must match wrapped ErrStoreUnavailable")
	}
}
