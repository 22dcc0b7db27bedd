package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	taskdomain "github.com/ghuser/taskmanager/services/task/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrNotFound", taskdomain.ErrNotFound, http.StatusNotFound},
		{"ErrVersionConflict", taskdomain.ErrVersionConflict, http.StatusConflict},
		{"ErrInvalidArgument", taskdomain.ErrInvalidArgument, http.StatusBadRequest},
		{"ErrStoreUnavailable", taskdomain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"typed NotFoundError", taskdomain.NewNotFound("item", 42), http.StatusNotFound},
		{"typed VersionConflictError", taskdomain.NewVersionConflict("item", 42, 1, 3), http.StatusConflict},
		{"wrapped ErrNotFound", fmt.Errorf("get item: %w", taskdomain.ErrNotFound), http.StatusNotFound},
		{"wrapped ErrInvalidArgument", taskdomain.NewInvalidArgument("description too long"), http.StatusBadRequest},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestWriteError_JSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, taskdomain.ErrNotFound)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if _, ok := body["error"]; !ok {
		t.Fatal("response body missing 'error' key")
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, taskdomain.ErrNotFound)

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}
