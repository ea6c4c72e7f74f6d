package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

func TestDocumentHandler_Read(t *testing.T) {
	stub := &stubDocumentService{
		readFn: func(ctx context.Context, filename string) (*domain.Document, error) {
			if filename != "docs/guide.md" {
				t.Fatalf("unexpected filename %q", filename)
			}
			return &domain.Document{Path: filename, Content: "# guide"}, nil
		},
	}
	h := NewDocumentHandler(stub)

	c, rec := newContext(t, http.MethodPost, "/read", strings.NewReader(`{"filename":"docs/guide.md"}`), nil)
	if err := h.Read(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if doc.Path != "docs/guide.md" || doc.Content != "# guide" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestDocumentHandler_Read_InvalidBody(t *testing.T) {
	stub := &stubDocumentService{
		readFn: func(ctx context.Context, filename string) (*domain.Document, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewDocumentHandler(stub)

	for _, body := range []string{
		`{}`,
		`{"filename":""}`,
		`not json`,
		`{"filename":"` + strings.Repeat("a", 1025) + `"}`,
	} {
		c, _ := newContext(t, http.MethodPost, "/read", strings.NewReader(body), nil)
		if err := h.Read(c); !errors.Is(err, domain.ErrInvalidFilename) {
			t.Errorf("expected ErrInvalidFilename, got %v", err)
		}
	}
}

func TestDocumentHandler_Read_PropagatesRejection(t *testing.T) {
	stub := &stubDocumentService{
		readFn: func(ctx context.Context, filename string) (*domain.Document, error) {
			return nil, domain.ErrPathTraversal
		},
	}
	h := NewDocumentHandler(stub)

	c, rec := newContext(t, http.MethodPost, "/read", strings.NewReader(`{"filename":"../etc/passwd"}`), nil)
	if err := h.Read(c); !errors.Is(err, domain.ErrPathTraversal) {
		t.Fatalf("expected ErrPathTraversal, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("nothing must be written on rejection")
	}
}

func TestDocumentHandler_ReadAllowListed(t *testing.T) {
	var names []string
	stub := &stubDocumentService{
		allowListedFn: func(ctx context.Context, name string) (*domain.Document, error) {
			names = append(names, name)
			if name == "readme" {
				return &domain.Document{Path: "readme.txt", Content: "welcome"}, nil
			}
			return nil, domain.ErrFileNotAllowed
		},
	}
	h := NewDocumentHandler(stub)

	c, rec := newContext(t, http.MethodPost, "/read-no-validate", strings.NewReader(`{"filename":"readme"}`), nil)
	if err := h.ReadAllowListed(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "welcome") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	// Malformed bodies fall through to the allow-list with an empty name.
	c, _ = newContext(t, http.MethodPost, "/read-no-validate", strings.NewReader(`not json`), nil)
	if err := h.ReadAllowListed(c); !errors.Is(err, domain.ErrFileNotAllowed) {
		t.Fatalf("expected ErrFileNotAllowed, got %v", err)
	}
	if names[len(names)-1] != "" {
		t.Fatalf("expected empty name, got %q", names[len(names)-1])
	}
}

func TestRejectionReason(t *testing.T) {
	tests := map[error]string{
		domain.ErrPathTraversal:   "traversal",
		domain.ErrFileNotAllowed:  "not_allowed",
		domain.ErrInvalidFilename: "invalid",
		domain.ErrFileNotFound:    "not_found",
		errors.New("disk"):        "error",
	}
	for err, want := range tests {
		if got := rejectionReason(err); got != want {
			t.Errorf("rejectionReason(%v) = %q, want %q", err, got, want)
		}
	}
}
