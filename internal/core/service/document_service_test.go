package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// newDocumentFixture lays out:
//
//	<tmp>/secret.txt          outside the base dir
//	<tmp>/public/readme.txt
//	<tmp>/public/docs/guide.md
//	<tmp>/public/escape -> <tmp>/secret.txt
func newDocumentFixture(t *testing.T) (*DocumentService, string) {
	t.Helper()
	tmp := t.TempDir()
	base := filepath.Join(tmp, "public")

	writeFile(t, filepath.Join(tmp, "secret.txt"), "top secret")
	writeFile(t, filepath.Join(base, "readme.txt"), "hello")
	writeFile(t, filepath.Join(base, "docs", "guide.md"), "# guide")
	if err := os.Symlink(filepath.Join(tmp, "secret.txt"), filepath.Join(base, "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	svc, err := NewDocumentService(base, map[string]string{
		"readme": "readme.txt",
		"guide":  "docs/guide.md",
	}, discardLogger)
	if err != nil {
		t.Fatalf("NewDocumentService: %v", err)
	}
	return svc, base
}

func TestDocumentService_Read_Allowed(t *testing.T) {
	svc, base := newDocumentFixture(t)

	tests := map[string]string{
		"readme.txt":                      "hello",
		"docs/../readme.txt":              "hello",
		"docs%2Fguide.md":                 "# guide",
		filepath.Join(base, "readme.txt"): "hello",
		"./readme.txt":                    "hello",
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := svc.Read(context.Background(), name)
			if err != nil {
				t.Fatalf("Read(%q): %v", name, err)
			}
			if doc.Content != want {
				t.Fatalf("got %q, want %q", doc.Content, want)
			}
		})
	}
}

func TestDocumentService_Read_Traversal(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	payloads := []string{
		"../secret.txt",
		"../../../../etc/passwd",
		"docs/../../secret.txt",
		"..%2Fsecret.txt",
		"%2e%2e%2fsecret.txt",
		"%2E%2E/secret.txt",
		"/etc/passwd",
		"escape",
		"..",
		".",
	}

	for _, p := range payloads {
		t.Run(p, func(t *testing.T) {
			doc, err := svc.Read(context.Background(), p)
			if !errors.Is(err, domain.ErrPathTraversal) {
				t.Fatalf("expected ErrPathTraversal, got %v", err)
			}
			if doc != nil {
				t.Fatalf("no content may be returned")
			}
		})
	}
}

func TestDocumentService_Read_InvalidNames(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	for _, name := range []string{"", "readme.txt\x00.png", "readme%00.txt", "%zz"} {
		if _, err := svc.Read(context.Background(), name); !errors.Is(err, domain.ErrInvalidFilename) {
			t.Fatalf("Read(%q): expected ErrInvalidFilename, got %v", name, err)
		}
	}
}

func TestDocumentService_Read_NotFound(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	for _, name := range []string{"missing.txt", "docs"} {
		if _, err := svc.Read(context.Background(), name); !errors.Is(err, domain.ErrFileNotFound) {
			t.Fatalf("Read(%q): expected ErrFileNotFound, got %v", name, err)
		}
	}
}

func TestDocumentService_Read_TooLarge(t *testing.T) {
	svc, base := newDocumentFixture(t)
	writeFile(t, filepath.Join(base, "big.bin"), strings.Repeat("x", maxDocumentBytes+1))

	if _, err := svc.Read(context.Background(), "big.bin"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDocumentService_ReadAllowListed(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	doc, err := svc.ReadAllowListed(context.Background(), "guide")
	if err != nil {
		t.Fatalf("ReadAllowListed: %v", err)
	}
	if doc.Content != "# guide" || doc.Path != "docs/guide.md" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	for _, name := range []string{"readme.txt", "../secret.txt", "escape", ""} {
		if _, err := svc.ReadAllowListed(context.Background(), name); !errors.Is(err, domain.ErrFileNotAllowed) {
			t.Fatalf("ReadAllowListed(%q): expected ErrFileNotAllowed, got %v", name, err)
		}
	}
}

func TestDocumentService_ReadAllowListed_UnknownNameSkipsFilesystem(t *testing.T) {
	svc, base := newDocumentFixture(t)
	if err := os.RemoveAll(base); err != nil {
		t.Fatalf("remove base: %v", err)
	}

	if _, err := svc.ReadAllowListed(context.Background(), "secret"); !errors.Is(err, domain.ErrFileNotAllowed) {
		t.Fatalf("expected ErrFileNotAllowed without filesystem access, got %v", err)
	}
}

func TestNewDocumentService_RejectsEscapingAllowList(t *testing.T) {
	base := t.TempDir()

	for _, target := range []string{"../x", "/etc/passwd", ""} {
		if _, err := NewDocumentService(base, map[string]string{"bad": target}, discardLogger); err == nil {
			t.Fatalf("target %q: expected error", target)
		}
	}
}

func TestNewDocumentService_MissingBase(t *testing.T) {
	svc, err := NewDocumentService(filepath.Join(t.TempDir(), "nope"), map[string]string{"readme": "readme.txt"}, discardLogger)
	if err != nil {
		t.Fatalf("missing base dir must not fail startup: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.Read(ctx, "readme.txt"); !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("Read: expected ErrFileNotFound, got %v", err)
	}
	if _, err := svc.ReadAllowListed(ctx, "readme"); !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("ReadAllowListed: expected ErrFileNotFound, got %v", err)
	}
	if _, err := svc.Read(ctx, "../secret.txt"); !errors.Is(err, domain.ErrPathTraversal) {
		t.Fatalf("traversal must still be rejected, got %v", err)
	}
}

func TestNewDocumentService_BaseIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	writeFile(t, path, "x")
	if _, err := NewDocumentService(path, nil, discardLogger); err == nil {
		t.Fatalf("expected error for a base path that is a file")
	}
}
