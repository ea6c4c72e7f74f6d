package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

const maxDocumentBytes = 1 << 20

// DocumentService serves files below a fixed base directory, either by a
// canonicalised caller-supplied name or through a closed allow-list.
type DocumentService struct {
	baseDir   string
	allowList map[string]string
	log       zerolog.Logger
}

// NewDocumentService resolves baseDir to an absolute, symlink-free path. Every
// allow-list target must be a local path below baseDir.
//
// A base dir that does not exist is not an error: every read then fails with
// domain.ErrFileNotFound until it is created.
func NewDocumentService(baseDir string, allowList map[string]string, log zerolog.Logger) (*DocumentService, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("documents: base dir: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("base_dir", abs).Msg("documents base dir does not exist; file reads will return not found")
		resolved = abs
	case err != nil:
		return nil, fmt.Errorf("documents: base dir: %w", err)
	default:
		info, err := os.Stat(resolved)
		if err != nil {
			return nil, fmt.Errorf("documents: base dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("documents: base dir %q is not a directory", resolved)
		}
	}

	allowed := make(map[string]string, len(allowList))
	for name, target := range allowList {
		if !filepath.IsLocal(target) {
			return nil, fmt.Errorf("documents: allow-list entry %q points outside the base dir", name)
		}
		allowed[name] = filepath.Clean(target)
	}

	return &DocumentService{baseDir: resolved, allowList: allowed, log: log}, nil
}

// Read canonicalises filename (percent-decoding, absolute resolution, symlink
// resolution) and only then checks containment. Names that escape the base
// directory fail with domain.ErrPathTraversal, malformed names with
// domain.ErrInvalidFilename.
func (s *DocumentService) Read(_ context.Context, filename string) (*domain.Document, error) {
	rel, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}
	return s.load(rel)
}

// ReadAllowListed never passes name to the filesystem: unknown names fail with
// domain.ErrFileNotAllowed before any file is touched.
func (s *DocumentService) ReadAllowListed(_ context.Context, name string) (*domain.Document, error) {
	rel, ok := s.allowList[name]
	if !ok {
		return nil, domain.ErrFileNotAllowed
	}
	return s.load(rel)
}

func (s *DocumentService) resolve(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", domain.ErrInvalidFilename
	}

	decoded, err := url.PathUnescape(name)
	if err != nil || decoded == "" || strings.ContainsRune(decoded, 0) {
		return "", domain.ErrInvalidFilename
	}

	var candidate string
	if filepath.IsAbs(decoded) {
		candidate = filepath.Clean(decoded)
	} else {
		candidate = filepath.Join(s.baseDir, decoded)
	}

	// Missing files cannot be resolved; the lexical path is checked instead
	// and the os.Root read below still refuses to follow escaping links.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	}

	if !strings.HasPrefix(candidate, s.baseDir+string(filepath.Separator)) {
		s.log.Warn().Str("filename", name).Msg("path traversal rejected")
		return "", domain.ErrPathTraversal
	}

	rel, err := filepath.Rel(s.baseDir, candidate)
	if err != nil {
		return "", domain.ErrPathTraversal
	}
	return rel, nil
}

func (s *DocumentService) load(rel string) (*domain.Document, error) {
	root, err := os.OpenRoot(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("documents: open base dir: %w", err)
	}
	defer root.Close()

	f, err := root.Open(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrFileNotFound
		}
		s.log.Warn().Err(err).Str("path", rel).Msg("document open refused")
		return nil, domain.ErrPathTraversal
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return nil, domain.ErrFileNotFound
	}

	data, err := io.ReadAll(io.LimitReader(f, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("documents: read %s: %w", rel, err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("%w: document larger than %d bytes", domain.ErrInvalidInput, maxDocumentBytes)
	}

	return &domain.Document{Path: filepath.ToSlash(rel), Content: string(data)}, nil
}
