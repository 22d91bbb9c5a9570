package documents

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marking-system/backend/internal/config"
	"github.com/marking-system/backend/internal/similarity"
)

// ErrInvalidPath is returned for a query file or reference folder that cannot be used
var ErrInvalidPath = errors.New("documents: invalid path")

// Loader reads the submitted document and the reference folder from disk
type Loader struct {
	queryExts     map[string]bool
	referenceExts map[string]bool
}

func NewLoader(cfg config.DocumentsConfig) *Loader {
	return &Loader{
		queryExts:     extensionSet(cfg.QueryExtensions),
		referenceExts: extensionSet(cfg.ReferenceExtensions),
	}
}

// LoadQuery reads the document under review. The path must name a regular
// file with an accepted extension.
func (l *Loader) LoadQuery(path string) (similarity.Document, error) {
	if path == "" {
		return similarity.Document{}, fmt.Errorf("%w: empty assignment path", ErrInvalidPath)
	}
	if !l.queryExts[extension(path)] {
		return similarity.Document{}, fmt.Errorf("%w: %s is not one of %s", ErrInvalidPath, path, joinExtensions(l.queryExts))
	}

	info, err := os.Stat(path)
	if err != nil {
		return similarity.Document{}, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if !info.Mode().IsRegular() {
		return similarity.Document{}, fmt.Errorf("%w: %s is not a regular file", ErrInvalidPath, path)
	}

	return readDocument(path)
}

// LoadReferences reads every file in dir with an accepted reference extension,
// in name order. Sub-directories are not descended into.
func (l *Loader) LoadReferences(dir string) ([]similarity.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list reference folder: %w", err)
	}

	var docs []similarity.Document
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !l.referenceExts[extension(entry.Name())] {
			continue
		}
		doc, err := readDocument(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Confine resolves path inside root. Relative paths are taken from root and
// absolute ones must already lie under it; anything that escapes root is
// ErrInvalidPath. The check is lexical, symlinks are not followed.
func Confine(root, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	base, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrInvalidPath, path, base)
	}
	return path, nil
}

func readDocument(path string) (similarity.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return similarity.Document{}, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	var content string
	switch extension(path) {
	case ".html", ".htm":
		content, err = ExtractText(f)
		if err != nil {
			return similarity.Document{}, fmt.Errorf("parsing error in %s: %w", path, err)
		}
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			return similarity.Document{}, fmt.Errorf("failed to read document: %w", err)
		}
		content = string(data)
	}

	return similarity.Document{
		ID:      filepath.Base(path),
		Content: content,
	}, nil
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(ext)] = true
	}
	return set
}

func joinExtensions(set map[string]bool) string {
	exts := make([]string, 0, len(set))
	for ext := range set {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
