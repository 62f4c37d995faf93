package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
	"github.com/custodia-labs/file-prompts/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// outsideRoot replaces paths that cannot be shown relative to the scan root.
const outsideRoot = "<file outside base directory>"

// SkipFunc is notified of every rejected file. relPath is already sanitised
// and err never carries raw filesystem error text.
type SkipFunc func(relPath string, err error)

// Loader scans a single directory level for documents.
//
// Every candidate goes through, in order: extension filter, symlink
// rejection on the unresolved entry, canonicalisation, root containment,
// size limit, bounded read, UTF-8 check and frontmatter parsing. A failure
// in any step skips only that file.
type Loader struct {
	parser driven.DocumentParser
	logger *zap.Logger
	onSkip SkipFunc
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for skip warnings.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// WithSkipHandler registers a callback for rejected files.
func WithSkipHandler(fn SkipFunc) Option {
	return func(ld *Loader) { ld.onSkip = fn }
}

// NewLoader creates a loader that parses files with parser.
func NewLoader(parser driven.DocumentParser, opts ...Option) *Loader {
	l := &Loader{
		parser: parser,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every matching file directly inside directory.
// Entries are visited in lexical order, so when two files declare the same
// name the lexically later file wins.
func (l *Loader) Load(directory string, policy domain.LoadPolicy) (domain.Collection, error) {
	root, err := resolveRoot(directory, policy.Kind)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%s directory not readable: %w", policy.Kind.Title(), domain.ErrDirectoryNotFound)
	}

	docs := make(domain.Collection)
	for _, entry := range entries {
		if !matchesExtension(entry.Name(), policy.Extensions) {
			continue
		}

		path := filepath.Join(root, entry.Name())
		doc, err := l.loadFile(root, path, policy)
		if err != nil {
			l.skip(root, path, policy.Kind, err)
			continue
		}

		if prev, ok := docs[doc.Name]; ok {
			l.logger.Debug("duplicate name, later file wins",
				zap.String("kind", policy.Kind.String()),
				zap.String("name", doc.Name),
				zap.String("replaced", sanitizePath(root, prev.SourcePath)),
				zap.String("file", sanitizePath(root, path)),
			)
		}
		docs[doc.Name] = domain.LoadedDocument{Document: *doc, SourcePath: path}
	}

	if len(docs) == 0 {
		if policy.RequireDocuments {
			return nil, fmt.Errorf("%w: no valid %s files found",
				domain.ErrNoValidDocuments, strings.Join(policy.Extensions, ", "))
		}
		l.logger.Info("no valid documents found",
			zap.String("kind", policy.Kind.String()),
			zap.String("directory", filepath.Base(root)),
		)
		return docs, nil
	}

	l.logger.Debug("documents loaded",
		zap.String("kind", policy.Kind.String()),
		zap.Int("count", len(docs)),
	)
	return docs, nil
}

// resolveRoot returns the canonical absolute scan root.
func resolveRoot(directory string, kind domain.DocumentKind) (string, error) {
	abs, err := filepath.Abs(directory)
	if err != nil {
		return "", fmt.Errorf("%s directory not found: %w", kind.Title(), domain.ErrDirectoryNotFound)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%s directory not found: %w", kind.Title(), domain.ErrDirectoryNotFound)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s path: %w", kind.Title(), domain.ErrNotADirectory)
	}

	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%s directory not found: %w", kind.Title(), domain.ErrDirectoryNotFound)
	}
	return root, nil
}

// loadFile applies the per-file checks and parses the content.
func (l *Loader) loadFile(root, path string, policy domain.LoadPolicy) (*domain.Document, error) {
	// Lstat the entry itself: a symlink must be rejected before anything
	// resolves it.
	info, err := os.Lstat(path)
	if err != nil {
		return nil, domain.ErrUnreadable
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil, domain.ErrSymlinkRejected
	}
	if !info.Mode().IsRegular() {
		return nil, domain.ErrNotRegularFile
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, domain.ErrUnreadable
	}
	if !isWithin(root, resolved) {
		return nil, domain.ErrPathEscape
	}

	limit := policy.EffectiveMaxFileSize()
	if info.Size() > limit {
		return nil, fmt.Errorf("%w (%d > %d bytes)", domain.ErrFileTooLarge, info.Size(), limit)
	}

	data, err := readBounded(resolved, info, limit)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, domain.ErrInvalidEncoding
	}

	return l.parser.ParseDocument(string(data), policy)
}

// readBounded reads at most limit bytes from path, failing if the opened
// file is not the one previously checked or has grown past limit.
func readBounded(path string, checked fs.FileInfo, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ErrUnreadable
	}
	defer f.Close()

	opened, err := f.Stat()
	if err != nil {
		return nil, domain.ErrUnreadable
	}
	if !os.SameFile(checked, opened) {
		return nil, domain.ErrFileChanged
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, domain.ErrUnreadable
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (more than %d bytes)", domain.ErrFileTooLarge, limit)
	}
	return data, nil
}

// skip logs and reports a rejected file.
func (l *Loader) skip(root, path string, kind domain.DocumentKind, err error) {
	rel := sanitizePath(root, path)
	err = reportable(err)

	l.logger.Warn("skipping "+kind.String()+" file",
		zap.String("file", rel),
		zap.String("reason", err.Error()),
	)
	if l.onSkip != nil {
		l.onSkip(rel, err)
	}
}

// reportableErrors are safe to show: their messages never embed paths.
var reportableErrors = []error{
	domain.ErrFrontmatter,
	domain.ErrInvalidName,
	domain.ErrSymlinkRejected,
	domain.ErrNotRegularFile,
	domain.ErrPathEscape,
	domain.ErrFileTooLarge,
	domain.ErrFileChanged,
	domain.ErrInvalidEncoding,
	domain.ErrUnreadable,
}

// reportable replaces errors of unknown origin with domain.ErrUnreadable.
func reportable(err error) error {
	for _, known := range reportableErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return domain.ErrUnreadable
}

// matchesExtension reports whether name ends with one of extensions, or
// matches one of them as a glob pattern.
func matchesExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if containsGlob(ext) {
			if ok, err := doublestar.Match(ext, name); err == nil && ok {
				return true
			}
			continue
		}
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// isWithin reports whether path is strictly inside root.
// Both arguments must be absolute and canonical.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != "." && !escapesRoot(rel)
}

// sanitizePath renders path relative to root for logging.
func sanitizePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || filepath.IsAbs(rel) || escapesRoot(rel) {
		return outsideRoot
	}
	return rel
}

func escapesRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
