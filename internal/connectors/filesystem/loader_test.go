package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
	"github.com/custodia-labs/file-prompts/internal/core/ports/driven"
	"github.com/custodia-labs/file-prompts/internal/normalisers/frontmatter"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func validDoc(name string) string {
	return fmt.Sprintf("---\nname: %s\ndescription: %s document\n---\nBody of %s\n", name, name, name)
}

func canonical(t *testing.T, dir string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return resolved
}

func newTestLoader(opts ...Option) *Loader {
	return NewLoader(frontmatter.New(), opts...)
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestNewLoader(t *testing.T) {
	t.Run("defaults to a no-op logger", func(t *testing.T) {
		loader := newTestLoader()
		require.NotNil(t, loader)
		assert.NotNil(t, loader.logger)
		assert.Nil(t, loader.onSkip)
	})

	t.Run("implements DocumentLoader interface", func(t *testing.T) {
		var _ driven.DocumentLoader = newTestLoader()
	})
}

func TestLoader_Load(t *testing.T) {
	t.Run("loads prompt with arguments", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.md", "---\nname: greet\ndescription: Says hello\n"+
			"arguments: [{name: subject, required: true}]\n---\nHello {subject}!")

		docs, err := newTestLoader().Load(dir, domain.PromptPolicy())
		require.NoError(t, err)
		require.Len(t, docs, 1)

		doc := docs["greet"]
		assert.Equal(t, "Hello {subject}!", doc.Content)
		assert.Equal(t, []domain.Argument{{Name: "subject", Required: true}}, doc.Arguments)
		assert.Equal(t, filepath.Join(canonical(t, dir), "a.md"), doc.SourcePath)
		assert.True(t, filepath.IsAbs(doc.SourcePath))
	})

	t.Run("loads resources with slashes in names", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "api.md", "---\nname: docs/api\ndescription: API\n---\nbody")

		docs, err := newTestLoader().Load(dir, domain.ResourcePolicy())
		require.NoError(t, err)
		assert.Contains(t, docs, "docs/api")
	})

	t.Run("ignores files with other extensions", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.md", validDoc("a"))
		writeFile(t, dir, "b.txt", validDoc("b"))
		writeFile(t, dir, "c.md.bak", validDoc("c"))

		logger, logs := observedLogger()
		docs, err := newTestLoader(WithLogger(logger)).Load(dir, domain.PromptPolicy())
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, docs.Names())
		assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("matches glob extensions", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.prompt.md", validDoc("a"))
		writeFile(t, dir, "b.md", validDoc("b"))

		policy := domain.PromptPolicy()
		policy.Extensions = []string{"*.prompt.md"}

		docs, err := newTestLoader().Load(dir, policy)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, docs.Names())
	})

	t.Run("does not recurse into subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "top.md", validDoc("top"))
		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.Mkdir(sub, 0755))
		writeFile(t, sub, "nested.md", validDoc("nested"))

		docs, err := newTestLoader().Load(dir, domain.PromptPolicy())
		require.NoError(t, err)
		assert.Equal(t, []string{"top"}, docs.Names())
	})

	t.Run("skips directory named like a document", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "ok.md", validDoc("ok"))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.md"), 0755))

		var skipped []string
		loader := newTestLoader(WithSkipHandler(func(rel string, err error) {
			skipped = append(skipped, rel)
			assert.ErrorIs(t, err, domain.ErrNotRegularFile)
		}))

		docs, err := loader.Load(dir, domain.PromptPolicy())
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, docs.Names())
		assert.Equal(t, []string{"dir.md"}, skipped)
	})

	t.Run("later file wins on duplicate names", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.md", "---\nname: dup\ndescription: first\n---\nfirst")
		writeFile(t, dir, "b.md", "---\nname: dup\ndescription: second\n---\nsecond")

		docs, err := newTestLoader().Load(dir, domain.PromptPolicy())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "second", docs["dup"].Content)
		assert.Equal(t, "b.md", filepath.Base(docs["dup"].SourcePath))
	})

	t.Run("skips invalid files and keeps valid siblings", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "good.md", validDoc("good"))
		writeFile(t, dir, "unterminated.md", "---\nname: x\ndescription: y\nbody")
		writeFile(t, dir, "badname.md", "---\nname: ../etc\ndescription: y\n---\n")
		writeFile(t, dir, "binary.md", "---\nname: bin\ndescription: \xff\xfe\n---\n")
		writeFile(t, dir, "noheader.md", "just text")

		skipped := map[string]error{}
		loader := newTestLoader(WithSkipHandler(func(rel string, err error) {
			skipped[rel] = err
		}))

		docs, err := loader.Load(dir, domain.PromptPolicy())
		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, docs.Names())
		assert.ErrorIs(t, skipped["unterminated.md"], domain.ErrUnterminatedFrontmatter)
		assert.ErrorIs(t, skipped["badname.md"], domain.ErrInvalidName)
		assert.ErrorIs(t, skipped["binary.md"], domain.ErrInvalidEncoding)
		assert.ErrorIs(t, skipped["noheader.md"], domain.ErrMissingFrontmatter)
	})

	t.Run("empty directory is allowed for resources", func(t *testing.T) {
		logger, logs := observedLogger()
		docs, err := newTestLoader(WithLogger(logger)).Load(t.TempDir(), domain.ResourcePolicy())
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
		assert.Equal(t, 1, logs.FilterMessage("no valid documents found").Len())
	})

	t.Run("relative directory is resolved", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.md", validDoc("a"))

		wd, err := os.Getwd()
		require.NoError(t, err)
		rel, err := filepath.Rel(wd, dir)
		if err != nil {
			t.Skip("temp dir not expressible relative to working directory")
		}

		docs, err := newTestLoader().Load(rel, domain.PromptPolicy())
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(docs["a"].SourcePath))
	})
}

func TestLoader_Load_RequireDocuments(t *testing.T) {
	t.Run("only invalid file fails", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "broken.md", "---\nname: x\ndescription: y\nno closing delimiter")

		docs, err := newTestLoader().Load(dir, domain.PromptPolicy())
		assert.Nil(t, docs)
		assert.ErrorIs(t, err, domain.ErrNoValidDocuments)
	})

	t.Run("invalid file alongside valid file succeeds", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "broken.md", "---\nname: x\ndescription: y\nno closing delimiter")
		writeFile(t, dir, "fine.md", validDoc("fine"))

		docs, err := newTestLoader().Load(dir, domain.PromptPolicy())
		require.NoError(t, err)
		assert.Equal(t, []string{"fine"}, docs.Names())
	})

	t.Run("empty directory fails", func(t *testing.T) {
		_, err := newTestLoader().Load(t.TempDir(), domain.PromptPolicy())
		assert.ErrorIs(t, err, domain.ErrNoValidDocuments)
	})
}

func TestLoader_Load_RootErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "does-not-exist")

		_, err := newTestLoader().Load(missing, domain.PromptPolicy())
		assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
		assert.NotContains(t, err.Error(), missing)
		assert.Contains(t, err.Error(), "Prompt directory")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := writeFile(t, t.TempDir(), "file.md", validDoc("a"))

		_, err := newTestLoader().Load(file, domain.ResourcePolicy())
		assert.ErrorIs(t, err, domain.ErrNotADirectory)
		assert.NotContains(t, err.Error(), file)
	})
}

func TestLoader_Load_SizeLimit(t *testing.T) {
	content := validDoc("sized")
	limit := int64(len(content))

	t.Run("file at exactly the limit is included", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "sized.md", content)

		policy := domain.PromptPolicy()
		policy.MaxFileSize = limit

		docs, err := newTestLoader().Load(dir, policy)
		require.NoError(t, err)
		assert.Contains(t, docs, "sized")
	})

	t.Run("file one byte over the limit is excluded", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "sized.md", content+"x")
		writeFile(t, dir, "other.md", validDoc("ok"))

		policy := domain.PromptPolicy()
		policy.MaxFileSize = limit

		var reason error
		loader := newTestLoader(WithSkipHandler(func(rel string, err error) {
			if rel == "sized.md" {
				reason = err
			}
		}))

		docs, err := loader.Load(dir, policy)
		require.NoError(t, err)
		assert.NotContains(t, docs, "sized")
		assert.ErrorIs(t, reason, domain.ErrFileTooLarge)
	})
}

func TestLoader_Load_Symlinks(t *testing.T) {
	t.Run("symlink to valid document in same directory is never loaded", func(t *testing.T) {
		dir := t.TempDir()
		target := writeFile(t, dir, "real.txt", validDoc("linked"))
		if err := os.Symlink(target, filepath.Join(dir, "link.md")); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}

		var reason error
		loader := newTestLoader(WithSkipHandler(func(_ string, err error) { reason = err }))

		docs, err := loader.Load(dir, domain.ResourcePolicy())
		require.NoError(t, err)
		assert.Empty(t, docs)
		assert.ErrorIs(t, reason, domain.ErrSymlinkRejected)
	})

	t.Run("symlink escaping the root is rejected and siblings survive", func(t *testing.T) {
		dir := t.TempDir()
		outside := writeFile(t, t.TempDir(), "secret.md", validDoc("secret"))
		writeFile(t, dir, "kept.md", validDoc("kept"))
		if err := os.Symlink(outside, filepath.Join(dir, "escape.md")); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}

		docs, err := newTestLoader().Load(dir, domain.PromptPolicy())
		require.NoError(t, err)
		assert.Equal(t, []string{"kept"}, docs.Names())
	})

	t.Run("symlinked root directory is canonicalised", func(t *testing.T) {
		real := t.TempDir()
		writeFile(t, real, "a.md", validDoc("a"))
		link := filepath.Join(t.TempDir(), "prompts")
		if err := os.Symlink(real, link); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}

		docs, err := newTestLoader().Load(link, domain.PromptPolicy())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(canonical(t, real), "a.md"), docs["a"].SourcePath)
	})
}

func TestLoader_Load_SanitisedWarnings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.md", validDoc("good"))
	writeFile(t, dir, "bad.md", "no frontmatter here")

	logger, logs := observedLogger()
	_, err := newTestLoader(WithLogger(logger)).Load(dir, domain.PromptPolicy())
	require.NoError(t, err)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)

	fields := warnings[0].ContextMap()
	assert.Equal(t, "bad.md", fields["file"])
	assert.Equal(t, domain.ErrMissingFrontmatter.Error(), fields["reason"])
	assert.Equal(t, "skipping prompt file", warnings[0].Message)

	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, dir, "log entry leaks the scan root")
			}
		}
	}
}

func TestReadBounded(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "aaaa")
	b := writeFile(t, dir, "b.md", "bbbb")

	infoA, err := os.Lstat(a)
	require.NoError(t, err)

	t.Run("reads checked file", func(t *testing.T) {
		data, err := readBounded(a, infoA, 4)
		require.NoError(t, err)
		assert.Equal(t, "aaaa", string(data))
	})

	t.Run("detects replaced file", func(t *testing.T) {
		_, err := readBounded(b, infoA, 4)
		assert.ErrorIs(t, err, domain.ErrFileChanged)
	})

	t.Run("detects growth past the limit", func(t *testing.T) {
		_, err := readBounded(a, infoA, 3)
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	})

	t.Run("missing file is unreadable", func(t *testing.T) {
		_, err := readBounded(filepath.Join(dir, "gone.md"), infoA, 4)
		assert.ErrorIs(t, err, domain.ErrUnreadable)
	})
}

func TestIsWithin(t *testing.T) {
	root := filepath.FromSlash("/srv/prompts")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"direct child", "/srv/prompts/a.md", true},
		{"nested child", "/srv/prompts/sub/a.md", true},
		{"root itself", "/srv/prompts", false},
		{"parent", "/srv", false},
		{"sibling with shared prefix", "/srv/prompts-evil/a.md", false},
		{"escape via dot dot", "/srv/prompts/../secret.md", false},
		{"unrelated", "/etc/passwd", false},
		{"file named with leading dots", "/srv/prompts/..hidden.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isWithin(root, filepath.FromSlash(tt.path)))
		})
	}
}

func TestSanitizePath(t *testing.T) {
	root := filepath.FromSlash("/srv/prompts")

	assert.Equal(t, "a.md", sanitizePath(root, filepath.FromSlash("/srv/prompts/a.md")))
	assert.Equal(t, outsideRoot, sanitizePath(root, filepath.FromSlash("/etc/passwd")))
	assert.Equal(t, outsideRoot, sanitizePath(root, filepath.FromSlash("/srv/other/a.md")))
}

func TestMatchesExtension(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		extensions []string
		want       bool
	}{
		{"suffix match", "a.md", []string{".md"}, true},
		{"suffix mismatch", "a.txt", []string{".md"}, false},
		{"second extension", "a.txt", []string{".md", ".txt"}, true},
		{"glob match", "a.prompt.md", []string{"*.prompt.md"}, true},
		{"glob mismatch", "a.md", []string{"*.prompt.md"}, false},
		{"brace glob", "a.markdown", []string{"*.{md,markdown}"}, true},
		{"empty extension never matches", "a", []string{""}, false},
		{"no extensions", "a.md", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesExtension(tt.file, tt.extensions))
		})
	}
}

func TestReportable(t *testing.T) {
	t.Run("domain errors pass through", func(t *testing.T) {
		err := fmt.Errorf("%w (11 > 10 bytes)", domain.ErrFileTooLarge)
		assert.Equal(t, err, reportable(err))
	})

	t.Run("foreign errors are replaced", func(t *testing.T) {
		err := &os.PathError{Op: "open", Path: "/secret/path.md", Err: os.ErrPermission}
		got := reportable(err)
		assert.Equal(t, domain.ErrUnreadable, got)
		assert.False(t, strings.Contains(got.Error(), "/secret"))
	})

	t.Run("parse errors pass through", func(t *testing.T) {
		err := domain.NewParseError(domain.ErrInvalidArgumentName, "x")
		assert.True(t, errors.Is(reportable(err), domain.ErrInvalidArgumentName))
	})
}
