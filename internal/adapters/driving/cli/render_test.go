package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
)

func TestRenderCmd_Use(t *testing.T) {
	assert.Equal(t, "render <prompt> [key=value...]", renderCmd.Use)
}

func TestRenderCmd_RequiresPromptName(t *testing.T) {
	d := newTestDirs(t)
	_, _, err := execute(t, d, "render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestRenderCmd_Executes(t *testing.T) {
	d := newTestDirs(t)
	d.write(t, d.prompts, "a.md", greetPrompt)

	t.Run("substitutes arguments", func(t *testing.T) {
		stdout, _, err := execute(t, d, "render", "greet", "subject=world")
		require.NoError(t, err)
		assert.Equal(t, "Hello world!\n", stdout)
	})

	t.Run("value with equals sign", func(t *testing.T) {
		stdout, _, err := execute(t, d, "render", "greet", "subject=a=b")
		require.NoError(t, err)
		assert.Equal(t, "Hello a=b!\n", stdout)
	})

	t.Run("missing required argument", func(t *testing.T) {
		_, _, err := execute(t, d, "render", "greet")
		assert.ErrorIs(t, err, domain.ErrMissingArgument)
	})

	t.Run("unknown prompt", func(t *testing.T) {
		_, _, err := execute(t, d, "render", "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed assignment", func(t *testing.T) {
		_, _, err := execute(t, d, "render", "greet", "subject")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestRenderCmd_NoPrompts(t *testing.T) {
	d := newTestDirs(t)
	_, _, err := execute(t, d, "render", "greet")
	assert.ErrorIs(t, err, domain.ErrNoValidDocuments)
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"single", []string{"a=1"}, map[string]string{"a": "1"}, false},
		{"empty value", []string{"a="}, map[string]string{"a": ""}, false},
		{"later wins", []string{"a=1", "a=2"}, map[string]string{"a": "2"}, false},
		{"equals in value", []string{"q=x=y"}, map[string]string{"q": "x=y"}, false},
		{"missing equals", []string{"a"}, nil, true},
		{"empty key", []string{"=1"}, nil, true},
		{"invalid key", []string{"a-b=1"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssignments(tt.pairs)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
