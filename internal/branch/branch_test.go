package branch

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/models"
)

func TestFixed(t *testing.T) {
	ctx := context.Background()
	repo := models.RepositorySummary{Name: "demo"}

	got, err := Fixed{Name: "develop"}.Resolve(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "develop", got)

	got, err = Fixed{}.Resolve(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, DefaultBranch, got)
}

func TestPromptResolve(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader("develop\n\n  gh-pages  \n"), &out)
	ctx := context.Background()

	want := []string{"develop", DefaultBranch, "gh-pages", DefaultBranch}
	for i, w := range want {
		got, err := p.Resolve(ctx, models.RepositorySummary{Name: "repo"})
		require.NoError(t, err, "answer %d", i)
		assert.Equal(t, w, got, "answer %d", i)
	}
	assert.Contains(t, out.String(), "repo")
	assert.Contains(t, out.String(), "default: main")
}

func TestPromptResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := NewPrompt(strings.NewReader("x\n"), &out).Resolve(ctx, models.RepositorySummary{Name: "repo"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestAskMode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFixed bool
	}{
		{"yes", "y\n", true},
		{"upper yes", "Y\n", true},
		{"empty", "\n", true},
		{"eof", "", true},
		{"no", "n\n", false},
		{"other", "later\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompt(strings.NewReader(tt.input), &out)
			r, err := p.AskMode(context.Background())
			require.NoError(t, err)

			_, fixed := r.(Fixed)
			assert.Equal(t, tt.wantFixed, fixed)
			assert.Contains(t, out.String(), "Use 'main' branch for all repositories?")
		})
	}
}

func TestAskMode_SharesInputWithPerRepositoryPrompt(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader("n\nfeature\n"), &out)

	r, err := p.AskMode(context.Background())
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), models.RepositorySummary{Name: "demo"})
	require.NoError(t, err)
	assert.Equal(t, "feature", got)
}
