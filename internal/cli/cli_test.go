package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/source"
)

const readmeText = "# Widget\n\n![logo](images/logo.png)\n"

func githubServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"message":"Bad credentials"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, "[]")
			return
		}
		fmt.Fprint(w, `[
			{"name":"widget","private":false,"archived":false,"fork":false,"html_url":"https://github.com/octo/widget","owner":{"login":"octo"}},
			{"name":"secret","private":true,"archived":false,"fork":false,"html_url":"https://github.com/octo/secret","owner":{"login":"octo"}}
		]`)
	})
	mux.HandleFunc("/repos/octo/widget/readme", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"type":"file","name":"README.md","path":"README.md","encoding":"base64","content":%q}`,
			base64.StdEncoding.EncodeToString([]byte(readmeText)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	cli    *CLI
	logs   *bytes.Buffer
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(env map[string]string) *harness {
	logs := &bytes.Buffer{}
	c := New(logs, LogInfo)
	c.getenv = func(k string) string { return env[k] }
	c.dotEnvFiles = nil
	return &harness{cli: c, logs: logs, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
}

func (h *harness) execute(stdin string, args ...string) error {
	root := h.cli.RootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(h.stdout)
	root.SetErr(h.stderr)
	return root.ExecuteContext(context.Background())
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	srv := githubServer(t, http.StatusOK)
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	h := newHarness(map[string]string{"GITHUB_TOKEN": "env-token"})
	err := h.execute("", "--username", "octo", "--api-url", srv.URL, "--dry-run", "--yes",
		"--output-dir", outDir, "--log-file", "")
	require.NoError(t, err)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the output directory")
	assert.Contains(t, h.logs.String(), "Running in dry-run mode")
	assert.Contains(t, h.logs.String(), "Skipping private repository: secret")
	assert.Contains(t, h.logs.String(), "Summary: Processed 1 repositories out of 2 total.")
	assert.Contains(t, h.stdout.String(), "Dry run processed")
}

func TestRun_WritesPortfolio(t *testing.T) {
	srv := githubServer(t, http.StatusOK)
	dir := t.TempDir()
	out := filepath.Join(dir, "portfolio.md")
	logFile := filepath.Join(dir, "run.log")

	h := newHarness(nil)
	err := h.execute("", "--username", "octo", "--token", "t0ken", "--api-url", srv.URL,
		"--branch", "dev", "--output", out, "--log-file", logFile)
	require.NoError(t, err)

	doc, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<center><h1 style='color: #0000FF;'>widget</h1></center>")
	assert.Contains(t, string(doc), "![logo](https://raw.githubusercontent.com/octo/widget/dev/images/logo.png)")
	assert.Contains(t, string(doc), "### Located at: [widget](https://github.com/octo/widget)")
	assert.NotContains(t, string(doc), "secret")

	logged, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Summary: Processed 1 repositories out of 2 total.")
	assert.Contains(t, h.stdout.String(), "Wrote")
}

func TestRun_AskModeReadsAnswers(t *testing.T) {
	srv := githubServer(t, http.StatusOK)
	out := filepath.Join(t.TempDir(), "portfolio.md")

	h := newHarness(map[string]string{"GITHUB_TOKEN": "env-token"})
	err := h.execute("n\nfeature\n", "--username", "octo", "--api-url", srv.URL,
		"--output", out, "--log-file", "")
	require.NoError(t, err)

	assert.Contains(t, h.stderr.String(), "Use 'main' branch for all repositories?")
	assert.Contains(t, h.stderr.String(), "Enter branch name for")

	doc, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "https://raw.githubusercontent.com/octo/widget/feature/images/logo.png")
}

func TestRun_AuthenticationFailure(t *testing.T) {
	srv := githubServer(t, http.StatusUnauthorized)
	out := filepath.Join(t.TempDir(), "portfolio.md")

	h := newHarness(nil)
	err := h.execute("", "--username", "octo", "--token", "bad", "--api-url", srv.URL,
		"--yes", "--output", out, "--log-file", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrAuthentication)

	doc, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Empty(t, doc, "no section is written when listing fails")
	assert.NotContains(t, h.logs.String(), "Summary:")
}

func TestRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing token", args: []string{"--username", "octo"}, wantErr: "token"},
		{name: "missing username", args: []string{"--token", "t"}, wantErr: "username"},
		{name: "conflicting branch flags", args: []string{"-u", "octo", "-t", "t", "--branch", "dev", "--prompt-branch"}, wantErr: "mutually exclusive"},
		{name: "missing config file", args: []string{"--config", "/nonexistent/portfolio.yaml"}, wantErr: "config"},
		{name: "positional argument", args: []string{"extra"}, wantErr: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(nil)
			err := h.execute("", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveConfig_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "portfolio.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("username: from-file\nbranch: develop\ninclude_forks: false\n"), 0644))

	h := newHarness(map[string]string{"GITHUB_TOKEN": "env-token"})
	root := h.cli.RootCommand()
	require.NoError(t, root.ParseFlags([]string{"--config", cfgPath, "--username", "from-flag"}))

	var fv flagValues
	fv.configPath = cfgPath
	fv.username = "from-flag"
	cfg, err := h.cli.resolveConfig(root, fv)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Username)
	assert.Equal(t, "develop", cfg.Branch)
	assert.Equal(t, "env-token", cfg.Token)
	assert.False(t, cfg.IncludeForks)
}

func TestResolveConfig_BranchFlagsOverrideFile(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		args       []string
		fv         flagValues
		wantBranch string
		wantPrompt bool
		wantErr    string
	}{
		{
			name:       "prompt flag replaces file branch",
			file:       "branch: develop\n",
			args:       []string{"--prompt-branch"},
			fv:         flagValues{promptBranch: true},
			wantPrompt: true,
		},
		{
			name:       "branch flag replaces file prompt",
			file:       "prompt_branch: true\n",
			args:       []string{"--branch", "release"},
			fv:         flagValues{branch: "release"},
			wantBranch: "release",
		},
		{
			name:       "file branch kept without branch flags",
			file:       "branch: develop\n",
			wantBranch: "develop",
		},
		{
			name:    "both flags still conflict",
			file:    "branch: develop\n",
			args:    []string{"--branch", "release", "--prompt-branch"},
			fv:      flagValues{branch: "release", promptBranch: true},
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "portfolio.yaml")
			require.NoError(t, os.WriteFile(cfgPath, []byte("username: octo\n"+tt.file), 0644))

			h := newHarness(map[string]string{"GITHUB_TOKEN": "env-token"})
			root := h.cli.RootCommand()
			require.NoError(t, root.ParseFlags(append([]string{"--config", cfgPath}, tt.args...)))

			fv := tt.fv
			fv.configPath = cfgPath
			cfg, err := h.cli.resolveConfig(root, fv)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBranch, cfg.Branch)
			assert.Equal(t, tt.wantPrompt, cfg.PromptBranch)
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, LogInfo))
	p.done("Portfolio complete")
	assert.Contains(t, buf.String(), "Portfolio complete (")
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	assert.Empty(t, buf.String())

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
