// Package config holds the settings of a portfolio run.
//
// Values are layered: built-in defaults, then an optional YAML file, then the
// environment (including a .env file), then command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TokenEnv is the environment variable consulted when no token flag is given.
const TokenEnv = "GITHUB_TOKEN"

// DefaultLogFile is where the run log is mirrored unless overridden.
const DefaultLogFile = "portfolio_generator.log"

// BranchMode is the policy for choosing a repository's branch.
type BranchMode int

const (
	// BranchFixed applies one branch to every repository.
	BranchFixed BranchMode = iota
	// BranchPrompt asks for a branch on every repository.
	BranchPrompt
	// BranchAsk asks once up front which of the two modes to use.
	BranchAsk
)

func (m BranchMode) String() string {
	switch m {
	case BranchFixed:
		return "fixed"
	case BranchPrompt:
		return "prompt"
	case BranchAsk:
		return "ask"
	}
	return "unknown"
}

// RunConfig is the complete configuration of one run.
type RunConfig struct {
	Username     string
	Token        string
	Branch       string
	PromptBranch bool
	AssumeYes    bool
	OutputPath   string
	OutputDir    string
	DryRun       bool
	IncludeForks bool
	Retries      int
	LogFile      string
	APIBaseURL   string
	Verbose      bool
}

// Default returns the configuration used when nothing else is specified.
func Default() RunConfig {
	return RunConfig{
		IncludeForks: true,
		LogFile:      DefaultLogFile,
	}
}

// BranchMode reports how branches will be chosen.
func (c RunConfig) BranchMode() BranchMode {
	switch {
	case c.Branch != "":
		return BranchFixed
	case c.PromptBranch:
		return BranchPrompt
	case c.AssumeYes:
		return BranchFixed
	}
	return BranchAsk
}

// Validate reports the first problem that prevents a run.
func (c RunConfig) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return errors.New("a GitHub username is required (--username)")
	}
	if c.Token == "" {
		return fmt.Errorf("a GitHub token is required (--token or %s)", TokenEnv)
	}
	if c.Branch != "" && c.PromptBranch {
		return errors.New("--branch and --prompt-branch are mutually exclusive")
	}
	if strings.ContainsAny(c.Branch, " \t\n") {
		return fmt.Errorf("invalid branch name %q", c.Branch)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	return nil
}

// ApplyEnv fills the token from the environment when it is still empty.
func (c *RunConfig) ApplyEnv(getenv func(string) string) {
	if c.Token == "" {
		c.Token = getenv(TokenEnv)
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored. It returns the files that were loaded.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// fileConfig mirrors RunConfig in a YAML file. Pointers distinguish "unset"
// from zero values. The token is never read from a file.
type fileConfig struct {
	Username     *string `yaml:"username"`
	Branch       *string `yaml:"branch"`
	PromptBranch *bool   `yaml:"prompt_branch"`
	Output       *string `yaml:"output"`
	OutputDir    *string `yaml:"output_dir"`
	DryRun       *bool   `yaml:"dry_run"`
	IncludeForks *bool   `yaml:"include_forks"`
	Retries      *int    `yaml:"retries"`
	LogFile      *string `yaml:"log_file"`
	APIBaseURL   *string `yaml:"api_base_url"`
}

// LoadFile overlays the settings found in the YAML file at path onto c.
// Unknown keys are rejected so typos surface early.
func (c *RunConfig) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	setString(&c.Username, fc.Username)
	setString(&c.Branch, fc.Branch)
	setString(&c.OutputPath, fc.Output)
	setString(&c.OutputDir, fc.OutputDir)
	setString(&c.LogFile, fc.LogFile)
	setString(&c.APIBaseURL, fc.APIBaseURL)
	setBool(&c.PromptBranch, fc.PromptBranch)
	setBool(&c.DryRun, fc.DryRun)
	setBool(&c.IncludeForks, fc.IncludeForks)
	if fc.Retries != nil {
		c.Retries = *fc.Retries
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
