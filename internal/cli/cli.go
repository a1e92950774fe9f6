// Package cli implements the readmeportfolio command-line interface.
//
// The root command lists a GitHub user's repositories, pulls each README,
// resolves local image links and streams the result into a timestamped
// Markdown document. It is built on cobra and logs through
// charmbracelet/log, mirrored to a log file.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/config"
)

// Version is set via ldflags: -X github.com/UnitVectorY-Labs/readmeportfolio/internal/cli.Version=...
var Version = "dev"

// CLI holds state shared by the command: the logger and its console writer.
type CLI struct {
	Logger *log.Logger
	out    io.Writer
	getenv func(string) string
	// dotEnvFiles are loaded before the environment is consulted.
	dotEnvFiles []string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:      newLogger(w, level),
		out:         w,
		getenv:      os.Getenv,
		dotEnvFiles: []string{".env", ".env.local"},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

type flagValues struct {
	configPath   string
	username     string
	token        string
	branch       string
	promptBranch bool
	yes          bool
	output       string
	outputDir    string
	dryRun       bool
	excludeForks bool
	retries      int
	logFile      string
	apiURL       string
	verbose      bool
}

// RootCommand creates the root cobra command.
func (c *CLI) RootCommand() *cobra.Command {
	var fv flagValues

	root := &cobra.Command{
		Use:   "readmeportfolio",
		Short: "Build a Markdown portfolio from a GitHub user's READMEs",
		Long: `readmeportfolio lists the public repositories of a GitHub user, fetches every
README, rewrites local image links to raw.githubusercontent.com URLs and writes
one section per repository to Portfolio_<timestamp>.md.

Private and archived repositories are skipped. An existing document with the
same name is moved aside, never overwritten.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd, fv)
			if err != nil {
				return err
			}
			return c.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
		},
	}

	f := root.Flags()
	f.StringVarP(&fv.configPath, "config", "c", "", "YAML file with default settings")
	f.StringVarP(&fv.username, "username", "u", "", "GitHub username (required)")
	f.StringVarP(&fv.token, "token", "t", "", "GitHub access token (defaults to $"+config.TokenEnv+")")
	f.StringVarP(&fv.branch, "branch", "b", "", "branch used for every repository when resolving image links")
	f.BoolVar(&fv.promptBranch, "prompt-branch", false, "ask for the branch of each repository")
	f.BoolVarP(&fv.yes, "yes", "y", false, "use the main branch without asking")
	f.StringVarP(&fv.output, "output", "o", "", "output file (default Portfolio_<timestamp>.md)")
	f.StringVar(&fv.outputDir, "output-dir", "", "directory for the generated output file")
	f.BoolVar(&fv.dryRun, "dry-run", false, "fetch everything but write no output file")
	f.BoolVar(&fv.excludeForks, "exclude-forks", false, "skip forked repositories")
	f.IntVar(&fv.retries, "retries", 0, "retry transient API failures this many times")
	f.StringVar(&fv.logFile, "log-file", config.DefaultLogFile, `mirror the log to this file ("" disables)`)
	f.StringVar(&fv.apiURL, "api-url", "", "GitHub API base URL (for GitHub Enterprise)")
	f.BoolVarP(&fv.verbose, "verbose", "v", false, "enable verbose logging")

	return root
}

// resolveConfig layers defaults, the config file, .env files, the
// environment and explicitly set flags, in that order.
func (c *CLI) resolveConfig(cmd *cobra.Command, fv flagValues) (config.RunConfig, error) {
	cfg := config.Default()
	if fv.configPath != "" {
		if err := cfg.LoadFile(fv.configPath); err != nil {
			return cfg, err
		}
	}

	loaded, err := config.LoadDotEnv(c.dotEnvFiles...)
	if err != nil {
		return cfg, err
	}
	for _, p := range loaded {
		c.Logger.Debug("Loaded environment file", "path", p)
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("username", func() { cfg.Username = fv.username })
	set("token", func() { cfg.Token = fv.token })
	// A branch flag replaces the branch policy of the config file.
	set("branch", func() {
		cfg.Branch = fv.branch
		if !flags.Changed("prompt-branch") {
			cfg.PromptBranch = false
		}
	})
	set("prompt-branch", func() {
		cfg.PromptBranch = fv.promptBranch
		if fv.promptBranch && !flags.Changed("branch") {
			cfg.Branch = ""
		}
	})
	set("yes", func() { cfg.AssumeYes = fv.yes })
	set("output", func() { cfg.OutputPath = fv.output })
	set("output-dir", func() { cfg.OutputDir = fv.outputDir })
	set("dry-run", func() { cfg.DryRun = fv.dryRun })
	set("exclude-forks", func() { cfg.IncludeForks = !fv.excludeForks })
	set("retries", func() { cfg.Retries = fv.retries })
	set("log-file", func() { cfg.LogFile = fv.logFile })
	set("api-url", func() { cfg.APIBaseURL = fv.apiURL })
	cfg.Verbose = fv.verbose

	cfg.ApplyEnv(c.getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
