package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/branch"
	"github.com/UnitVectorY-Labs/readmeportfolio/internal/config"
	"github.com/UnitVectorY-Labs/readmeportfolio/internal/output"
	"github.com/UnitVectorY-Labs/readmeportfolio/internal/portfolio"
	"github.com/UnitVectorY-Labs/readmeportfolio/internal/source"
)

// run executes one portfolio run. Questions are read from in and written to
// prompts; the final report goes to stdout.
func (c *CLI) run(ctx context.Context, in io.Reader, stdout, prompts io.Writer, cfg config.RunConfig) error {
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}

	if cfg.LogFile != "" {
		lf, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer lf.Close()
		c.Logger.SetOutput(io.MultiWriter(c.out, lf))
		defer c.Logger.SetOutput(c.out)
	}

	c.Logger.Debug("Starting run", "user", cfg.Username, "branch_mode", cfg.BranchMode(),
		"dry_run", cfg.DryRun, "include_forks", cfg.IncludeForks, "retries", cfg.Retries)

	opts := []source.Option{
		source.WithRetries(cfg.Retries),
		source.WithLogger(c.Logger),
	}
	if cfg.APIBaseURL != "" {
		opts = append(opts, source.WithBaseURL(cfg.APIBaseURL))
	}
	client, err := source.New(cfg.Token, opts...)
	if err != nil {
		return err
	}

	resolver, err := c.branchResolver(ctx, in, prompts, cfg)
	if err != nil {
		return err
	}

	sink, err := output.Open(output.Options{
		Path:   cfg.OutputPath,
		Dir:    cfg.OutputDir,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return err
	}
	defer sink.Close()

	if sink.DryRun() {
		c.Logger.Info("Running in dry-run mode. No files will be written.")
	} else {
		c.Logger.Info("Writing output", "path", sink.Path())
		if r := sink.Rotated(); r != "" {
			c.Logger.Warn("Existing output moved aside", "path", r)
		}
	}

	asm := &portfolio.Assembler{
		Source:       client,
		Branches:     resolver,
		Sink:         sink,
		Logger:       c.Logger,
		IncludeForks: cfg.IncludeForks,
	}

	prog := newProgress(c.Logger)
	sum, err := asm.Run(ctx, cfg.Username)
	if err != nil {
		return err
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	prog.done("Portfolio complete")

	c.report(stdout, sink, sum)
	return nil
}

func (c *CLI) branchResolver(ctx context.Context, in io.Reader, prompts io.Writer, cfg config.RunConfig) (branch.Resolver, error) {
	switch cfg.BranchMode() {
	case config.BranchFixed:
		return branch.Fixed{Name: cfg.Branch}, nil
	case config.BranchPrompt:
		return branch.NewPrompt(in, prompts), nil
	}
	return branch.NewPrompt(in, prompts).AskMode(ctx)
}

func (c *CLI) report(w io.Writer, sink *output.Sink, sum portfolio.Summary) {
	if sink.DryRun() {
		printSuccess(w, "Dry run processed %s of %s repositories", number(sum.Processed), number(sum.Total))
	} else {
		printSuccess(w, "Wrote %s sections to %s", number(sum.Processed), sink.Path())
	}
	if sum.Skipped > 0 {
		printDetail(w, "%d skipped", sum.Skipped)
	}
	if sum.ReadmeMissing > 0 {
		printDetail(w, "%d without a README", sum.ReadmeMissing)
	}
	if sum.ReadmeFailed > 0 {
		printWarning(w, "%s READMEs could not be fetched", number(sum.ReadmeFailed))
	}
}
