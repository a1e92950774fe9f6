// Package portfolio turns a user's repositories into portfolio sections and
// streams them to the output document.
package portfolio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/branch"
	"github.com/UnitVectorY-Labs/readmeportfolio/internal/models"
	"github.com/UnitVectorY-Labs/readmeportfolio/internal/rewriter"
	"github.com/UnitVectorY-Labs/readmeportfolio/internal/source"
)

// RepositorySource lists repositories and fetches READMEs.
type RepositorySource interface {
	ListRepositories(ctx context.Context, username string) ([]models.RepositorySummary, error)
	FetchReadme(ctx context.Context, repo models.RepositorySummary) source.ReadmeResult
}

// Assembler drives one portfolio run. Repositories are handled one at a time
// in listing order and each section is written as soon as it is ready.
type Assembler struct {
	Source       RepositorySource
	Branches     branch.Resolver
	Sink         io.Writer
	Logger       *log.Logger
	IncludeForks bool
}

// Summary counts what a run did.
type Summary struct {
	Total         int
	Processed     int
	Skipped       int
	ReadmeMissing int
	ReadmeFailed  int
}

// Run builds the portfolio of username.
//
// Listing failures abort the run before anything is written. README failures
// only affect their own section. A write failure on the sink aborts the run.
func (a *Assembler) Run(ctx context.Context, username string) (Summary, error) {
	logger := a.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	resolver := a.Branches
	if resolver == nil {
		resolver = branch.Fixed{Name: branch.DefaultBranch}
	}

	var sum Summary
	repos, err := a.Source.ListRepositories(ctx, username)
	if err != nil {
		return sum, fmt.Errorf("failed to list repositories: %w", err)
	}
	sum.Total = len(repos)
	if sum.Total == 0 {
		logger.Infof("No public repositories found for user '%s'.", username)
		return sum, nil
	}

	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		logger.Debug("Inspecting repository", "repo", repo.Name, "private", repo.IsPrivate(),
			"fork", repo.Fork, "archived", repo.Archived)

		if reason := a.skipReason(repo); reason != "" {
			logger.Infof("Skipping %s repository: %s", reason, repo.Name)
			sum.Skipped++
			continue
		}
		if !repo.VisibilityKnown() {
			logger.Warn("Repository visibility unknown, including it", "repo", repo.Name)
		}

		sum.Processed++
		logger.Infof("Processing repository %d/%d: %s", sum.Processed, sum.Total, repo.Name)

		body, err := a.sectionBody(ctx, logger, resolver, repo, &sum)
		if err != nil {
			return sum, err
		}

		// Render first so a template failure never leaves half a section behind.
		var buf bytes.Buffer
		if err := RenderSection(&buf, NewSection(repo, body)); err != nil {
			return sum, err
		}
		if _, err := a.Sink.Write(buf.Bytes()); err != nil {
			return sum, fmt.Errorf("failed to write section for %s: %w", repo.Name, err)
		}
	}

	logger.Infof("Summary: Processed %d repositories out of %d total.", sum.Processed, sum.Total)
	return sum, nil
}

func (a *Assembler) skipReason(repo models.RepositorySummary) string {
	switch {
	case repo.IsPrivate():
		return "private"
	case repo.Archived:
		return "archived"
	case repo.Fork && !a.IncludeForks:
		return "forked"
	}
	return ""
}

// sectionBody resolves the branch, fetches the README and rewrites its image
// links. Missing or failed READMEs become NoReadmeNotice.
func (a *Assembler) sectionBody(ctx context.Context, logger *log.Logger, resolver branch.Resolver, repo models.RepositorySummary, sum *Summary) (string, error) {
	logger.Debug("Repository details", "repo", repo.Name, "description", repo.DescriptionOr("No description provided."))

	branchName, err := resolver.Resolve(ctx, repo)
	if err != nil {
		return "", fmt.Errorf("failed to resolve branch for %s: %w", repo.Name, err)
	}

	res := a.Source.FetchReadme(ctx, repo)
	switch res.Status {
	case source.ReadmeFound:
		return rewriter.RewriteLocalImageLinks(res.Content.Text, repo.Owner, repo.Name, branchName), nil
	case source.ReadmeNotFound:
		logger.Info("No README.md found.", "repo", repo.Name)
		sum.ReadmeMissing++
	default:
		logger.Error("Failed to fetch README", "repo", repo.Name, "err", res.Err)
		sum.ReadmeFailed++
	}
	return NoReadmeNotice, nil
}
