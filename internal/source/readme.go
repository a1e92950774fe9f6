package source

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/google/go-github/v57/github"
	"golang.org/x/text/encoding/unicode"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/models"
)

// ReadmeStatus tags the outcome of a README fetch.
type ReadmeStatus int

const (
	ReadmeFound ReadmeStatus = iota
	ReadmeNotFound
	ReadmeFailed
)

func (s ReadmeStatus) String() string {
	switch s {
	case ReadmeFound:
		return "found"
	case ReadmeNotFound:
		return "not found"
	case ReadmeFailed:
		return "failed"
	}
	return "unknown"
}

// ReadmeResult is Found(Content), NotFound, or Failed(Err).
type ReadmeResult struct {
	Status  ReadmeStatus
	Content models.ReadmeContent
	Err     error
}

// Found wraps successfully decoded content.
func Found(content models.ReadmeContent) ReadmeResult {
	return ReadmeResult{Status: ReadmeFound, Content: content}
}

// NotFound marks a repository without a README.
func NotFound() ReadmeResult { return ReadmeResult{Status: ReadmeNotFound} }

// Failed wraps a fetch or decode failure.
func Failed(err error) ReadmeResult { return ReadmeResult{Status: ReadmeFailed, Err: err} }

var errNoReadme = errors.New("no readme")

// FetchReadme retrieves and decodes the README of repo. A 404 is a
// NotFound result, not a failure. Found content carries repo unchanged.
func (c *Client) FetchReadme(ctx context.Context, repo models.RepositorySummary) ReadmeResult {
	owner, name := repo.Owner, repo.Name
	var content *github.RepositoryContent
	err := retry(ctx, c.retries, c.retryDelay, func() error {
		rc, resp, err := c.gh.Repositories.GetReadme(ctx, owner, name, nil)
		if err != nil {
			if statusOf(resp) == http.StatusNotFound {
				return errNoReadme
			}
			return &TransportError{Op: "fetch readme " + owner + "/" + name, StatusCode: statusOf(resp), Err: err}
		}
		content = rc
		return nil
	})
	if errors.Is(err, errNoReadme) {
		return NotFound()
	}
	if err != nil {
		return Failed(err)
	}

	text, err := decodeReadme(content)
	if err != nil {
		return Failed(&TransportError{Op: "decode readme " + owner + "/" + name, Err: err})
	}
	c.logger.Debug("Fetched README", "repo", name, "path", content.GetPath(), "bytes", len(text))

	return Found(models.ReadmeContent{
		Text:       text,
		Path:       content.GetPath(),
		Repository: repo,
	})
}

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// decodeReadme turns the base64 transport encoding into text and drops a
// leading byte order mark.
func decodeReadme(rc *github.RepositoryContent) (string, error) {
	raw, err := rc.GetContent()
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(raw) {
		return "", errInvalidUTF8
	}
	return unicode.UTF8BOM.NewDecoder().String(raw)
}
