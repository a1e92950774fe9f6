// Package source talks to the GitHub REST API: it lists an account's
// repositories and fetches their READMEs.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/models"
)

const (
	// DefaultTimeout bounds every HTTP request.
	DefaultTimeout = 10 * time.Second

	// DefaultPerPage is the listing page size.
	DefaultPerPage = 100

	defaultRetryDelay = time.Second
)

// Client is a sequential GitHub API client authenticated with a static token.
type Client struct {
	gh         *github.Client
	logger     *log.Logger
	perPage    int
	retries    int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	timeout    time.Duration
	perPage    int
	retries    int
	retryDelay time.Duration
	logger     *log.Logger
}

// WithBaseURL points the client at another API root (GitHub Enterprise, tests).
func WithBaseURL(u string) Option { return func(o *clientOptions) { o.baseURL = u } }

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option { return func(o *clientOptions) { o.timeout = d } }

// WithPerPage overrides DefaultPerPage.
func WithPerPage(n int) Option { return func(o *clientOptions) { o.perPage = n } }

// WithRetries enables up to n retries of temporary failures. The default is 0.
func WithRetries(n int) Option { return func(o *clientOptions) { o.retries = n } }

// WithRetryDelay sets the initial backoff between retries.
func WithRetryDelay(d time.Duration) Option { return func(o *clientOptions) { o.retryDelay = d } }

// WithLogger sets the logger used for request-level debug output.
func WithLogger(l *log.Logger) Option { return func(o *clientOptions) { o.logger = l } }

// New creates a Client that sends token as a bearer credential.
func New(token string, opts ...Option) (*Client, error) {
	o := clientOptions{
		timeout:    DefaultTimeout,
		perPage:    DefaultPerPage,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.perPage <= 0 {
		o.perPage = DefaultPerPage
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = o.timeout
	gh := github.NewClient(tc)

	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid API base URL %q: %w", o.baseURL, err)
		}
		gh.BaseURL = u
	}

	return &Client{
		gh:         gh,
		logger:     o.logger,
		perPage:    o.perPage,
		retries:    o.retries,
		retryDelay: o.retryDelay,
	}, nil
}

// ListRepositories returns every repository of username in the order the API
// returned them. Pages are requested until one comes back empty.
//
// A rejected token yields ErrAuthentication, an unknown account
// ErrUserNotFound; any other failure is a *TransportError.
func (c *Client) ListRepositories(ctx context.Context, username string) ([]models.RepositorySummary, error) {
	var all []models.RepositorySummary
	for page := 1; ; page++ {
		var repos []*github.Repository
		err := retry(ctx, c.retries, c.retryDelay, func() error {
			var err error
			repos, err = c.listPage(ctx, username, page)
			return err
		})
		if err != nil {
			return nil, err
		}
		if len(repos) == 0 {
			break
		}

		c.logger.Debug("Fetched repository page", "page", page, "count", len(repos))
		for _, r := range repos {
			all = append(all, toSummary(r, username))
		}
	}
	return all, nil
}

func (c *Client) listPage(ctx context.Context, username string, page int) ([]*github.Repository, error) {
	u := fmt.Sprintf("users/%s/repos?page=%d&per_page=%d", url.PathEscape(username), page, c.perPage)
	req, err := c.gh.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var repos []*github.Repository
	resp, err := c.gh.Do(ctx, req, &repos)
	if err != nil {
		switch statusOf(resp) {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("list repositories of %s: %w", username, ErrAuthentication)
		case http.StatusNotFound:
			return nil, fmt.Errorf("list repositories of %s: %w", username, ErrUserNotFound)
		}
		return nil, &TransportError{Op: "list repositories", StatusCode: statusOf(resp), Err: err}
	}
	return repos, nil
}

func toSummary(r *github.Repository, username string) models.RepositorySummary {
	owner := r.GetOwner().GetLogin()
	if owner == "" {
		owner = username
	}
	return models.RepositorySummary{
		Name:          r.GetName(),
		Owner:         owner,
		Private:       r.Private,
		Archived:      r.GetArchived(),
		Fork:          r.GetFork(),
		Description:   r.Description,
		Language:      r.GetLanguage(),
		HTMLURL:       r.GetHTMLURL(),
		DefaultBranch: r.GetDefaultBranch(),
	}
}
