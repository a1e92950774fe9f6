package models

// RepositorySummary represents a single repository as returned by the listing endpoint.
type RepositorySummary struct {
	Name          string  `json:"name"`
	Owner         string  `json:"owner"`
	Private       *bool   `json:"private,omitempty"` // nil when the listing omitted the field
	Archived      bool    `json:"archived"`
	Fork          bool    `json:"fork"`
	Description   *string `json:"description,omitempty"`
	Language      string  `json:"language"`
	HTMLURL       string  `json:"html_url"`
	DefaultBranch string  `json:"default_branch"`
}

// VisibilityKnown reports whether the listing told us if the repository is private.
func (r RepositorySummary) VisibilityKnown() bool {
	return r.Private != nil
}

// IsPrivate reports whether the repository is known to be private.
// Unknown visibility counts as public.
func (r RepositorySummary) IsPrivate() bool {
	return r.Private != nil && *r.Private
}

// DescriptionOr returns the description, or fallback when none was provided.
func (r RepositorySummary) DescriptionOr(fallback string) string {
	if r.Description == nil || *r.Description == "" {
		return fallback
	}
	return *r.Description
}

// ReadmeContent is a decoded README for one repository.
type ReadmeContent struct {
	Text       string
	Path       string
	Repository RepositorySummary
}

// PortfolioSection is one rendered block of the portfolio document.
type PortfolioSection struct {
	Heading        string
	Body           string
	RepositoryName string
	RepositoryURL  string
}
