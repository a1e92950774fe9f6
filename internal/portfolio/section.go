package portfolio

import (
	"embed"
	"fmt"
	"io"
	"text/template"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/models"
)

// NoReadmeNotice is the section body for repositories without a usable README.
const NoReadmeNotice = "No README found."

// templateFS embeds the section layout.
//
//go:embed templates/section.md.tmpl
var templateFS embed.FS

var sectionTemplate = template.Must(template.ParseFS(templateFS, "templates/section.md.tmpl"))

// languageAliases groups languages that share one heading.
var languageAliases = map[string]string{
	"Python":           "Python / Jupyter Notebook",
	"Jupyter Notebook": "Python / Jupyter Notebook",
}

// HeadingFor returns the section heading of repo: its primary language, or
// its name when GitHub reports no language.
func HeadingFor(repo models.RepositorySummary) string {
	if repo.Language == "" {
		return repo.Name
	}
	if alias, ok := languageAliases[repo.Language]; ok {
		return alias
	}
	return repo.Language
}

// NewSection builds the section of repo around body.
func NewSection(repo models.RepositorySummary, body string) models.PortfolioSection {
	return models.PortfolioSection{
		Heading:        HeadingFor(repo),
		Body:           body,
		RepositoryName: repo.Name,
		RepositoryURL:  repo.HTMLURL,
	}
}

// RenderSection writes section to w.
func RenderSection(w io.Writer, section models.PortfolioSection) error {
	if err := sectionTemplate.Execute(w, section); err != nil {
		return fmt.Errorf("failed to render section for %s: %w", section.RepositoryName, err)
	}
	return nil
}
