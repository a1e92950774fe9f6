// Package branch decides which branch's file tree local image paths resolve against.
package branch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/UnitVectorY-Labs/readmeportfolio/internal/models"
)

// DefaultBranch is used whenever no explicit branch is supplied.
const DefaultBranch = "main"

// Resolver picks the branch for one repository.
type Resolver interface {
	Resolve(ctx context.Context, repo models.RepositorySummary) (string, error)
}

// Fixed applies the same branch to every repository.
type Fixed struct {
	Name string
}

// Resolve returns f.Name, or DefaultBranch when it is empty.
func (f Fixed) Resolve(ctx context.Context, _ models.RepositorySummary) (string, error) {
	if f.Name == "" {
		return DefaultBranch, nil
	}
	return f.Name, nil
}

var (
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("36")).Bold(true)
	repoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Prompt asks for a branch on every repository. An empty answer or end of
// input selects DefaultBranch.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt creates a Prompt reading answers from in and writing questions to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Resolve asks for the branch of repo.
func (p *Prompt) Resolve(ctx context.Context, repo models.RepositorySummary) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	q := questionStyle.Render("Enter branch name for") + " " + repoStyle.Render(repo.Name) + " " +
		hintStyle.Render(fmt.Sprintf("(default: %s):", DefaultBranch)) + " "
	answer, err := p.ask(q)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return DefaultBranch, nil
	}
	return answer, nil
}

// AskMode asks once whether DefaultBranch applies to all repositories. A "y"
// answer, an empty answer or end of input returns a Fixed resolver; anything
// else returns p so each repository is asked individually.
func (p *Prompt) AskMode(ctx context.Context) (Resolver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := questionStyle.Render(fmt.Sprintf("Use '%s' branch for all repositories?", DefaultBranch)) + " " + hintStyle.Render("(y/n):") + " "
	answer, err := p.ask(q)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return Fixed{Name: DefaultBranch}, nil
	}
	return p, nil
}

func (p *Prompt) ask(question string) (string, error) {
	if _, err := io.WriteString(p.out, question); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
