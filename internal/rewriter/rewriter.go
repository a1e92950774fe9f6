// Package rewriter resolves README image references that point into the
// repository itself to absolute raw.githubusercontent.com URLs.
//
// Both Markdown images (![alt](path)) and HTML <img src="path"> tags are
// handled. Only the path bytes change; the rest of the document is preserved
// byte for byte, and image syntax inside code blocks and code spans is left
// alone. Rewriting is idempotent because the produced URLs are absolute.
package rewriter

import (
	"fmt"
	"regexp"
	"strings"
)

// RawContentBase is the content-delivery host for repository files.
const RawContentBase = "https://raw.githubusercontent.com"

var (
	schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

	// Group 1 is the destination, either <...> or a bare run without spaces
	// that may hold one level of balanced parentheses.
	mdImagePattern = regexp.MustCompile(`!\[[^\]\n]*\]\(\s*(<[^>\n]*>|(?:[^\s()<]|\([^\s()<]*\))+)(?:\s+(?:"[^"\n]*"|'[^'\n]*'))?\s*\)`)
)

// IsLocal reports whether path refers to a file inside the repository, that is,
// it carries no URL scheme, is not protocol-relative and is not a bare fragment.
func IsLocal(path string) bool {
	p := strings.TrimSpace(path)
	if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") {
		return false
	}
	return !schemePattern.MatchString(p)
}

// RawContentURL builds the content-delivery URL of path in owner/repo at branch.
func RawContentURL(owner, repo, branch, path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", RawContentBase, owner, repo, branch, normalizePath(strings.TrimSpace(path)))
}

// normalizePath strips one leading "./", or a single leading "/" for
// repository-root relative paths.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "./"):
		return path[2:]
	case strings.HasPrefix(path, "/"):
		return path[1:]
	}
	return path
}

// RewriteLocalImageLinks returns text with every local Markdown image
// destination and HTML <img> src value replaced by its raw content URL.
func RewriteLocalImageLinks(text, owner, repo, branch string) string {
	if text == "" {
		return text
	}
	src := []byte(text)
	masked := maskCode(src)

	edits := markdownImageEdits(masked, owner, repo, branch)
	edits = append(edits, htmlImageEdits(masked, owner, repo, branch)...)
	if len(edits) == 0 {
		return text
	}

	out, err := ApplyEdits(src, dropOverlapping(edits))
	if err != nil {
		return text
	}
	return string(out)
}

func markdownImageEdits(src []byte, owner, repo, branch string) []Edit {
	var edits []Edit
	for _, m := range mdImagePattern.FindAllSubmatchIndex(src, -1) {
		start, end := m[2], m[3]
		if src[start] == '<' {
			start, end = start+1, end-1
		}
		dest := string(src[start:end])
		if !IsLocal(dest) {
			continue
		}
		edits = append(edits, Edit{
			Start:       start,
			End:         end,
			Replacement: []byte(RawContentURL(owner, repo, branch, dest)),
		})
	}
	return edits
}
