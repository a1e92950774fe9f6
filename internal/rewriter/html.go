package rewriter

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// attrPattern walks the attributes of a raw start tag. Quoted values are
// consumed whole, so an attribute name inside another value never matches.
// Groups: 1 name, 2 double-quoted value, 3 single-quoted value, 4 bare value.
var attrPattern = regexp.MustCompile("\\s+([^\\s\"'>/=]+)(?:\\s*=\\s*(?:\"([^\"]*)\"|'([^']*)'|([^\\s\"'=<>`]+)))?")

// imgStartPattern finds candidate <img tag openings.
var imgStartPattern = regexp.MustCompile(`(?i)<img\b`)

// htmlImageEdits finds <img> tags in src and returns edits for local src
// values. Each candidate is tokenized from its own offset, so stray '<' in
// prose or unclosed raw-text elements earlier in the document cannot hide it.
func htmlImageEdits(src []byte, owner, repo, branch string) []Edit {
	var edits []Edit
	consumed := 0
	for _, loc := range imgStartPattern.FindAllIndex(src, -1) {
		start := loc[0]
		if start < consumed {
			continue
		}
		z := html.NewTokenizer(bytes.NewReader(src[start:]))
		tt := z.Next()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		raw := string(z.Raw())
		name, _ := z.TagName()
		if string(name) != "img" {
			continue
		}
		consumed = start + len(raw)
		if e, ok := srcEdit(raw, start, owner, repo, branch); ok {
			edits = append(edits, e)
		}
	}
	return edits
}

// srcEdit locates the src attribute value in a raw <img> tag starting at
// tokenStart and returns the replacement edit when the value is local.
func srcEdit(tag string, tokenStart int, owner, repo, branch string) (Edit, bool) {
	// Skip "<img" so the tag name is not parsed as an attribute.
	const nameLen = len("<img")
	if len(tag) <= nameLen {
		return Edit{}, false
	}
	for _, m := range attrPattern.FindAllStringSubmatchIndex(tag[nameLen:], -1) {
		if !strings.EqualFold(tag[nameLen+m[2]:nameLen+m[3]], "src") {
			continue
		}
		for g := 4; g <= 8; g += 2 {
			if m[g] < 0 {
				continue
			}
			start, end := nameLen+m[g], nameLen+m[g+1]
			value := tag[start:end]
			if !IsLocal(value) {
				return Edit{}, false
			}
			return Edit{
				Start:       tokenStart + start,
				End:         tokenStart + end,
				Replacement: []byte(RawContentURL(owner, repo, branch, value)),
			}, true
		}
		return Edit{}, false
	}
	return Edit{}, false
}
