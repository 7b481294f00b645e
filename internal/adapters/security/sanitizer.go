package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer cleans rich-text bodies coming from the admin editor.
type HTMLSanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

func NewHTMLSanitizer() *HTMLSanitizer {
	rich := bluemonday.UGCPolicy()
	rich.AddTargetBlankToFullyQualifiedLinks(true)
	rich.RequireNoReferrerOnLinks(true)
	rich.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("p", "span", "figure", "img")
	return &HTMLSanitizer{rich: rich, plain: bluemonday.StrictPolicy()}
}

func (s *HTMLSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.rich.Sanitize(raw))
}

// PlainText drops every tag and collapses whitespace.
func (s *HTMLSanitizer) PlainText(raw string) string {
	text := html.UnescapeString(s.plain.Sanitize(raw))
	return strings.Join(strings.Fields(text), " ")
}
