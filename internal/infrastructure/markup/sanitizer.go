// Package markup trims page source before it is stored as a failure artifact.
package markup

import (
	"strings"

	"signup-e2e/internal/application/port/output"

	"golang.org/x/net/html"
)

const redacted = "[redacted]"

type Config struct {
	TagsToRemove  []string
	AttrsToRemove []string
	// RedactInputTypes lists input types whose value attribute is masked.
	RedactInputTypes []string
	MaxOutputSize    int
}

// DefaultConfig keeps data- and aria- attributes since selectors often target them.
func DefaultConfig() Config {
	return Config{
		TagsToRemove: []string{
			"script", "style", "noscript", "svg", "iframe", "link", "meta",
		},
		AttrsToRemove: []string{
			"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "nonce", "integrity",
		},
		RedactInputTypes: []string{"password"},
		MaxOutputSize:    2 << 20,
	}
}

type Sanitizer struct {
	cfg    Config
	logger output.LoggerPort
}

func NewSanitizer(cfg Config, logger output.LoggerPort) *Sanitizer {
	return &Sanitizer{cfg: cfg, logger: logger}
}

// Clean returns the document without scripts, styles, comments or inline handlers.
// Markup that cannot be parsed is returned unchanged.
func (s *Sanitizer) Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Markup parse failed, storing raw source", "error", err)
		}
		return raw
	}

	s.cleanNode(doc)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		if s.logger != nil {
			s.logger.Warn("Markup render failed, storing raw source", "error", err)
		}
		return raw
	}
	return truncate(sb.String(), s.cfg.MaxOutputSize)
}

func (s *Sanitizer) cleanNode(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && isOneOf(c.Data, s.cfg.TagsToRemove...):
			n.RemoveChild(c)
		default:
			if c.Type == html.ElementNode {
				c.Attr = s.filterAttributes(c)
			}
			s.cleanNode(c)
		}
		c = next
	}
}

func (s *Sanitizer) filterAttributes(n *html.Node) []html.Attribute {
	redact := n.Data == "input" && isOneOf(strings.ToLower(attr(n, "type")), s.cfg.RedactInputTypes...)

	kept := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if isOneOf(key, s.cfg.AttrsToRemove...) || strings.HasPrefix(key, "on") {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(strings.ToLower(a.Val)), "javascript:") {
			continue
		}
		if redact && key == "value" && a.Val != "" {
			a.Val = redacted
		}
		kept = append(kept, a)
	}
	return kept
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func truncate(s string, maxSize int) string {
	if maxSize <= 0 || len(s) <= maxSize {
		return s
	}
	return s[:maxSize] + "\n<!-- markup truncated -->"
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
