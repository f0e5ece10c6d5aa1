package rodwrapper

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ElementIDAttr is stamped on every element before a snapshot is taken so
// that an element picked by the service can be located again on the page.
const ElementIDAttr = "tf623_id"

type CleanConfig struct {
	TagsToRemove  []string
	AttrsToRemove []string
	// StripHidden drops elements that are not rendered: the hidden attribute,
	// aria-hidden="true", inline display:none or visibility:hidden, and
	// hidden inputs.
	StripHidden bool
	// MaxOutputSize truncates the rendered document. Zero means no limit.
	MaxOutputSize    int
	CustomAttrFilter func(attr html.Attribute) bool
}

var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "template", "link", "meta",
	},
	AttrsToRemove: []string{
		"srcset", "sizes", "loading", "decoding", "fetchpriority", "integrity", "nonce",
	},
}

// SnapshotConfig returns the cleaning rules for an extraction snapshot.
func SnapshotConfig(includeHidden bool) CleanConfig {
	cfg := DefaultCleanConfig
	cfg.StripHidden = !includeHidden
	return cfg
}

// CleanHTML parses a full document, removes noise and renders it back.
func CleanHTML(rawHTML string, cfg CleanConfig) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	cleanNode(doc, &cfg)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return truncateHTML(sb.String(), cfg.MaxOutputSize), nil
}

func cleanNode(n *html.Node, cfg *CleanConfig) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if shouldRemoveNode(c, cfg) {
			n.RemoveChild(c)
		} else if c.Type == html.ElementNode {
			c.Attr = filterAttributes(c.Attr, cfg)
			cleanNode(c, cfg)
		} else {
			cleanNode(c, cfg)
		}
		c = next
	}
}

func shouldRemoveNode(n *html.Node, cfg *CleanConfig) bool {
	switch n.Type {
	case html.CommentNode:
		return true
	case html.ElementNode:
		if isOneOf(n.Data, cfg.TagsToRemove...) {
			return true
		}
		return cfg.StripHidden && isHidden(n)
	}
	return false
}

func isHidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(strings.TrimSpace(attr.Val), "true") {
				return true
			}
		case "type":
			if n.Data == "input" && strings.EqualFold(strings.TrimSpace(attr.Val), "hidden") {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(attr.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func filterAttributes(attrs []html.Attribute, cfg *CleanConfig) []html.Attribute {
	kept := attrs[:0]
	for _, attr := range attrs {
		if shouldRemoveAttr(attr, cfg) {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

func shouldRemoveAttr(attr html.Attribute, cfg *CleanConfig) bool {
	key := strings.ToLower(attr.Key)
	if key == ElementIDAttr {
		return false
	}
	if isOneOf(key, cfg.AttrsToRemove...) {
		return true
	}
	// inline event handlers
	if strings.HasPrefix(key, "on") {
		return true
	}
	if cfg.CustomAttrFilter != nil && cfg.CustomAttrFilter(attr) {
		return true
	}
	return false
}

func truncateHTML(htmlStr string, maxSize int) string {
	if maxSize > 0 && len(htmlStr) > maxSize {
		return htmlStr[:maxSize] + "\n<!-- HTML truncated -->"
	}
	return htmlStr
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
