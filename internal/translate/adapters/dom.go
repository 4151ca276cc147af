package adapters

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var cyrillicPattern = regexp.MustCompile(`\p{Cyrillic}`)

// selector compiles a CSS selector from configuration
func selector(expr string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", expr, err)
	}
	return sel, nil
}

func parseHTML(body []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(body))
}

// textContent concatenates the descendant text of n as written
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(textContent(c))
	}
	return buf.String()
}

// cleanText collapses runs of whitespace and trims
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// elements returns the descendant elements of n with the given tag, in document order
func elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// firstElement returns the first descendant element with the given tag
func firstElement(n *html.Node, tag string) *html.Node {
	if all := elements(n, tag); len(all) > 0 {
		return all[0]
	}
	return nil
}

// childElements returns at most limit direct children of n with the given tag
func childElements(n *html.Node, tag string, limit int) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if limit > 0 && len(out) == limit {
			break
		}
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
	}
	return out
}

// hasCyrillic reports whether s contains a Cyrillic letter
func hasCyrillic(s string) bool {
	return cyrillicPattern.MatchString(s)
}

// normalizeQuotes swaps single quotes for double quotes so renderings stay
// readable by the legacy literal format
func normalizeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}
