package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText concatenates every text node under node, like the DOM textContent.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	out := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}

// CleanText trims s and collapses runs of whitespace into a single space.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// Text returns the cleaned text of the first node in sel.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return CleanText(GetText(sel.Get(0)))
}

func rootOf(node *html.Node) *html.Node {
	for node.Parent != nil {
		node = node.Parent
	}
	return node
}

// DocumentOrder numbers every node under root in pre-order, which is the
// order the nodes appear in the source markup.
func DocumentOrder(root *html.Node) map[*html.Node]int {
	order := map[*html.Node]int{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		order[n] = len(order)
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return order
}

// FindNext returns the first element matching selector that appears after
// the first node of from in document order, descendants of from included.
// The result is empty when nothing matches.
func FindNext(from *goquery.Selection, selector string) *goquery.Selection {
	if from.Length() == 0 {
		return from
	}
	start := from.Get(0)
	root := rootOf(start)
	order := DocumentOrder(root)

	return goquery.NewDocumentFromNode(root).
		Find(selector).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return order[s.Get(0)] > order[start]
		}).
		First()
}

// PathSegments splits the path of a link the same way it appears in markup,
// ex. "/courses/1/assignments/2" -> ["", "courses", "1", "assignments", "2"].
// Query strings and fragments are dropped.
func PathSegments(href string) []string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	return strings.Split(href, "/")
}

// LastPathSegment returns the trailing segment of a link, ignoring a single
// trailing slash.
func LastPathSegment(href string) string {
	segments := PathSegments(strings.TrimSuffix(href, "/"))
	return segments[len(segments)-1]
}

// PathSegment returns segment i of PathSegments(href), false if there are not
// enough segments.
func PathSegment(href string, i int) (string, bool) {
	segments := PathSegments(href)
	if i < 0 || i >= len(segments) {
		return "", false
	}
	return segments[i], true
}
