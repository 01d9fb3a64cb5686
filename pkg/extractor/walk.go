package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// walker turns a DOM subtree into annotated plain text. Fragments are
// written in visit order; each node is visited at most once.
type walker struct {
	b       strings.Builder
	visited map[*html.Node]struct{}
}

func newWalker() *walker {
	return &walker{visited: make(map[*html.Node]struct{})}
}

func (w *walker) String() string {
	return strings.TrimSpace(w.b.String())
}

func (w *walker) visit(n *html.Node) {
	if n == nil {
		return
	}
	if _, seen := w.visited[n]; seen {
		return
	}
	w.visited[n] = struct{}{}

	switch n.Type {
	case html.TextNode:
		w.text(n)
		return
	case html.ElementNode:
		// classified below
	case html.CommentNode, html.DoctypeNode:
		return
	default:
		w.children(n)
		return
	}

	tag := n.Data
	if _, ok := noiseTags[tag]; ok {
		return
	}
	if isNoiseClass(attr(n, "class")) {
		return
	}

	switch {
	case isHeading(tag):
		if t := textContent(n); t != "" {
			w.b.WriteString("\n" + t + "\n\n")
		}
	case tag == "ul" || tag == "ol":
		w.list(n)
	case tag == "table":
		w.table(n)
	case tag == "pre" || tag == "code":
		w.code(n)
	case tag == "blockquote":
		if t := textContent(n); t != "" {
			w.b.WriteString("> " + t + "\n")
		}
	case tag == "p" || tag == "div":
		w.block(n)
	default:
		w.children(n)
	}
}

func (w *walker) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c)
	}
}

func (w *walker) text(n *html.Node) {
	t := normalizeText(n.Data)
	if l := utf8.RuneCountInString(t); l > 0 && l < maxTextChars {
		w.b.WriteString(t + " ")
	}
}

// block emits a p/div as one line. Oversized blocks are skipped without descending.
func (w *walker) block(n *html.Node) {
	t := textContent(n)
	if l := utf8.RuneCountInString(t); l > 0 && l < maxBlockChars {
		w.b.WriteString(t + "\n")
	}
}

func (w *walker) list(n *html.Node) {
	wrote := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		if t := textContent(c); t != "" {
			w.b.WriteString("• " + t + "\n")
			wrote = true
		}
	}
	if wrote {
		w.b.WriteString("\n")
	}
}

func (w *walker) table(n *html.Node) {
	w.b.WriteString("[Table]\n")
	sel := goquery.NewDocumentFromNode(n).Find("tr")
	sel.Each(func(_ int, row *goquery.Selection) {
		if row.ParentsFiltered("table").First().Get(0) != n {
			return
		}
		var cells []string
		row.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, normalizeText(cell.Text()))
		})
		if len(cells) > 0 {
			w.b.WriteString(strings.Join(cells, " | ") + "\n")
		}
	})
	w.b.WriteString("\n")
}

func (w *walker) code(n *html.Node) {
	raw := rawText(n)
	if strings.TrimSpace(raw) == "" {
		return
	}
	w.b.WriteString("[Code]\n" + raw + "\n")
}

func isHeading(tag string) bool {
	_, ok := headingTags[tag]
	return ok
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent is the whitespace-normalized text of n, skipping noise subtrees.
func textContent(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b)
	return normalizeText(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteString(" ")
		return
	case html.ElementNode:
		if _, ok := noiseTags[n.Data]; ok {
			return
		}
		if isNoiseClass(attr(n, "class")) {
			return
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// rawText keeps whitespace as-is, for code blocks.
func rawText(n *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return b.String()
}

// normalizeText collapses all whitespace runs to single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cloneTree returns a deep copy of n detached from any parent.
func cloneTree(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneTree(child))
	}
	return c
}
