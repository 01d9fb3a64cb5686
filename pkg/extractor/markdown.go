package extractor

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// Markdown renders the subtree the walk would start from as Markdown, for
// previewing what the extractor sees. Noise subtrees are removed first.
func Markdown(root *html.Node) (string, error) {
	snapshot := cloneTree(root)
	walkRoot := chooseRoot(snapshot)
	if walkRoot == nil {
		return "", ErrExtractionEmpty
	}
	pruneNoise(walkRoot)

	out, err := htmltomarkdown.ConvertNode(walkRoot)
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}
	md := strings.TrimSpace(string(out))
	if md == "" {
		return "", ErrExtractionEmpty
	}
	return md, nil
}

func pruneNoise(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			_, noisy := noiseTags[c.Data]
			if noisy || isNoiseClass(attr(c, "class")) {
				n.RemoveChild(c)
			} else {
				pruneNoise(c)
			}
		}
		c = next
	}
}
