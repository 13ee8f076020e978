package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ExtractText flattens a detail page into readable text for scoring: one
// fragment per line, with scripts and styles removed. It returns "" when
// nothing readable is left.
func ExtractText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template").Remove()

	var texts []string
	for _, n := range doc.Nodes {
		collectText(n, &texts)
	}
	raw := lineBreaks.Replace(strings.Join(texts, " "))

	var chunks []string
	for _, line := range strings.Split(raw, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, "\n")
}

func collectText(n *html.Node, out *[]string) {
	if n.Type == html.TextNode {
		*out = append(*out, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}
