package tabular

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// readHTMLTable parses the first <table> element in an HTML document into
// rows of cell text, in document order.
func readHTMLTable(data []byte) ([][]string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	table := findFirst(doc, "table")
	if table == nil {
		return nil, errors.New("no table element found")
	}

	var rows [][]string
	walkElements(table, "tr", func(tr *html.Node) {
		var cells []string
		walkElements(tr, "td", func(td *html.Node) {
			cells = append(cells, textContent(td))
		})
		if len(cells) == 0 {
			walkElements(tr, "th", func(th *html.Node) {
				cells = append(cells, textContent(th))
			})
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})

	if len(rows) == 0 {
		return nil, errors.New("table has no rows")
	}
	return rows, nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// walkElements calls fn for each descendant element with the given tag,
// without descending into matched elements (nested tables stay out).
func walkElements(n *html.Node, tag string, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			fn(c)
			continue
		}
		walkElements(c, tag, fn)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
