// Package htmltable pulls table rows out of HTML fragments that some banks
// store inside a single spreadsheet cell.
package htmltable

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options controls which rows Rows returns.
type Options struct {
	// MarkerStyle, when set, skips every row before the first <tr> whose inline
	// style contains it. Whitespace and case are ignored in the comparison.
	MarkerStyle string
	// Columns, when positive, keeps only rows with exactly that many cells.
	Columns int
}

// Rows parses doc and returns the text of each table row's cells in
// document order.
func Rows(doc string, opts Options) ([][]string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	marker := squash(opts.MarkerStyle)
	started := marker == ""

	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			if !started && strings.Contains(squash(attr(n, "style")), marker) {
				started = true
			}
			if started {
				cells := rowCells(n)
				if opts.Columns <= 0 || len(cells) == opts.Columns {
					rows = append(rows, cells)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return rows, nil
}

// LooksLikeHTML reports whether a cell value carries an HTML table.
func LooksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<table") || strings.Contains(lower, "<tr")
}

func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, text(c))
		}
	}
	return cells
}

func text(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
