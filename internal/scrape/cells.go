package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Cell is the extracted content of one td. Country is set only when the cell
// carries a flag icon or an image.
type Cell struct {
	Country string
	Info    string
}

// ExtractCells returns the td values of a DATA row in column order.
func ExtractCells(row *goquery.Selection) []Cell {
	tds := row.ChildrenFiltered("td")
	cells := make([]Cell, 0, tds.Length())
	tds.Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, extractCell(td))
	})
	return cells
}

// extractCell prefers a flag-icon link, then an embedded image, then text.
func extractCell(td *goquery.Selection) Cell {
	text := strings.TrimSpace(td.Text())

	if link := td.Find("span.flagicon a").First(); link.Length() > 0 {
		country, ok := link.Attr("title")
		if !ok || country == "" {
			country = strings.TrimSpace(link.Text())
		}
		return Cell{Country: country, Info: text}
	}

	if img := td.Find("img").First(); img.Length() > 0 {
		alt, _ := img.Attr("alt")
		return Cell{Country: alt, Info: strings.TrimSpace(textAfter(td, img.Get(0)))}
	}

	return Cell{Info: text}
}

// textAfter concatenates the text nodes of sel that follow target in
// document order.
func textAfter(sel *goquery.Selection, target *html.Node) string {
	var b strings.Builder
	passed := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == target {
			passed = true
			return
		}
		if passed && n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

// renderedText is the text of sel with <br> rendered as a newline, which
// keeps "4 January<br>01:27" from reading as "January01".
func renderedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}
