package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Minifier strips non-semantic tags and attributes from markup fragments
// before they are embedded in LLM prompts. Tag names, id, class and data-*
// attributes are preserved, as are table-structural tags, so the model can
// still navigate the document.
type Minifier struct {
	// Tags to remove completely
	removeTags []string
	// Table-structural tags kept even when empty
	keepEmptyTags map[string]bool
}

// NewMinifier creates a new markup minifier instance
func NewMinifier() *Minifier {
	return &Minifier{
		removeTags: []string{
			"head", "script", "style", "noscript", "iframe", "img", "link",
			"meta", "header", "footer", "nav", "button", "input",
		},
		keepEmptyTags: map[string]bool{
			"table": true, "thead": true, "tbody": true,
			"tr": true, "td": true, "th": true,
		},
	}
}

var (
	commentPattern    = regexp.MustCompile(`<!--[\s\S]*?-->`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	interTagPattern   = regexp.MustCompile(`>\s+<`)
)

// Minify returns a compacted copy of the fragment. On parse failure the
// original markup is returned so extraction can still be attempted.
func (m *Minifier) Minify(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	for _, tag := range m.removeTags {
		doc.Find(tag).Remove()
	}

	m.cleanAttributes(doc)
	m.removeEmptyElements(doc)

	minified, err := doc.Find("body").Html()
	if err != nil || minified == "" {
		if minified, err = doc.Html(); err != nil {
			return html
		}
	}

	minified = commentPattern.ReplaceAllString(minified, "")
	minified = whitespacePattern.ReplaceAllString(minified, " ")
	minified = interTagPattern.ReplaceAllString(minified, "><")
	return strings.TrimSpace(minified)
}

// cleanAttributes drops every attribute except id, class and data-*
func (m *Minifier) cleanAttributes(doc *goquery.Document) {
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		var drop []string
		for _, attr := range s.Nodes[0].Attr {
			if attr.Key == "id" || attr.Key == "class" || strings.HasPrefix(attr.Key, "data-") {
				continue
			}
			drop = append(drop, attr.Key)
		}
		for _, key := range drop {
			s.RemoveAttr(key)
		}
	})
}

// removeEmptyElements removes childless, textless elements outside the
// table-structural set
func (m *Minifier) removeEmptyElements(doc *goquery.Document) {
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		tag := s.Nodes[0].Data
		if m.keepEmptyTags[tag] {
			return
		}
		if strings.TrimSpace(s.Text()) == "" && s.Children().Length() == 0 {
			s.Remove()
		}
	})
}
