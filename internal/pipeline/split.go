package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fragment is one service card cut out of the search results page, paired
// with the onclick descriptor of its trip detail popup trigger when the card
// has one.
type Fragment struct {
	Index   int
	HTML    string
	OnClick string
}

// Split cuts the results page into per-service fragments in document order.
// An unparseable page yields no fragments, same as a page with no services.
func Split(resultsHTML string) []Fragment {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resultsHTML))
	if err != nil {
		return nil
	}

	var fragments []Fragment
	doc.Find("div.bus-list").Each(func(i int, card *goquery.Selection) {
		html, err := goquery.OuterHtml(card)
		if err != nil {
			return
		}
		// Index is the fragment's slot, not Each's counter: a skipped card
		// must not leave a hole past the end of the slice.
		fragments = append(fragments, Fragment{
			Index:   len(fragments),
			HTML:    html,
			OnClick: card.Find("a[data-target='#TripcodePopUp'][onclick]").First().AttrOr("onclick", ""),
		})
	})
	return fragments
}
