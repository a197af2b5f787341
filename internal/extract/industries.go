package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/selda-cli/internal/textutil"
)

const (
	industryLabelSelector = "h1, h2, h3, h4, h5, h6, strong, b"
	sectionBreakSelector  = "h1, h2, h3, h4, h5, h6"
)

// industriesServed is a best-effort heuristic, not a guarantee. For every
// heading or bold label mentioning an industry keyword it takes the nearest
// following sibling, before the next heading, that is a list (its items) or
// a paragraph (its text). A label with no such sibling, such as <strong>
// inside a <p>, is retried from its parent block.
func industriesServed(doc *goquery.Document, keywords []string) []string {
	var found []string
	doc.Find(industryLabelSelector).Each(func(_ int, s *goquery.Selection) {
		if !containsAny(strings.ToLower(s.Text()), keywords) {
			return
		}
		found = append(found, followingEntries(s)...)
	})

	found = textutil.Dedupe(found)
	if len(found) > maxIndustriesServed {
		found = found[:maxIndustriesServed]
	}
	return found
}

func followingEntries(label *goquery.Selection) []string {
	for _, anchor := range []*goquery.Selection{label, label.Parent()} {
		if anchor.Length() == 0 || goquery.NodeName(anchor) == "body" {
			break
		}
		if entries := siblingEntries(anchor); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

func siblingEntries(anchor *goquery.Selection) []string {
	next := anchor.NextUntil(sectionBreakSelector).Filter("ul, ol, p").First()
	if next.Length() == 0 {
		return nil
	}
	if goquery.NodeName(next) == "p" {
		if t := textutil.CollapseWhitespace(next.Text()); t != "" {
			return []string{t}
		}
		return nil
	}
	var entries []string
	next.Find("li").Each(func(_ int, li *goquery.Selection) {
		if t := textutil.CollapseWhitespace(li.Text()); t != "" {
			entries = append(entries, t)
		}
	})
	return entries
}
