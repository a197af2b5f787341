// Package extract turns fetched markup into a bounded model.Snapshot.
package extract

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/textutil"
	"github.com/sells-group/selda-cli/internal/urlutil"
)

const (
	DefaultMaxTextChars = 12000
	DefaultMaxKeywords  = 20

	maxTestimonials       = 5
	minTestimonialChars   = 25
	maxIndustriesServed   = 10
	headingSelector       = "h1, h2, h3"
	attributeTextSelector = "[alt], [aria-label], [title]"
	testimonialSelector   = `[class*="testimonial"], [id*="testimonial"], blockquote`
)

// Options bounds the snapshot. Zero values fall back to the defaults.
type Options struct {
	MaxTextChars int
	MaxKeywords  int
}

// Extractor derives snapshots from markup. It holds no mutable state.
type Extractor struct {
	lex          *Lexicon
	maxTextChars int
	maxKeywords  int
}

// New creates an Extractor over lex. A nil lex uses the embedded default.
func New(lex *Lexicon, opts Options) *Extractor {
	if lex == nil {
		var err error
		if lex, err = DefaultLexicon(); err != nil {
			panic(err)
		}
	}
	if opts.MaxTextChars <= 0 {
		opts.MaxTextChars = DefaultMaxTextChars
	}
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = DefaultMaxKeywords
	}
	return &Extractor{lex: lex, maxTextChars: opts.MaxTextChars, maxKeywords: opts.MaxKeywords}
}

// Extract parses rawHTML fetched from sourceURL. It never fails: missing
// tags and malformed links leave the corresponding fields empty.
func (e *Extractor) Extract(rawHTML, sourceURL string, status int, fetchedAt time.Time) *model.Snapshot {
	snap := &model.Snapshot{
		URL:               sourceURL,
		FetchedAt:         fetchedAt,
		Status:            status,
		Headings:          []string{},
		Keywords:          []string{},
		MetaKeywords:      []string{},
		SocialLinks:       []model.SocialLink{},
		ContactPages:      []string{},
		Testimonials:      []string{},
		IndustriesServed:  []string{},
		Geographies:       []string{},
		LanguagesDetected: []string{},
		RawHTML:           rawHTML,
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return snap
	}

	snap.Title = textutil.CollapseWhitespace(doc.Find("title").First().Text())
	snap.Description = metaContent(doc, "description")
	snap.MetaKeywords = textutil.Dedupe(textutil.SplitList(metaContent(doc, "keywords")))
	if lang, ok := doc.Find("html").First().Attr("lang"); ok {
		if lang = textutil.CollapseWhitespace(lang); lang != "" {
			snap.Language = &lang
		}
	}

	doc.Find(headingSelector).Each(func(_ int, s *goquery.Selection) {
		if t := textutil.CollapseWhitespace(s.Text()); t != "" {
			snap.Headings = append(snap.Headings, t)
		}
	})

	snap.TextExcerpt = e.bodyExcerpt(doc, snap)
	snap.Keywords = e.keywords(snap)

	base, err := url.Parse(sourceURL)
	if err != nil {
		base = nil
	}
	snap.SocialLinks, snap.ContactPages = e.links(doc, base)

	snap.Testimonials = testimonials(doc)
	snap.IndustriesServed = industriesServed(doc, e.lex.IndustryKeywords)

	lowered := strings.ToLower(snap.TextExcerpt)
	snap.Geographies = e.geographies(lowered)
	snap.LanguagesDetected = e.languages(lowered, snap.LanguageOrEmpty())

	return snap
}

// metaContent returns the collapsed content of the first <meta name=...>,
// matching the name case-insensitively.
func metaContent(doc *goquery.Document, name string) string {
	var content string
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), name) {
			return true
		}
		content = textutil.CollapseWhitespace(s.AttrOr("content", ""))
		return false
	})
	return content
}

func (e *Extractor) bodyExcerpt(doc *goquery.Document, snap *model.Snapshot) string {
	parts := []string{snap.Title, snap.Description}
	parts = append(parts, snap.Headings...)

	doc.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	doc.Find(attributeTextSelector).Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"alt", "aria-label", "title"} {
			if v, ok := s.Attr(attr); ok {
				parts = append(parts, v)
			}
		}
	})

	return textutil.Truncate(strings.Join(parts, " "), e.maxTextChars)
}

func (e *Extractor) keywords(snap *model.Snapshot) []string {
	combined := append([]string{}, snap.MetaKeywords...)
	combined = append(combined, textutil.TopKeywords(snap.TextExcerpt, e.maxKeywords, e.lex.stop)...)
	combined = textutil.Dedupe(combined)
	if len(combined) > e.maxKeywords {
		combined = combined[:e.maxKeywords]
	}
	return combined
}

// links classifies every anchor as a social profile, a contact page, or
// neither. The first link per platform wins; social links are never
// contact pages.
func (e *Extractor) links(doc *goquery.Document, base *url.URL) ([]model.SocialLink, []string) {
	social := []model.SocialLink{}
	seenPlatform := make(map[string]bool)
	contacts := []string{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		abs, ok := urlutil.Resolve(base, s.AttrOr("href", ""))
		if !ok {
			return
		}
		u, err := url.Parse(abs)
		if err != nil {
			return
		}

		if platform, ok := e.lex.platformFor(strings.ToLower(u.Hostname())); ok {
			if !seenPlatform[platform] {
				seenPlatform[platform] = true
				social = append(social, model.SocialLink{Platform: platform, URL: abs})
			}
			return
		}

		text := strings.ToLower(textutil.CollapseWhitespace(s.Text()))
		target := strings.ToLower(u.Path + " " + u.RawQuery + " " + u.Fragment + " " + u.Opaque)
		if containsAny(text, e.lex.ContactKeywords) || containsAny(target, e.lex.ContactKeywords) {
			contacts = append(contacts, abs)
		}
	})

	return social, textutil.Dedupe(contacts)
}

// testimonials collects the innermost testimonial-like elements so a
// wrapper and its quotes are not reported twice.
func testimonials(doc *goquery.Document) []string {
	var found []string
	doc.Find(testimonialSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(testimonialSelector).Length() > 0 {
			return
		}
		if t := textutil.CollapseWhitespace(s.Text()); utf8.RuneCountInString(t) > minTestimonialChars {
			found = append(found, t)
		}
	})
	found = textutil.Dedupe(found)
	if len(found) > maxTestimonials {
		found = found[:maxTestimonials]
	}
	return found
}

func (e *Extractor) geographies(lowered string) []string {
	labels := []string{}
	for _, term := range e.lex.Geographies {
		if term != "" && strings.Contains(lowered, term) {
			labels = append(labels, label(term))
		}
	}
	return textutil.Dedupe(labels)
}

func (e *Extractor) languages(lowered, declared string) []string {
	labels := []string{}
	if declared != "" {
		labels = append(labels, declaredLabel(declared))
	}
	for _, l := range e.lex.languages {
		if l.word.MatchString(lowered) {
			labels = append(labels, label(l.name))
		}
	}
	return textutil.Dedupe(labels)
}

// declaredLabel labels the base language of a BCP 47 tag, so "en-US" and
// "en" both become "EN". Tags that do not parse are labeled as written.
func declaredLabel(tag string) string {
	if t, err := language.Parse(tag); err == nil {
		if base, _ := t.Base(); base.String() != "und" {
			return label(base.String())
		}
	}
	return label(strings.ToLower(tag))
}

// label upper-cases short terms so acronyms such as UK survive, and
// title-cases the rest.
func label(term string) string {
	if utf8.RuneCountInString(term) <= 3 {
		return strings.ToUpper(term)
	}
	return cases.Title(language.Und).String(term)
}
