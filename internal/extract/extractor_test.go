package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/textutil"
)

var fetchedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestExtractor(t *testing.T, opts Options) *Extractor {
	t.Helper()
	lex, err := DefaultLexicon()
	require.NoError(t, err)
	return New(lex, opts)
}

func TestExtract_AcmeExample(t *testing.T) {
	page := `<html lang="en"><head><title>Acme</title></head><body><h1>Welcome</h1><a href="https://linkedin.com/company/acme">LinkedIn</a></body></html>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, "https://example.com/", snap.URL)
	assert.Equal(t, 200, snap.Status)
	assert.Equal(t, fetchedAt, snap.FetchedAt)
	assert.Equal(t, "Acme", snap.Title)
	require.NotNil(t, snap.Language)
	assert.Equal(t, "en", *snap.Language)
	assert.Equal(t, []string{"Welcome"}, snap.Headings)
	assert.Equal(t, []model.SocialLink{{Platform: "LinkedIn", URL: "https://linkedin.com/company/acme"}}, snap.SocialLinks)
	assert.Empty(t, snap.ContactPages)
	assert.NotNil(t, snap.ContactPages)
	assert.Equal(t, "Acme Welcome", snap.TextExcerpt)
	assert.Equal(t, []string{"acme", "welcome"}, snap.Keywords)
	assert.Equal(t, []string{"EN"}, snap.LanguagesDetected)
	assert.Equal(t, page, snap.RawHTML)
}

func TestExtract_MissingTags(t *testing.T) {
	snap := newTestExtractor(t, Options{}).Extract(`<html><body></body></html>`, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, "", snap.Title)
	assert.Equal(t, "", snap.Description)
	assert.Nil(t, snap.Language)
	assert.Equal(t, "", snap.TextExcerpt)
}

func TestExtract_EmptyListsSerializeAsArrays(t *testing.T) {
	snap := newTestExtractor(t, Options{}).Extract(`<p>No links here.</p>`, "https://example.com/", 200, fetchedAt)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{
		"headings", "meta_keywords", "social_links", "contact_pages",
		"testimonials", "industries_served", "geographies", "languages_detected",
	} {
		assert.Equal(t, []any{}, decoded[key], key)
	}
	assert.Nil(t, decoded["language"])
	assert.NotContains(t, decoded, "RawHTML")
}

func TestExtract_TitleDescriptionWhitespace(t *testing.T) {
	page := `<html lang=" de "><head>
		<title>
			Acme   Corp
		</title>
		<meta name="Description" content="  We build
		rockets ">
	</head></html>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, "Acme Corp", snap.Title)
	assert.Equal(t, "We build rockets", snap.Description)
	require.NotNil(t, snap.Language)
	assert.Equal(t, "de", *snap.Language)
}

func TestExtract_Headings(t *testing.T) {
	page := `<h1>One</h1><h4>Skipped</h4><h2>  </h2><h3>Two
	lines</h3><h2>Three</h2>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, []string{"One", "Two lines", "Three"}, snap.Headings)
}

func TestExtract_ExcerptSources(t *testing.T) {
	page := `<html><head><title>Title</title><meta name="description" content="Desc"></head><body>
		<h2>Heading</h2>
		<p>Para text</p>
		<ul><li>Item</li></ul>
		<img src="a.png" alt="Alt text">
		<button aria-label="Aria text">x</button>
		<span title="Hover text">y</span>
		<div>Ignored div text</div>
	</body></html>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, "Title Desc Heading Para text Item Alt text Aria text Hover text", snap.TextExcerpt)
}

func TestExtract_ExcerptTruncation(t *testing.T) {
	body := strings.Repeat("a", 50)

	atLimit := newTestExtractor(t, Options{MaxTextChars: 50}).
		Extract("<p>"+body+"</p>", "https://example.com/", 200, fetchedAt)
	assert.Equal(t, body, atLimit.TextExcerpt)

	overLimit := newTestExtractor(t, Options{MaxTextChars: 49}).
		Extract("<p>"+body+"</p>", "https://example.com/", 200, fetchedAt)
	assert.Equal(t, strings.Repeat("a", 49)+textutil.TruncationMarker, overLimit.TextExcerpt)
}

func TestExtract_Keywords(t *testing.T) {
	page := `<head><meta name="keywords" content="crm, Sales Tools , ,crm"></head>
		<p>Pipeline pipeline pipeline forecasting forecasting the and for with an ai crm</p>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, []string{"crm", "Sales Tools"}, snap.MetaKeywords)
	assert.Equal(t, []string{"crm", "Sales Tools", "pipeline", "forecasting"}, snap.Keywords)
	for _, stop := range []string{"the", "and", "for", "with", "an", "ai"} {
		assert.NotContains(t, snap.Keywords, stop)
	}
}

func TestExtract_KeywordsCapped(t *testing.T) {
	var words []string
	for i := 0; i < 30; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}
	page := `<head><meta name="keywords" content="alpha, beta"></head><p>` + strings.Join(words, " ") + `</p>`

	snap := newTestExtractor(t, Options{MaxKeywords: 5}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, []string{"alpha", "beta", "word00", "word01", "word02"}, snap.Keywords)
}

func TestExtract_SocialLinks(t *testing.T) {
	page := `<body>
		<a href="https://www.linkedin.com/company/acme">Contact us on LinkedIn</a>
		<a href="https://linkedin.com/company/other">LinkedIn 2</a>
		<a href="https://twitter.com/acme">Twitter</a>
		<a href="https://x.com/acme2">X</a>
		<a href="https://www.dropbox.com/s/contact-sheet">Contact sheet</a>
		<a href="https://github.com/acme">Code</a>
		<a href="https://www.youtube.com/@acme">Videos</a>
		<a href="https://www.glassdoor.co.uk/acme">Jobs</a>
	</body>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, []model.SocialLink{
		{Platform: "LinkedIn", URL: "https://www.linkedin.com/company/acme"},
		{Platform: "X", URL: "https://twitter.com/acme"},
		{Platform: "GitHub", URL: "https://github.com/acme"},
		{Platform: "YouTube", URL: "https://www.youtube.com/@acme"},
		{Platform: "Glassdoor", URL: "https://www.glassdoor.co.uk/acme"},
	}, snap.SocialLinks)
	assert.Equal(t, []string{"https://www.dropbox.com/s/contact-sheet"}, snap.ContactPages)
}

func TestExtract_ContactPages(t *testing.T) {
	page := `<body>
		<a href="/contact">Get in touch</a>
		<a href="/pricing">Book a demo</a>
		<a href="https://example.com/contact">Reach us</a>
		<a href="/blog">Blog</a>
		<a href="#contact">Contact</a>
		<a href="javascript:openChat()">Talk to sales</a>
		<a href="tel:+15551234">Call sales</a>
		<a href="about/team">Our people</a>
		<a href="http://[::1]:namedport">Contact broken</a>
	</body>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/company/", 200, fetchedAt)

	assert.Equal(t, []string{
		"https://example.com/contact",
		"https://example.com/pricing",
		"https://example.com/company/about/team",
	}, snap.ContactPages)
	assert.Empty(t, snap.SocialLinks)
}

func TestExtract_ContactPagesIgnoreHost(t *testing.T) {
	page := `<body>
		<a href="https://sales.acme.com/">Home</a>
		<a href="https://support.acme.com/sales">Home</a>
		<a href="https://demo.acme.com/">Sales team</a>
	</body>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://acme.com/", 200, fetchedAt)

	assert.Equal(t, []string{
		"https://support.acme.com/sales",
		"https://demo.acme.com/",
	}, snap.ContactPages)
}

func TestExtract_Testimonials(t *testing.T) {
	page := `<body>
		<section class="testimonials">
			<div class="testimonial-card">Acme doubled our pipeline in one quarter.</div>
			<div class="testimonial-card">Acme doubled our pipeline in one quarter.</div>
			<div class="testimonial-card">Too short.</div>
		</section>
		<blockquote>The best onboarding experience we have had.</blockquote>
		<div id="testimonial-main">Support answered within minutes, every time.</div>
	</body>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, []string{
		"Acme doubled our pipeline in one quarter.",
		"The best onboarding experience we have had.",
		"Support answered within minutes, every time.",
	}, snap.Testimonials)
}

func TestExtract_TestimonialsCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "<blockquote>Customer quote number %d is long enough.</blockquote>", i)
	}

	snap := newTestExtractor(t, Options{}).Extract(b.String(), "https://example.com/", 200, fetchedAt)

	require.Len(t, snap.Testimonials, 5)
	assert.Equal(t, "Customer quote number 0 is long enough.", snap.Testimonials[0])
}

func TestExtract_IndustriesServed(t *testing.T) {
	tests := []struct {
		name string
		page string
		want []string
	}{
		{
			name: "heading then list",
			page: `<h2>Industries we serve</h2><ul><li>Healthcare</li><li>Finance</li><li>Healthcare</li></ul>`,
			want: []string{"Healthcare", "Finance"},
		},
		{
			name: "heading then paragraph",
			page: `<h3>Industry focus</h3><p>Logistics and manufacturing</p><ul><li>Not this</li></ul>`,
			want: []string{"Logistics and manufacturing"},
		},
		{
			name: "stops at next heading",
			page: `<h2>Industries</h2><h2>Pricing</h2><ul><li>Starter</li></ul>`,
			want: []string{},
		},
		{
			name: "bold label inside paragraph",
			page: `<div><p><strong>Industries:</strong></p><ol><li>Retail</li><li>Energy</li></ol></div>`,
			want: []string{"Retail", "Energy"},
		},
		{
			name: "no keyword",
			page: `<h2>Customers</h2><ul><li>Retail</li></ul>`,
			want: []string{},
		},
	}

	ex := newTestExtractor(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := ex.Extract(tt.page, "https://example.com/", 200, fetchedAt)
			assert.Equal(t, tt.want, snap.IndustriesServed)
		})
	}
}

func TestExtract_IndustriesCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("<h2>Industries</h2><ul>")
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "<li>Sector %d</li>", i)
	}
	b.WriteString("</ul>")

	snap := newTestExtractor(t, Options{}).Extract(b.String(), "https://example.com/", 200, fetchedAt)

	assert.Len(t, snap.IndustriesServed, 10)
}

func TestExtract_Geographies(t *testing.T) {
	page := `<p>Offices in North America, the UK and Germany. Serving customers in the USA.</p>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, []string{"North America", "USA", "UK", "Germany"}, snap.Geographies)
}

func TestExtract_Languages(t *testing.T) {
	page := `<html lang="EN"><body><p>Support in English, Spanish and French. Ask our Englishman.</p></body></html>`

	snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, []string{"EN", "English", "Spanish", "French"}, snap.LanguagesDetected)
}

func TestExtract_DeclaredLanguageUsesBaseTag(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"en-US", "EN"},
		{"pt-BR", "PT"},
		{"zh-Hant-TW", "ZH"},
		{"fil", "FIL"},
		{"not a tag", "Not A Tag"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			page := fmt.Sprintf(`<html lang="%s"><body><p>Hello</p></body></html>`, tt.lang)

			snap := newTestExtractor(t, Options{}).Extract(page, "https://example.com/", 200, fetchedAt)

			require.NotNil(t, snap.Language)
			assert.Equal(t, tt.lang, *snap.Language)
			assert.Equal(t, []string{tt.want}, snap.LanguagesDetected)
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	page := `<html lang="en"><head><title>Acme</title><meta name="keywords" content="a1, b2"></head><body>
		<h1>Acme platform</h1>
		<p>Acme helps sales teams across Europe and Asia. Available in German.</p>
		<a href="/contact">Contact</a><a href="/contact">Contact again</a>
		<a href="https://facebook.com/acme">fb</a><a href="https://instagram.com/acme">ig</a>
		<blockquote>Acme changed how our team works every day.</blockquote>
		<h2>Industries</h2><ul><li>SaaS</li><li>Fintech</li></ul>
	</body></html>`

	ex := newTestExtractor(t, Options{})
	first := ex.Extract(page, "https://example.com/", 200, fetchedAt)
	second := ex.Extract(page, "https://example.com/", 200, fetchedAt)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"https://example.com/contact"}, first.ContactPages)
	assert.Equal(t, []string{"Europe", "Asia"}, first.Geographies)
	assert.Equal(t, []string{"EN", "German"}, first.LanguagesDetected)
	assert.Equal(t, []string{"SaaS", "Fintech"}, first.IndustriesServed)
}

func TestExtract_RelativeLinksWithBadSourceURL(t *testing.T) {
	page := `<a href="/contact">Contact</a><a href="https://linkedin.com/company/acme">in</a>`

	snap := newTestExtractor(t, Options{}).Extract(page, "://bad", 200, fetchedAt)

	assert.Empty(t, snap.ContactPages)
	assert.Len(t, snap.SocialLinks, 1)
}

func TestNew_NilLexiconUsesDefault(t *testing.T) {
	ex := New(nil, Options{})
	require.NotNil(t, ex.lex)
	assert.Equal(t, DefaultMaxTextChars, ex.maxTextChars)
	assert.Equal(t, DefaultMaxKeywords, ex.maxKeywords)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "UK", label("uk"))
	assert.Equal(t, "USA", label("usa"))
	assert.Equal(t, "North America", label("north america"))
	assert.Equal(t, "Emea", label("emea"))
}
