package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLexicon(t *testing.T) {
	lex, err := DefaultLexicon()
	require.NoError(t, err)

	assert.Len(t, lex.StopWords, 31)
	assert.Contains(t, lex.stop, "the")
	assert.Contains(t, lex.stop, "other")
	assert.NotEmpty(t, lex.Geographies)
	assert.NotEmpty(t, lex.Languages)
	assert.Equal(t, []string{"contact", "support", "book", "demo", "talk", "sales", "team", "about", "request", "meet"}, lex.ContactKeywords)

	var platforms []string
	for _, p := range lex.SocialPlatforms {
		platforms = append(platforms, p.Platform)
	}
	assert.Equal(t, []string{
		"LinkedIn", "X", "Facebook", "Instagram", "YouTube",
		"TikTok", "Medium", "GitHub", "Glassdoor", "Crunchbase",
	}, platforms)
}

func TestLexicon_PlatformFor(t *testing.T) {
	lex, err := DefaultLexicon()
	require.NoError(t, err)

	tests := []struct {
		host string
		want string
		ok   bool
	}{
		{"linkedin.com", "LinkedIn", true},
		{"www.linkedin.com", "LinkedIn", true},
		{"lnkd.in", "LinkedIn", true},
		{"x.com", "X", true},
		{"mobile.twitter.com", "X", true},
		{"dropbox.com", "", false},
		{"youtu.be", "YouTube", true},
		{"acme.medium.com", "Medium", true},
		{"www.crunchbase.com", "Crunchbase", true},
		{"notlinkedin.com", "", false},
		{"example.com", "", false},
	}
	for _, tt := range tests {
		got, ok := lex.platformFor(tt.host)
		assert.Equal(t, tt.ok, ok, tt.host)
		assert.Equal(t, tt.want, got, tt.host)
	}
}

func TestLoadLexicon_EmptyPathUsesDefault(t *testing.T) {
	lex, err := LoadLexicon("")
	require.NoError(t, err)
	assert.Len(t, lex.SocialPlatforms, 10)
}

func TestLoadLexicon_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stop_words: [acme]
geographies: [Bavaria]
languages: [Klingon]
social_platforms:
  - platform: Mastodon
    host: '(^|\.)mastodon\.social$'
contact_keywords: [Hello]
industry_keywords: [sectors]
`), 0o644))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)

	ex := New(lex, Options{})
	snap := ex.Extract(`<html><body>
		<p>Acme acme widgets from Bavaria, documentation in Klingon.</p>
		<a href="https://mastodon.social/@acme">toot</a>
		<a href="/hello">Say hi</a>
		<h2>Sectors</h2><ul><li>Space</li></ul>
	</body></html>`, "https://acme.test/", 200, fetchedAt)

	assert.NotContains(t, snap.Keywords, "acme")
	assert.Contains(t, snap.Keywords, "widgets")
	assert.Equal(t, []string{"Bavaria"}, snap.Geographies)
	assert.Equal(t, []string{"Klingon"}, snap.LanguagesDetected)
	require.Len(t, snap.SocialLinks, 1)
	assert.Equal(t, "Mastodon", snap.SocialLinks[0].Platform)
	assert.Equal(t, []string{"https://acme.test/hello"}, snap.ContactPages)
	assert.Equal(t, []string{"Space"}, snap.IndustriesServed)
}

func TestLoadLexicon_MissingFile(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract: read lexicon")
}

func TestLoadLexicon_BadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
social_platforms:
  - platform: Broken
    host: '(unclosed'
`), 0o644))

	_, err := LoadLexicon(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
}

func TestLoadLexicon_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stop_words: [unterminated"), 0o644))

	_, err := LoadLexicon(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract: parse lexicon")
}
