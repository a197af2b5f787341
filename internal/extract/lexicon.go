package extract

import (
	_ "embed"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// Lexicon holds the static word lists the extractor matches against.
// It is read-only once loaded and safe to share between goroutines.
type Lexicon struct {
	StopWords        []string        `yaml:"stop_words"`
	Geographies      []string        `yaml:"geographies"`
	Languages        []string        `yaml:"languages"`
	SocialPlatforms  []SocialPattern `yaml:"social_platforms"`
	ContactKeywords  []string        `yaml:"contact_keywords"`
	IndustryKeywords []string        `yaml:"industry_keywords"`

	stop      map[string]struct{}
	social    []compiledPattern
	languages []compiledLanguage
}

// SocialPattern maps a platform name to a regexp over a link's lowercased host.
type SocialPattern struct {
	Platform string `yaml:"platform"`
	Host     string `yaml:"host"`
}

type compiledPattern struct {
	platform string
	host     *regexp.Regexp
}

type compiledLanguage struct {
	name string
	word *regexp.Regexp
}

// DefaultLexicon parses the embedded lexicon.
func DefaultLexicon() (*Lexicon, error) {
	return parseLexicon(defaultLexiconYAML)
}

// LoadLexicon reads a lexicon from path. An empty path returns the
// embedded default.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return DefaultLexicon()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read lexicon %s", path)
	}
	return parseLexicon(data)
}

func parseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, eris.Wrap(err, "extract: parse lexicon")
	}
	if err := lex.compile(); err != nil {
		return nil, err
	}
	return &lex, nil
}

func (l *Lexicon) compile() error {
	l.stop = make(map[string]struct{}, len(l.StopWords))
	for _, w := range l.StopWords {
		l.stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	l.social = l.social[:0]
	for _, p := range l.SocialPlatforms {
		if p.Platform == "" || p.Host == "" {
			return eris.Errorf("extract: social pattern needs platform and host: %+v", p)
		}
		re, err := regexp.Compile(p.Host)
		if err != nil {
			return eris.Wrapf(err, "extract: compile social pattern for %s", p.Platform)
		}
		l.social = append(l.social, compiledPattern{platform: p.Platform, host: re})
	}

	l.languages = l.languages[:0]
	for _, name := range l.Languages {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		l.languages = append(l.languages, compiledLanguage{
			name: name,
			word: regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
		})
	}

	for i, kw := range l.ContactKeywords {
		l.ContactKeywords[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	for i, kw := range l.IndustryKeywords {
		l.IndustryKeywords[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	for i, g := range l.Geographies {
		l.Geographies[i] = strings.ToLower(strings.TrimSpace(g))
	}
	return nil
}

// platformFor returns the first platform whose pattern matches host.
func (l *Lexicon) platformFor(host string) (string, bool) {
	for _, p := range l.social {
		if p.host.MatchString(host) {
			return p.platform, true
		}
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
