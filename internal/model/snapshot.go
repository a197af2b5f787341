package model

import "time"

// SocialLink is a company profile on a third-party platform.
type SocialLink struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// Snapshot is the bounded, structured extraction of one fetched page.
// It is produced once per pipeline run and never mutated afterwards.
type Snapshot struct {
	URL               string       `json:"url"`
	FetchedAt         time.Time    `json:"fetched_at"`
	Status            int          `json:"status"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Language          *string      `json:"language"`
	Headings          []string     `json:"headings"`
	TextExcerpt       string       `json:"text_excerpt"`
	Keywords          []string     `json:"keywords"`
	MetaKeywords      []string     `json:"meta_keywords"`
	SocialLinks       []SocialLink `json:"social_links"`
	ContactPages      []string     `json:"contact_pages"`
	Testimonials      []string     `json:"testimonials"`
	IndustriesServed  []string     `json:"industries_served"`
	Geographies       []string     `json:"geographies"`
	LanguagesDetected []string     `json:"languages_detected"`
	RawHTML           string       `json:"-"`
}

// LanguageOrEmpty returns the declared document language, or "" when absent.
func (s *Snapshot) LanguageOrEmpty() string {
	if s == nil || s.Language == nil {
		return ""
	}
	return *s.Language
}
