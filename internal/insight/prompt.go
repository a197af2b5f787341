package insight

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/textutil"
)

//go:embed schema.json
var reportSchema string

// systemInstruction is the fixed role and rule set sent with every request.
const systemInstruction = `You are Selda AI, a B2B sales strategist. You receive a structured snapshot of a company's website and produce a sales-intelligence report about that company.

Return a single JSON object that follows this schema exactly:

%s

Rules:
- Return only the JSON object. No prose, no markdown fences.
- Include every key in the schema. Array fields must always be present; use [] when you have nothing to add.
- Never invent individuals, names of employees, email addresses, phone numbers or other personal contact data. Describe buyer roles, not people.
- Base the analysis on the snapshot. When information is missing, infer cautiously from the available signals or use "Unknown".
- Keep every string concise and specific to this company.`

// SystemPrompt returns the system instruction with the report schema embedded.
func SystemPrompt() string {
	return fmt.Sprintf(systemInstruction, reportSchema)
}

// promptSnapshot is the trimmed projection of a Snapshot sent to the model.
// Raw markup never leaves the process.
type promptSnapshot struct {
	URL               string             `json:"url"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Language          *string            `json:"language"`
	Headings          []string           `json:"headings"`
	TextExcerpt       string             `json:"text_excerpt"`
	Keywords          []string           `json:"keywords"`
	MetaKeywords      []string           `json:"meta_keywords"`
	SocialLinks       []model.SocialLink `json:"social_links"`
	ContactPages      []string           `json:"contact_pages"`
	Testimonials      []string           `json:"testimonials"`
	IndustriesServed  []string           `json:"industries_served"`
	Geographies       []string           `json:"geographies"`
	LanguagesDetected []string           `json:"languages_detected"`
}

func (r *Requester) projectSnapshot(snap *model.Snapshot) promptSnapshot {
	headings := snap.Headings
	if len(headings) > r.cfg.MaxHeadings {
		headings = headings[:r.cfg.MaxHeadings]
	}
	return promptSnapshot{
		URL:               snap.URL,
		Title:             snap.Title,
		Description:       snap.Description,
		Language:          snap.Language,
		Headings:          orEmpty(headings),
		TextExcerpt:       textutil.Truncate(snap.TextExcerpt, r.cfg.PromptTextChars),
		Keywords:          orEmpty(snap.Keywords),
		MetaKeywords:      orEmpty(snap.MetaKeywords),
		SocialLinks:       orEmpty(snap.SocialLinks),
		ContactPages:      orEmpty(snap.ContactPages),
		Testimonials:      orEmpty(snap.Testimonials),
		IndustriesServed:  orEmpty(snap.IndustriesServed),
		Geographies:       orEmpty(snap.Geographies),
		LanguagesDetected: orEmpty(snap.LanguagesDetected),
	}
}

// userPrompt renders the user message carrying the snapshot projection.
func (r *Requester) userPrompt(snap *model.Snapshot) (string, error) {
	payload, err := json.MarshalIndent(r.projectSnapshot(snap), "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "insight: marshal snapshot")
	}
	return "Website snapshot:\n\n" + string(payload) + "\n\nProduce the report JSON for this company.", nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
