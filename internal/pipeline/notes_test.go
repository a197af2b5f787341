package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/selda-cli/internal/model"
)

func TestSnapshotNotes_Sparse(t *testing.T) {
	notes := SnapshotNotes(&model.Snapshot{})
	assert.Equal(t, []string{
		"Page has no title.",
		"Page has no meta description.",
		"Page does not declare a language.",
		"Found 0 headings.",
		"No social profiles linked.",
		"No contact or demo pages detected.",
	}, notes)
}

func TestSnapshotNotes_Rich(t *testing.T) {
	lang := "en"
	snap := &model.Snapshot{
		Title:       "Acme",
		Description: "Widgets",
		Language:    &lang,
		Headings:    []string{"Welcome"},
		TextExcerpt: "Acme Widgets Welcome…",
		SocialLinks: []model.SocialLink{
			{Platform: "LinkedIn", URL: "https://linkedin.com/company/acme"},
			{Platform: "X", URL: "https://x.com/acme"},
		},
		ContactPages:     []string{"https://acme.com/contact", "https://acme.com/demo"},
		Testimonials:     []string{"Acme doubled our pipeline in a quarter."},
		IndustriesServed: []string{"Healthcare", "Retail"},
		Geographies:      []string{"USA"},
	}

	assert.Equal(t, []string{
		"Declared page language: en.",
		"Found 1 heading.",
		"Social profiles linked: LinkedIn, X.",
		"Found 2 contact pages.",
		"Found 1 testimonial.",
		"Industries listed: Healthcare, Retail.",
		"Geographies mentioned: USA.",
		"Page text was truncated for analysis.",
	}, SnapshotNotes(snap))
}

func TestSnapshotNotes_Nil(t *testing.T) {
	notes := SnapshotNotes(nil)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}
