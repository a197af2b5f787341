package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/resilience"
)

func sampleReport() *model.Report {
	footer := model.DefaultFooter()
	r := &model.Report{
		Company: model.CompanyProfile{
			Name:     "Acme",
			Website:  "https://acme.com",
			Keywords: model.StringList{"widgets", "automation"},
		},
		BusinessUnderstanding: model.BusinessUnderstanding{
			ProblemTheySolve: "Manual widget assembly",
			ValueProposition: "Faster widgets",
		},
		TargetStrategy: model.TargetStrategy{
			DecisionMakerProfiles: []model.DecisionMakerProfile{{
				Role:        "VP Operations",
				Motivations: model.StringList{"Throughput"},
			}},
		},
		ActionGuidelines: model.ActionGuidelines{
			MessagingStyle:       "Direct",
			ExamplePitch:         "Cut assembly time in half.",
			RecommendedNextSteps: model.StringList{"Book a demo", "Share a case study"},
		},
		SalesPlayRecommendations: model.SalesPlayRecommendations{
			PrioritySequences: []model.Sequence{{
				SequenceName: "Ops leaders",
				Channel:      "Email",
				Steps:        model.StringList{"Intro", "Case study"},
			}},
		},
		ContentAndProof: model.ContentAndProof{
			CallToActionAssets: []model.Asset{{Title: "Demo", URL: "https://acme.com/demo", UsedFor: "Conversion"}},
		},
		VerifierInsights: &model.VerifierInsights{
			Testimonials: model.StringList{"Acme doubled our throughput in a quarter."},
			Languages:    model.StringList{"EN"},
		},
		Footer: &footer,
	}
	r.Normalize()
	r.Metadata[model.MetaSourceURL] = "https://acme.com/"
	r.Metadata[model.MetaRevOpsChecklist] = []string{"Sync ICP to CRM"}
	return r
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatJSON},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{" pdf ", FormatPDF},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat_Unknown(t *testing.T) {
	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, resilience.IsKind(err, resilience.KindInvalidInput))
}

func TestFormat_ExtensionAndContentType(t *testing.T) {
	assert.Equal(t, ".json", FormatJSON.Extension())
	assert.Equal(t, ".yaml", FormatYAML.Extension())
	assert.Equal(t, ".md", FormatMarkdown.Extension())
	assert.Equal(t, ".pdf", FormatPDF.Extension())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render(sampleReport(), Format("xml"))
	require.Error(t, err)
	assert.True(t, resilience.IsKind(err, resilience.KindInvalidInput))
}

func TestRender_NilReport(t *testing.T) {
	_, err := Render(nil, FormatJSON)
	assert.True(t, resilience.IsKind(err, resilience.KindInvalidInput))
}

func TestRender_JSON(t *testing.T) {
	out, err := Render(sampleReport(), FormatJSON)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out), "{\n  \"company\": {"))
	assert.True(t, bytes.HasSuffix(out, []byte("}\n")))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	competitors := decoded["competitive_landscape"].(map[string]any)["notable_competitors"]
	assert.Equal(t, []any{}, competitors)
	assert.Equal(t, "https://selda.ai", decoded["footer"].(map[string]any)["link"])
}

func TestRender_YAML(t *testing.T) {
	out, err := Render(sampleReport(), FormatYAML)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	company := decoded["company"].(map[string]any)
	assert.Equal(t, "Acme", company["name"])
	assert.Equal(t, []any{"widgets", "automation"}, company["keywords"])
	assert.Contains(t, string(out), "source_url: https://acme.com/")
}

func TestRender_ExtraKeys(t *testing.T) {
	r := sampleReport()
	r.Extra = map[string]any{"hiring_signals": []any{"SDR role open"}}

	out, err := Render(r, FormatYAML)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, []any{"SDR role open"}, decoded["hiring_signals"])

	out, err = Render(r, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"hiring_signals": [`)
}

func TestRender_Markdown(t *testing.T) {
	out, err := Render(sampleReport(), FormatMarkdown)
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "# Acme Sales Intelligence Report\n"))
	assert.Contains(t, md, "**Keywords:** widgets, automation")
	assert.Contains(t, md, "## Business Understanding\n\n**Problem they solve:** Manual widget assembly")
	assert.Contains(t, md, "### VP Operations")
	assert.Contains(t, md, "- Book a demo\n- Share a case study\n")
	assert.Contains(t, md, "### Ops leaders / Email\n\n1. Intro\n2. Case study\n")
	assert.Contains(t, md, "- [Demo](https://acme.com/demo) - Conversion")
	assert.Contains(t, md, "> Acme doubled our throughput in a quarter.")
	assert.Contains(t, md, "- revops_checklist: Sync ICP to CRM")
	assert.Contains(t, md, "**Find your customers — automatically.**")
	assert.True(t, strings.HasSuffix(md, "https://selda.ai\n"))
}

func TestMarkdown_OmitsEmptySections(t *testing.T) {
	r := &model.Report{Company: model.CompanyProfile{Name: "Acme"}}
	r.Normalize()

	md := Markdown(r)
	assert.Equal(t, "# Acme Sales Intelligence Report\n", md)
	assert.NotContains(t, md, "## Competitive Landscape")
	assert.NotContains(t, md, "## Metadata")
}

func TestMarkdown_ListEndsBeforeNextSection(t *testing.T) {
	r := &model.Report{
		ActionGuidelines: model.ActionGuidelines{RecommendedNextSteps: model.StringList{"Call"}},
		BuyingTriggers:   model.BuyingTriggers{PrimarySignals: model.StringList{"Hiring"}},
	}
	r.Normalize()

	md := Markdown(r)
	assert.Contains(t, md, "- Call\n\n## Buying Triggers\n\n**Primary signals:** Hiring")
}

func TestMarkdown_UnnamedCompany(t *testing.T) {
	r := &model.Report{}
	r.Normalize()
	assert.True(t, strings.HasPrefix(Markdown(r), "# Company Sales Intelligence Report"))
}

func TestRender_PDF(t *testing.T) {
	out, err := Render(sampleReport(), FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestCleanInline(t *testing.T) {
	assert.Equal(t, "Email: hi", cleanInline("**Email:** hi"))
	assert.Equal(t, "Demo (https://acme.com/demo) - x", cleanInline("[Demo](https://acme.com/demo) - x"))
}
