package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/selda-cli/internal/model"
)

// Markdown renders report as a readable brief. Empty sections are omitted.
func Markdown(report *model.Report) string {
	var b mdBuilder

	name := report.Company.Name
	if name == "" {
		name = "Company"
	}
	b.heading(1, name+" Sales Intelligence Report")
	b.field("Website", report.Company.Website)
	b.field("Industry", report.Company.Industry)
	b.field("Tone of voice", report.Company.ToneOfVoice)
	b.paragraph(report.Company.Description)
	b.inlineList("Keywords", report.Company.Keywords)

	bu := report.BusinessUnderstanding
	b.section("Business Understanding")
	b.field("Problem they solve", bu.ProblemTheySolve)
	b.field("Value proposition", bu.ValueProposition)
	b.field("Competitive advantage", bu.CompetitiveAdvantage)
	b.field("Market position", bu.MarketPosition)
	b.field("Buying committee", bu.BuyingCommitteeNotes)

	ts := report.TargetStrategy
	b.section("Target Strategy")
	b.paragraph(ts.StrategicNotes)
	b.inlineList("Recommended channels", ts.RecommendedChannels)
	for _, p := range ts.DecisionMakerProfiles {
		b.heading(3, p.Role)
		b.field("Recommended angle", p.RecommendedAngle)
		b.inlineList("Motivations", p.Motivations)
		b.inlineList("Pain points", p.PainPoints)
		b.inlineList("Channels", p.RecommendedChannels)
		b.bullets(p.MessagingExamples)
	}
	for _, c := range ts.ChannelPriority {
		b.bullet(joinNonEmpty(" - ", c.Channel+" ("+c.Priority+")", c.Reason))
	}

	ag := report.ActionGuidelines
	b.section("Action Guidelines")
	b.field("Messaging style", ag.MessagingStyle)
	b.field("Example pitch", ag.ExamplePitch)
	b.bullets(ag.RecommendedNextSteps)

	b.section("Ideal Customer Profiles")
	for _, s := range report.IdealCustomerProfiles.Segments {
		b.heading(3, s.Segment)
		b.inlineList("Buying motivations", s.BuyingMotivations)
		b.inlineList("Typical pains", s.TypicalPains)
		b.inlineList("Evaluation criteria", s.EvaluationCriteria)
		b.field("Positioning", s.SuggestedPositioning)
	}

	bt := report.BuyingTriggers
	b.section("Buying Triggers")
	b.inlineList("Primary signals", bt.PrimarySignals)
	b.inlineList("Monitoring channels", bt.MonitoringChannels)
	for _, a := range bt.TriggerActions {
		b.bullet(joinNonEmpty(" - ", "**"+a.Trigger+"**", a.Watch, a.RecommendedAction))
	}

	b.section("Product Breakdown")
	for _, o := range report.ProductBreakdown.KeyOfferings {
		b.bullet(joinNonEmpty(": ", "**"+o.Name+"**", o.Description))
	}
	b.inlineList("Pricing signals", report.ProductBreakdown.PricingSignals)

	cl := report.CompetitiveLandscape
	b.section("Competitive Landscape")
	b.inlineList("Notable competitors", cl.NotableCompetitors)
	b.inlineList("Differentiators", cl.Differentiators)
	for _, c := range cl.Counterplays {
		b.bullet(joinNonEmpty(": ", "**"+c.Competitor+"**", c.Counterplay))
	}

	b.section("Content and Proof")
	b.bullets(report.ContentAndProof.SocialProof)
	for _, a := range report.ContentAndProof.CallToActionAssets {
		title := a.Title
		if a.URL != "" {
			title = "[" + a.Title + "](" + a.URL + ")"
		}
		b.bullet(joinNonEmpty(" - ", title, a.UsedFor))
	}

	b.section("Partnerships")
	b.inlineList("Integration partners", report.Partnerships.IntegrationPartners)
	b.paragraph(report.Partnerships.EcosystemNotes)

	sp := report.SalesPlayRecommendations
	b.section("Sales Plays")
	for _, s := range sp.PrioritySequences {
		b.heading(3, joinNonEmpty(" / ", s.SequenceName, s.Channel))
		b.field("Angle", s.MessagingAngle)
		b.numbered(s.Steps)
	}
	for _, o := range sp.ObjectionHandling {
		b.bullet(joinNonEmpty(": ", "**"+o.Objection+"**", o.Response))
	}
	if t := sp.FirstTouchTemplate; t != nil {
		b.heading(3, "First touch")
		b.field("Email", t.Email)
		b.field("LinkedIn DM", t.LinkedInDM)
		b.field("Phone opener", t.PhoneOpener)
		b.field("SMS", t.SMS)
	}

	if cs := report.CampaignStarter; cs != nil {
		b.section("Campaign Starter")
		b.field("Objective", cs.Objective)
		for _, step := range cs.SequenceOutline {
			b.bullet(fmt.Sprintf("Day %d (%s): %s", step.Day, step.Channel, step.Description))
		}
		b.inlineList("Success metrics", cs.SuccessMetrics)
	}

	if vi := report.VerifierInsights; vi != nil {
		b.section("Verified on the Website")
		b.inlineList("Industries served", vi.IndustriesServed)
		b.inlineList("Geographies", vi.Geographies)
		b.inlineList("Languages", vi.Languages)
		b.inlineList("Awards and certifications", vi.AwardsOrCertifications)
		for _, t := range vi.Testimonials {
			b.quote(t)
		}
	}

	if len(report.Metadata) > 0 {
		b.section("Metadata")
		keys := make([]string, 0, len(report.Metadata))
		for k := range report.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.metadata(k, report.Metadata[k])
		}
	}

	if f := report.Footer; f != nil {
		b.paragraph("---")
		b.paragraph("**" + f.Tagline + "**")
		b.paragraph(f.Description)
		b.paragraph(f.Note)
		b.paragraph(f.Link)
	}

	return b.String()
}

// mdBuilder writes Markdown blocks separated by blank lines. Sections are
// written lazily so a heading with no content below it is dropped.
type mdBuilder struct {
	sb      strings.Builder
	pending string
	inList  bool
}

func (b *mdBuilder) String() string {
	return strings.TrimRight(b.sb.String(), "\n") + "\n"
}

func (b *mdBuilder) section(title string) {
	b.pending = title
}

// block closes an open list and writes any pending section heading.
func (b *mdBuilder) block() {
	if b.inList {
		b.blank()
		b.inList = false
	}
	if b.pending != "" {
		title := b.pending
		b.pending = ""
		b.line("## " + title)
		b.blank()
	}
}

func (b *mdBuilder) heading(level int, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	b.block()
	b.line(strings.Repeat("#", level) + " " + text)
	b.blank()
}

func (b *mdBuilder) line(s string) {
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
}

func (b *mdBuilder) blank() {
	b.sb.WriteByte('\n')
}

func (b *mdBuilder) paragraph(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	b.block()
	b.line(s)
	b.blank()
}

func (b *mdBuilder) field(label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	b.paragraph("**" + label + ":** " + value)
}

func (b *mdBuilder) inlineList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.field(label, strings.Join(items, ", "))
}

func (b *mdBuilder) bullet(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	if !b.inList || b.pending != "" {
		b.block()
	}
	b.line("- " + s)
	b.inList = true
}

func (b *mdBuilder) bullets(items []string) {
	for _, item := range items {
		b.bullet(item)
	}
}

func (b *mdBuilder) numbered(items []string) {
	for i, item := range items {
		if !b.inList || b.pending != "" {
			b.block()
		}
		b.line(fmt.Sprintf("%d. %s", i+1, item))
		b.inList = true
	}
}

func (b *mdBuilder) quote(s string) {
	b.block()
	b.line("> " + s)
	b.blank()
}

func (b *mdBuilder) metadata(key string, value any) {
	switch v := value.(type) {
	case string:
		b.bullet(key + ": " + v)
	case []string:
		b.bullet(key + ": " + strings.Join(v, "; "))
	case []model.SocialLink:
		parts := make([]string, 0, len(v))
		for _, l := range v {
			parts = append(parts, l.Platform+" "+l.URL)
		}
		b.bullet(key + ": " + strings.Join(parts, "; "))
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		b.bullet(key + ": " + strings.Join(parts, "; "))
	default:
		b.bullet(fmt.Sprintf("%s: %v", key, v))
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(strings.Trim(p, "*")) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
