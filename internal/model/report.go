package model

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// Report is the structured sales-intelligence record returned to callers.
// Its shape follows the insight schema sent to the model; Normalize
// guarantees every array field is present.
type Report struct {
	Company                  CompanyProfile           `json:"company" yaml:"company"`
	BusinessUnderstanding    BusinessUnderstanding    `json:"business_understanding" yaml:"business_understanding"`
	TargetStrategy           TargetStrategy           `json:"target_strategy" yaml:"target_strategy"`
	ActionGuidelines         ActionGuidelines         `json:"action_guidelines" yaml:"action_guidelines"`
	IdealCustomerProfiles    IdealCustomerProfiles    `json:"ideal_customer_profiles" yaml:"ideal_customer_profiles"`
	BuyingTriggers           BuyingTriggers           `json:"buying_triggers" yaml:"buying_triggers"`
	ProductBreakdown         ProductBreakdown         `json:"product_breakdown" yaml:"product_breakdown"`
	CompetitiveLandscape     CompetitiveLandscape     `json:"competitive_landscape" yaml:"competitive_landscape"`
	ContentAndProof          ContentAndProof          `json:"content_and_proof" yaml:"content_and_proof"`
	Partnerships             Partnerships             `json:"partnerships" yaml:"partnerships"`
	SalesPlayRecommendations SalesPlayRecommendations `json:"sales_play_recommendations" yaml:"sales_play_recommendations"`
	CampaignStarter          *CampaignStarter         `json:"campaign_starter,omitempty" yaml:"campaign_starter,omitempty"`
	VerifierInsights         *VerifierInsights        `json:"verifier_insights,omitempty" yaml:"verifier_insights,omitempty"`
	Footer                   *Footer                  `json:"footer,omitempty" yaml:"footer,omitempty"`
	Metadata                 Metadata                 `json:"metadata" yaml:"metadata"`

	// Extra holds top-level keys outside the schema, kept verbatim. They are
	// serialized inline after the known sections.
	Extra map[string]any `json:"-" yaml:",inline"`
}

// reportJSON has Report's fields without its methods.
type reportJSON Report

// reportKeys are the JSON names of Report's schema sections.
var reportKeys = func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(reportJSON{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}()

// IsReportKey reports whether key names a schema section of Report.
func IsReportKey(key string) bool {
	return reportKeys[key]
}

// MarshalJSON writes the schema sections followed by Extra keys in sorted
// order. Extra keys that collide with a section are skipped.
func (r Report) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(reportJSON(r))
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		if !reportKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.Extra[k])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the schema sections and collects any other
// top-level keys into Extra.
func (r *Report) UnmarshalJSON(data []byte) error {
	var base reportJSON
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	*r = Report(base)
	r.Extra = nil
	for k, raw := range all {
		if reportKeys[k] {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[k] = v
	}
	return nil
}

// CompanyProfile describes the analyzed company.
type CompanyProfile struct {
	Name        string     `json:"name" yaml:"name"`
	Website     string     `json:"website,omitempty" yaml:"website,omitempty"`
	Industry    string     `json:"industry,omitempty" yaml:"industry,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Keywords    StringList `json:"keywords" yaml:"keywords"`
	ToneOfVoice string     `json:"tone_of_voice,omitempty" yaml:"tone_of_voice,omitempty"`
}

// BusinessUnderstanding summarizes what the company sells and why it wins.
type BusinessUnderstanding struct {
	ProblemTheySolve     string `json:"problem_they_solve" yaml:"problem_they_solve"`
	ValueProposition     string `json:"value_proposition" yaml:"value_proposition"`
	CompetitiveAdvantage string `json:"competitive_advantage" yaml:"competitive_advantage"`
	MarketPosition       string `json:"market_position" yaml:"market_position"`
	BuyingCommitteeNotes string `json:"buying_committee_notes,omitempty" yaml:"buying_committee_notes,omitempty"`
}

// TargetStrategy lists who to sell to and through which channels.
type TargetStrategy struct {
	DecisionMakerProfiles []DecisionMakerProfile `json:"decision_maker_profiles" yaml:"decision_maker_profiles"`
	RecommendedChannels   StringList             `json:"recommended_channels" yaml:"recommended_channels"`
	StrategicNotes        string                 `json:"strategic_notes,omitempty" yaml:"strategic_notes,omitempty"`
	ChannelPriority       []ChannelPriority      `json:"channel_priority" yaml:"channel_priority"`
}

// DecisionMakerProfile is a buyer persona. It never names a real person.
type DecisionMakerProfile struct {
	Role                string     `json:"role" yaml:"role"`
	Motivations         StringList `json:"motivations" yaml:"motivations"`
	PainPoints          StringList `json:"pain_points" yaml:"pain_points"`
	RecommendedAngle    string     `json:"recommended_angle" yaml:"recommended_angle"`
	RecommendedChannels StringList `json:"recommended_channels" yaml:"recommended_channels"`
	MessagingExamples   StringList `json:"messaging_examples" yaml:"messaging_examples"`
}

// ChannelPriority ranks an outreach channel as high, medium or low.
type ChannelPriority struct {
	Channel  string `json:"channel" yaml:"channel"`
	Priority string `json:"priority" yaml:"priority"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ActionGuidelines holds messaging guidance.
type ActionGuidelines struct {
	MessagingStyle       string     `json:"messaging_style" yaml:"messaging_style"`
	ExamplePitch         string     `json:"example_pitch" yaml:"example_pitch"`
	RecommendedNextSteps StringList `json:"recommended_next_steps" yaml:"recommended_next_steps"`
}

// IdealCustomerProfiles groups customer segments.
type IdealCustomerProfiles struct {
	Segments []Segment `json:"segments" yaml:"segments"`
}

// Segment is one ideal-customer segment.
type Segment struct {
	Segment              string     `json:"segment" yaml:"segment"`
	BuyingMotivations    StringList `json:"buying_motivations" yaml:"buying_motivations"`
	TypicalPains         StringList `json:"typical_pains" yaml:"typical_pains"`
	EvaluationCriteria   StringList `json:"evaluation_criteria" yaml:"evaluation_criteria"`
	SuggestedPositioning string     `json:"suggested_positioning,omitempty" yaml:"suggested_positioning,omitempty"`
}

// BuyingTriggers lists signals that indicate purchase intent.
type BuyingTriggers struct {
	PrimarySignals     StringList      `json:"primary_signals" yaml:"primary_signals"`
	MonitoringChannels StringList      `json:"monitoring_channels" yaml:"monitoring_channels"`
	TriggerActions     []TriggerAction `json:"trigger_actions" yaml:"trigger_actions"`
}

// TriggerAction maps a trigger to a recommended response.
type TriggerAction struct {
	Trigger           string `json:"trigger" yaml:"trigger"`
	Watch             string `json:"watch" yaml:"watch"`
	RecommendedAction string `json:"recommended_action" yaml:"recommended_action"`
}

// ProductBreakdown lists offerings and pricing hints.
type ProductBreakdown struct {
	KeyOfferings   []Offering `json:"key_offerings" yaml:"key_offerings"`
	PricingSignals StringList `json:"pricing_signals" yaml:"pricing_signals"`
}

// Offering is one product or service.
type Offering struct {
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description" yaml:"description"`
	TargetCustomer string `json:"target_customer,omitempty" yaml:"target_customer,omitempty"`
}

// CompetitiveLandscape lists competitors and how to position against them.
type CompetitiveLandscape struct {
	NotableCompetitors StringList    `json:"notable_competitors" yaml:"notable_competitors"`
	Differentiators    StringList    `json:"differentiators" yaml:"differentiators"`
	Counterplays       []Counterplay `json:"counterplays" yaml:"counterplays"`
}

// Counterplay is a response to a specific competitor.
type Counterplay struct {
	Competitor  string `json:"competitor" yaml:"competitor"`
	Counterplay string `json:"counterplay" yaml:"counterplay"`
}

// ContentAndProof lists proof assets.
type ContentAndProof struct {
	SocialProof        StringList `json:"social_proof" yaml:"social_proof"`
	CallToActionAssets []Asset    `json:"call_to_action_assets" yaml:"call_to_action_assets"`
}

// Asset is a call-to-action asset such as a demo page or case study.
type Asset struct {
	Title       string `json:"title" yaml:"title"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	UsedFor     string `json:"used_for,omitempty" yaml:"used_for,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// UnmarshalJSON accepts either an asset object or a bare title string.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var title string
	if err := json.Unmarshal(data, &title); err == nil {
		*a = Asset{Title: title}
		return nil
	}
	type plain Asset
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Asset(p)
	return nil
}

// Partnerships lists integration and ecosystem partners.
type Partnerships struct {
	IntegrationPartners StringList `json:"integration_partners" yaml:"integration_partners"`
	EcosystemNotes      string     `json:"ecosystem_notes,omitempty" yaml:"ecosystem_notes,omitempty"`
}

// SalesPlayRecommendations holds outreach sequences and objection handling.
type SalesPlayRecommendations struct {
	PrioritySequences  []Sequence          `json:"priority_sequences" yaml:"priority_sequences"`
	ObjectionHandling  []ObjectionResponse `json:"objection_handling" yaml:"objection_handling"`
	FirstTouchTemplate *FirstTouchTemplate `json:"first_touch_template,omitempty" yaml:"first_touch_template,omitempty"`
}

// Sequence is a multi-step outreach play.
type Sequence struct {
	SequenceName   string     `json:"sequence_name" yaml:"sequence_name"`
	Channel        string     `json:"channel" yaml:"channel"`
	Steps          StringList `json:"steps" yaml:"steps"`
	MessagingAngle string     `json:"messaging_angle" yaml:"messaging_angle"`
}

// ObjectionResponse pairs a common objection with a response.
type ObjectionResponse struct {
	Objection string `json:"objection" yaml:"objection"`
	Response  string `json:"response" yaml:"response"`
}

// FirstTouchTemplate holds opening messages per channel.
type FirstTouchTemplate struct {
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	LinkedInDM  string `json:"linkedin_dm,omitempty" yaml:"linkedin_dm,omitempty"`
	PhoneOpener string `json:"phone_opener,omitempty" yaml:"phone_opener,omitempty"`
	SMS         string `json:"sms,omitempty" yaml:"sms,omitempty"`
}

// CampaignStarter is an optional starter campaign plan.
type CampaignStarter struct {
	Objective       string         `json:"objective" yaml:"objective"`
	SequenceOutline []CampaignStep `json:"sequence_outline" yaml:"sequence_outline"`
	SuccessMetrics  StringList     `json:"success_metrics" yaml:"success_metrics"`
}

// CampaignStep is one day of a campaign outline.
type CampaignStep struct {
	Day         int    `json:"day" yaml:"day"`
	Description string `json:"description" yaml:"description"`
	Channel     string `json:"channel" yaml:"channel"`
}

// VerifierInsights holds signals verified against the page itself.
type VerifierInsights struct {
	Testimonials           StringList `json:"testimonials" yaml:"testimonials"`
	IndustriesServed       StringList `json:"industries_served" yaml:"industries_served"`
	Geographies            StringList `json:"geographies" yaml:"geographies"`
	Languages              StringList `json:"languages" yaml:"languages"`
	AwardsOrCertifications StringList `json:"awards_or_certifications" yaml:"awards_or_certifications"`
}

// Footer is the branding block appended to every report.
type Footer struct {
	Tagline     string `json:"tagline" yaml:"tagline" mapstructure:"tagline"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
	Note        string `json:"note" yaml:"note" mapstructure:"note"`
	Link        string `json:"link" yaml:"link" mapstructure:"link"`
}

// DefaultFooter returns the Selda branding block.
func DefaultFooter() Footer {
	return Footer{
		Tagline:     "Find your customers — automatically.",
		Description: "Give us your website, and Selda will analyze your business, find your best customers, and book meetings for you.",
		Note:        "No setup. No learning curve. Just growth.",
		Link:        "https://selda.ai",
	}
}

// Normalize replaces every nil slice with an empty one so that array fields
// are always present in serialized output.
func (r *Report) Normalize() {
	r.Company.Keywords = r.Company.Keywords.orEmpty()

	ts := &r.TargetStrategy
	ts.RecommendedChannels = ts.RecommendedChannels.orEmpty()
	ts.DecisionMakerProfiles = orEmpty(ts.DecisionMakerProfiles)
	ts.ChannelPriority = orEmpty(ts.ChannelPriority)
	for i := range ts.DecisionMakerProfiles {
		p := &ts.DecisionMakerProfiles[i]
		p.Motivations = p.Motivations.orEmpty()
		p.PainPoints = p.PainPoints.orEmpty()
		p.RecommendedChannels = p.RecommendedChannels.orEmpty()
		p.MessagingExamples = p.MessagingExamples.orEmpty()
	}

	r.ActionGuidelines.RecommendedNextSteps = r.ActionGuidelines.RecommendedNextSteps.orEmpty()

	r.IdealCustomerProfiles.Segments = orEmpty(r.IdealCustomerProfiles.Segments)
	for i := range r.IdealCustomerProfiles.Segments {
		s := &r.IdealCustomerProfiles.Segments[i]
		s.BuyingMotivations = s.BuyingMotivations.orEmpty()
		s.TypicalPains = s.TypicalPains.orEmpty()
		s.EvaluationCriteria = s.EvaluationCriteria.orEmpty()
	}

	bt := &r.BuyingTriggers
	bt.PrimarySignals = bt.PrimarySignals.orEmpty()
	bt.MonitoringChannels = bt.MonitoringChannels.orEmpty()
	bt.TriggerActions = orEmpty(bt.TriggerActions)

	r.ProductBreakdown.KeyOfferings = orEmpty(r.ProductBreakdown.KeyOfferings)
	r.ProductBreakdown.PricingSignals = r.ProductBreakdown.PricingSignals.orEmpty()

	cl := &r.CompetitiveLandscape
	cl.NotableCompetitors = cl.NotableCompetitors.orEmpty()
	cl.Differentiators = cl.Differentiators.orEmpty()
	cl.Counterplays = orEmpty(cl.Counterplays)

	r.ContentAndProof.SocialProof = r.ContentAndProof.SocialProof.orEmpty()
	r.ContentAndProof.CallToActionAssets = orEmpty(r.ContentAndProof.CallToActionAssets)

	r.Partnerships.IntegrationPartners = r.Partnerships.IntegrationPartners.orEmpty()

	sp := &r.SalesPlayRecommendations
	sp.PrioritySequences = orEmpty(sp.PrioritySequences)
	sp.ObjectionHandling = orEmpty(sp.ObjectionHandling)
	for i := range sp.PrioritySequences {
		sp.PrioritySequences[i].Steps = sp.PrioritySequences[i].Steps.orEmpty()
	}

	if cs := r.CampaignStarter; cs != nil {
		cs.SequenceOutline = orEmpty(cs.SequenceOutline)
		cs.SuccessMetrics = cs.SuccessMetrics.orEmpty()
	}

	if vi := r.VerifierInsights; vi != nil {
		vi.Testimonials = vi.Testimonials.orEmpty()
		vi.IndustriesServed = vi.IndustriesServed.orEmpty()
		vi.Geographies = vi.Geographies.orEmpty()
		vi.Languages = vi.Languages.orEmpty()
		vi.AwardsOrCertifications = vi.AwardsOrCertifications.orEmpty()
	}

	if r.Metadata == nil {
		r.Metadata = Metadata{}
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// StringList is a list of strings that also accepts a single string or
// null when decoded from model output.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

func (l StringList) orEmpty() StringList {
	if l == nil {
		return StringList{}
	}
	return l
}
