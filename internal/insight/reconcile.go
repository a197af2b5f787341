package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/resilience"
	"github.com/sells-group/selda-cli/internal/textutil"
)

// Required-field policies.
const (
	// PolicyDefault leaves missing required strings empty.
	PolicyDefault = "default"
	// PolicyStrict fails reconciliation when a required string is missing.
	PolicyStrict = "strict"
)

// requiredFields are the dotted paths PolicyStrict enforces.
var requiredFields = []string{
	"company.name",
	"business_understanding.problem_they_solve",
	"business_understanding.value_proposition",
	"business_understanding.competitive_advantage",
	"business_understanding.market_position",
	"action_guidelines.messaging_style",
	"action_guidelines.example_pitch",
}

// reconcile turns raw model text into a Report. It accepts a bare object or
// the first balanced object embedded in prose. Each top-level section is
// decoded on its own: a value of the wrong type drops only that field and is
// logged, unless policy is strict. Keys outside the schema are kept in
// Report.Extra. Provenance metadata is merged by the caller.
func reconcile(text, policy string) (*model.Report, error) {
	raw, ok := textutil.ParseJSONObject(text)
	if !ok {
		return nil, resilience.UnparsableModelOutput("model response contains no JSON object", nil)
	}

	if policy == PolicyStrict {
		if missing := missingRequired(raw); len(missing) > 0 {
			return nil, resilience.UnparsableModelOutput(
				"model response is missing required fields: "+strings.Join(missing, ", "), nil)
		}
	}

	modelMeta, _ := raw["metadata"].(map[string]any)
	if _, present := raw["metadata"]; present && modelMeta == nil {
		zap.L().Warn("insight: dropping non-object metadata from model response")
	}

	var report model.Report
	targets := sectionTargets(&report)

	var mismatched, unknown []string
	for _, key := range sortedKeys(raw) {
		if key == "metadata" {
			continue
		}
		dst, known := targets[key]
		if !known {
			if report.Extra == nil {
				report.Extra = make(map[string]any)
			}
			report.Extra[key] = raw[key]
			continue
		}
		mismatched = append(mismatched, decodeSection(key, raw[key], dst)...)
		unknown = append(unknown, unknownPaths(raw[key], reflect.TypeOf(dst).Elem(), key)...)
	}

	if len(mismatched) > 0 {
		if policy == PolicyStrict {
			return nil, resilience.UnparsableModelOutput(
				"model response has fields of the wrong type: "+strings.Join(mismatched, ", "), nil)
		}
		zap.L().Warn("insight: dropped model fields with unexpected types", zap.Strings("fields", mismatched))
	}
	if len(unknown) > 0 {
		zap.L().Warn("insight: model returned fields outside the report schema", zap.Strings("fields", unknown))
	}

	report.Normalize()
	report.Metadata = report.Metadata.Merge(modelMeta)
	return &report, nil
}

// sectionTargets maps each schema section name to the field it decodes into.
func sectionTargets(r *model.Report) map[string]any {
	return map[string]any{
		"company":                    &r.Company,
		"business_understanding":     &r.BusinessUnderstanding,
		"target_strategy":            &r.TargetStrategy,
		"action_guidelines":          &r.ActionGuidelines,
		"ideal_customer_profiles":    &r.IdealCustomerProfiles,
		"buying_triggers":            &r.BuyingTriggers,
		"product_breakdown":          &r.ProductBreakdown,
		"competitive_landscape":      &r.CompetitiveLandscape,
		"content_and_proof":          &r.ContentAndProof,
		"partnerships":               &r.Partnerships,
		"sales_play_recommendations": &r.SalesPlayRecommendations,
		"campaign_starter":           &r.CampaignStarter,
		"verifier_insights":          &r.VerifierInsights,
		"footer":                     &r.Footer,
	}
}

// decodeSection decodes value into dst as far as it can and returns the
// paths that could not be decoded. On failure an object section is decoded
// again one key at a time, so a bad field costs only itself.
func decodeSection(name string, value, dst any) []string {
	data, err := json.Marshal(value)
	if err != nil {
		return []string{name}
	}
	if err := json.Unmarshal(data, dst); err == nil {
		return nil
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return []string{name}
	}
	var failed []string
	for _, key := range sortedKeys(obj) {
		one, err := json.Marshal(map[string]any{key: obj[key]})
		if err == nil {
			err = json.Unmarshal(one, dst)
		}
		if err != nil {
			failed = append(failed, fieldPath(name, key, err))
		}
	}
	return failed
}

// fieldPath names the field err points at, falling back to section.key.
func fieldPath(section, key string, err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && strings.HasPrefix(typeErr.Field, key) {
		return section + "." + typeErr.Field
	}
	return section + "." + key
}

// unknownPaths lists object keys in value that t has no JSON field for.
func unknownPaths(value any, t reflect.Type, path string) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var out []string
	switch t.Kind() {
	case reflect.Struct:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		fields := jsonFields(t)
		for _, key := range sortedKeys(obj) {
			ft, ok := fields[key]
			if !ok {
				out = append(out, path+"."+key)
				continue
			}
			out = append(out, unknownPaths(obj[key], ft, path+"."+key)...)
		}
	case reflect.Slice:
		items, ok := value.([]any)
		if !ok {
			return nil
		}
		for i, item := range items {
			out = append(out, unknownPaths(item, t.Elem(), fmt.Sprintf("%s[%d]", path, i))...)
		}
	}
	return out
}

// jsonFields maps JSON names to field types for struct type t.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = f.Type
	}
	return fields
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// missingRequired lists required paths that are absent, null or blank.
func missingRequired(raw map[string]any) []string {
	var missing []string
	for _, path := range requiredFields {
		var cur any = raw
		for _, key := range strings.Split(path, ".") {
			obj, ok := cur.(map[string]any)
			if !ok {
				cur = nil
				break
			}
			cur = obj[key]
		}
		if s, ok := cur.(string); !ok || strings.TrimSpace(s) == "" {
			missing = append(missing, path)
		}
	}
	return missing
}

// verifierFromSnapshot derives verifier insights from what the page itself
// shows, for reports where the model omitted them.
func verifierFromSnapshot(snap *model.Snapshot) *model.VerifierInsights {
	return &model.VerifierInsights{
		Testimonials:           orEmpty(snap.Testimonials),
		IndustriesServed:       orEmpty(snap.IndustriesServed),
		Geographies:            orEmpty(snap.Geographies),
		Languages:              orEmpty(snap.LanguagesDetected),
		AwardsOrCertifications: model.StringList{},
	}
}

// provenance returns the metadata keys the requester owns.
func provenance(snap *model.Snapshot, modelVersion string) map[string]any {
	return map[string]any{
		model.MetaModelVersion: modelVersion,
		model.MetaSourceURL:    snap.URL,
		model.MetaScrapedAt:    snap.FetchedAt.UTC().Format(time.RFC3339),
		model.MetaSocialLinks:  orEmpty(snap.SocialLinks),
		model.MetaContactPages: orEmpty(snap.ContactPages),
	}
}
