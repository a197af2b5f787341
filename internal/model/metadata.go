package model

// Well-known metadata keys.
const (
	MetaModelVersion    = "model_version"
	MetaSourceURL       = "source_url"
	MetaScrapedAt       = "scraped_at"
	MetaGeneratedAt     = "generated_at"
	MetaSocialLinks     = "social_links"
	MetaContactPages    = "contact_pages"
	MetaSnapshotNotes   = "snapshot_notes"
	MetaRevOpsChecklist = "revops_checklist"
)

// Metadata is the open-ended key/value bag carried on a Report. Stages add
// keys through Merge; existing keys are only replaced when a stage sets the
// same key explicitly.
type Metadata map[string]any

// Merge copies every key of src into m and returns m. A nil receiver
// yields a fresh map.
func (m Metadata) Merge(src map[string]any) Metadata {
	if m == nil {
		m = make(Metadata, len(src))
	}
	for k, v := range src {
		m[k] = v
	}
	return m
}

// String returns the value under key when it is a string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}
