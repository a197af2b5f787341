package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/selda-cli/internal/model"
)

// SnapshotNotes lists deterministic observations about what the page did
// and did not expose. The notes travel in report metadata so readers can
// judge how much of the report rests on page evidence.
func SnapshotNotes(snap *model.Snapshot) []string {
	notes := []string{}
	if snap == nil {
		return notes
	}

	if snap.Title == "" {
		notes = append(notes, "Page has no title.")
	}
	if snap.Description == "" {
		notes = append(notes, "Page has no meta description.")
	}
	if snap.Language != nil {
		notes = append(notes, fmt.Sprintf("Declared page language: %s.", *snap.Language))
	} else {
		notes = append(notes, "Page does not declare a language.")
	}

	notes = append(notes, countNote(len(snap.Headings), "heading", "headings"))

	if len(snap.SocialLinks) == 0 {
		notes = append(notes, "No social profiles linked.")
	} else {
		platforms := make([]string, 0, len(snap.SocialLinks))
		for _, l := range snap.SocialLinks {
			platforms = append(platforms, l.Platform)
		}
		notes = append(notes, "Social profiles linked: "+strings.Join(platforms, ", ")+".")
	}

	if len(snap.ContactPages) == 0 {
		notes = append(notes, "No contact or demo pages detected.")
	} else {
		notes = append(notes, countNote(len(snap.ContactPages), "contact page", "contact pages"))
	}

	if len(snap.Testimonials) > 0 {
		notes = append(notes, countNote(len(snap.Testimonials), "testimonial", "testimonials"))
	}
	if len(snap.IndustriesServed) > 0 {
		notes = append(notes, "Industries listed: "+strings.Join(snap.IndustriesServed, ", ")+".")
	}
	if len(snap.Geographies) > 0 {
		notes = append(notes, "Geographies mentioned: "+strings.Join(snap.Geographies, ", ")+".")
	}
	if strings.HasSuffix(snap.TextExcerpt, "…") {
		notes = append(notes, "Page text was truncated for analysis.")
	}
	return notes
}

func countNote(n int, singular, plural string) string {
	if n == 1 {
		return "Found 1 " + singular + "."
	}
	return fmt.Sprintf("Found %d %s.", n, plural)
}
