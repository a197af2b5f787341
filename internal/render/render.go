// Package render serializes a Report for files, terminals and HTTP clients.
package render

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/resilience"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatPDF}
}

// ParseFormat maps a user-supplied name to a Format. Matching is
// case-insensitive and accepts "yml" and "md".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", resilience.InvalidInput("unsupported format "+name+" (want json, yaml, markdown or pdf)", nil)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	case FormatPDF:
		return ".pdf"
	}
	return ".json"
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/json"
}

// Render encodes report in the given format.
func Render(report *model.Report, format Format) ([]byte, error) {
	if report == nil {
		return nil, resilience.InvalidInput("report is required", nil)
	}
	switch format {
	case FormatJSON:
		return JSON(report)
	case FormatYAML:
		out, err := yaml.Marshal(report)
		return out, eris.Wrap(err, "render: marshal yaml")
	case FormatMarkdown:
		return []byte(Markdown(report)), nil
	case FormatPDF:
		return PDF(report)
	}
	return nil, resilience.InvalidInput("unsupported format "+string(format), nil)
}

// JSON encodes report with two-space indentation and a trailing newline.
func JSON(report *model.Report) ([]byte, error) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "render: marshal json")
	}
	return append(out, '\n'), nil
}
