package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/render"
	"github.com/sells-group/selda-cli/internal/resilience"
)

var (
	analyzeFormat string
	analyzeSave   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a single business website",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(analyzeFormat)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		err = runAnalyze(cmd.Context(), env.Pipeline, args[0], format, analyzeSave, cfg.Report.Footer, cmd.OutOrStdout())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ Failed to analyze %s: %v\n", args[0], err)
		}
		return err
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "json", "output format: json | yaml | markdown | pdf")
	analyzeCmd.Flags().StringVarP(&analyzeSave, "save", "s", "", "save output to a file on disk")
	rootCmd.AddCommand(analyzeCmd)
}

// runAnalyze runs one analysis, optionally saves the rendered payload and
// prints it with the footer banner. PDF output is only written to --save.
func runAnalyze(ctx context.Context, a analyzer, rawURL string, format render.Format, save string, footer model.Footer, out io.Writer) error {
	if format == render.FormatPDF && save == "" {
		return resilience.InvalidInput("pdf output requires --save", nil)
	}

	report, err := a.Run(ctx, rawURL)
	if err != nil {
		return err
	}

	payload, err := render.Render(report, format)
	if err != nil {
		return err
	}

	if save != "" {
		data := payload
		if format != render.FormatPDF && !strings.HasSuffix(string(data), "\n") {
			data = append(data, '\n')
		}
		if err := os.WriteFile(save, data, 0o644); err != nil {
			return eris.Wrapf(err, "analyze: save %s", save)
		}
		fmt.Fprintf(out, "✓ Analysis saved to %s\n", save)
	}

	printAnalysis(out, format, payload, footer)
	return nil
}

// printAnalysis writes the header, the payload and the footer banner.
func printAnalysis(out io.Writer, format render.Format, payload []byte, footer model.Footer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Selda Analysis")
	fmt.Fprintf(out, "Format: %s\n\n", strings.ToUpper(string(format)))
	if format == render.FormatPDF {
		fmt.Fprintf(out, "(%d-byte PDF document)\n", len(payload))
	} else {
		fmt.Fprintln(out, strings.TrimRight(string(payload), "\n"))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "---")
	fmt.Fprint(out, footerBanner(footer))
}

// footerBanner renders the footer block for terminal output.
func footerBanner(f model.Footer) string {
	var b strings.Builder
	b.WriteString("\n")
	if f.Tagline != "" {
		b.WriteString("🌍  " + f.Tagline + "\n")
	}
	if f.Description != "" {
		b.WriteString(f.Description + "\n")
	}
	if f.Note != "" {
		b.WriteString("\n" + f.Note + "\n")
	}
	if f.Link != "" {
		b.WriteString("→  " + f.Link + "\n")
	}
	return b.String()
}
