// Package cli provides output and prompt helpers for the suisen command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/suisen/internal/models"
	"github.com/hyperjump/suisen/pkg/utils"
)

// OutputFormat is the format for recommendation output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WriteRecommendations writes response to w in the given format. overviewMax limits
// the overview length in text output; 0 prints it in full.
func WriteRecommendations(w io.Writer, response *models.RecommendResponse, format OutputFormat, overviewMax int) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		return writeCompact(w, response)
	default:
		return writeText(w, response, overviewMax)
	}
}

func writeText(w io.Writer, response *models.RecommendResponse, overviewMax int) error {
	if _, err := fmt.Fprintln(w, "\nRecommended Movies:"); err != nil {
		return err
	}
	if len(response.Results) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations found.")
		return err
	}
	for _, r := range response.Results {
		_, err := fmt.Fprintf(w, "\n%d. %s\n   Similarity: %.4f\n   Overview: %s\n",
			r.Rank, r.Title, r.Score, utils.Truncate(r.Overview, overviewMax))
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCompact(w io.Writer, response *models.RecommendResponse) error {
	if len(response.Results) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations found.")
		return err
	}
	for _, r := range response.Results {
		if _, err := fmt.Fprintf(w, "%d\t%.4f\t%s\n", r.Rank, r.Score, r.Title); err != nil {
			return err
		}
	}
	return nil
}

// WriteHistory writes history entries as a table, or JSON when format is OutputJSON.
func WriteHistory(w io.Writer, entries []*models.HistoryEntry, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No queries recorded.")
		return err
	}
	for _, e := range entries {
		top := e.TopTitle
		if top == "" {
			top = "-"
		}
		_, err := fmt.Fprintf(w, "%s  %-40s  results=%d  top=%s (%.4f)\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			utils.Truncate(e.Query, 40), e.Results, top, e.TopScore)
		if err != nil {
			return err
		}
	}
	return nil
}
