// Package output renders key listings and cleanup reports.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/keyrotator/cli/internal/keys"
)

const (
	// FormatTable is an aligned, human-readable table.
	FormatTable = "table"
	// FormatJSON is indented JSON.
	FormatJSON = "json"
	// FormatYAML is YAML.
	FormatYAML = "yaml"
)

// ValidateFormat rejects unknown formats.
func ValidateFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, FormatTable, FormatJSON, FormatYAML)
	}
}

// WriteKeys renders keys in the given format. Private key material is never
// written.
func WriteKeys(w io.Writer, list []keys.Key, format string) error {
	redacted := make([]keys.Key, len(list))
	for i, k := range list {
		k.PrivateKeyData = ""
		redacted[i] = k
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, redacted)
	case FormatYAML:
		return writeYAML(w, redacted)
	case FormatTable, "":
		return writeKeyTable(w, redacted)
	default:
		return ValidateFormat(format)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func writeKeyTable(w io.Writer, list []keys.Key) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No keys found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY ID\tCREATED\tEXPIRES\tALGORITHM\tSTATUS")
	fmt.Fprintln(tw, "------\t-------\t-------\t---------\t------")
	for _, k := range list {
		expires := FormatTimestamp(k.ValidBeforeTime)
		if k.NeverExpires() {
			expires = "never"
		}
		status := "enabled"
		if k.Disabled {
			status = "disabled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			k.ID(), FormatTimestamp(k.ValidAfterTime), expires, dash(k.KeyAlgorithm), status)
	}
	return tw.Flush()
}

// FormatTimestamp formats an API timestamp for display.
func FormatTimestamp(ts string) string {
	if ts == "" {
		return "-"
	}
	t, err := keys.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05 MST")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ReportOutput is the serialized form of a cleanup report.
type ReportOutput struct {
	Cutoff  time.Time       `json:"cutoff" yaml:"cutoff"`
	DryRun  bool            `json:"dryRun" yaml:"dryRun"`
	Listed  int             `json:"listed" yaml:"listed"`
	Expired []string        `json:"expired" yaml:"expired"`
	Deleted []string        `json:"deleted" yaml:"deleted"`
	Skipped []string        `json:"skipped" yaml:"skipped"`
	Failed  []FailureOutput `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// FailureOutput is one failed deletion.
type FailureOutput struct {
	Key   string `json:"key" yaml:"key"`
	Error string `json:"error" yaml:"error"`
}

func toReportOutput(r *keys.Report) ReportOutput {
	out := ReportOutput{
		Cutoff:  r.Cutoff,
		DryRun:  r.DryRun,
		Listed:  r.Listed,
		Expired: ids(r.Expired),
		Deleted: ids(r.Deleted),
		Skipped: ids(r.Skipped),
	}
	for _, f := range r.Failed {
		out.Failed = append(out.Failed, FailureOutput{Key: f.Key.ID(), Error: f.Err.Error()})
	}
	return out
}

func ids(list []keys.Key) []string {
	out := make([]string, 0, len(list))
	for _, k := range list {
		out = append(out, k.ID())
	}
	return out
}

// WriteReport renders a cleanup report.
func WriteReport(w io.Writer, r *keys.Report, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, toReportOutput(r))
	case FormatYAML:
		return writeYAML(w, toReportOutput(r))
	case FormatTable, "":
		return writeReportText(w, r)
	default:
		return ValidateFormat(format)
	}
}

func writeReportText(w io.Writer, r *keys.Report) error {
	verb := "Deleted"
	keysToShow := r.Deleted
	if r.DryRun {
		verb = "Would delete"
		keysToShow = r.Expired
	}

	fmt.Fprintf(w, "Cutoff:   %s\n", r.Cutoff.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Listed:   %d\n", r.Listed)
	fmt.Fprintf(w, "%s: %d\n", verb, len(keysToShow))
	for _, k := range keysToShow {
		fmt.Fprintf(w, "  %s  (created %s)\n", k.ID(), FormatTimestamp(k.ValidAfterTime))
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped:  %d (unreadable creation time)\n", len(r.Skipped))
		for _, k := range r.Skipped {
			fmt.Fprintf(w, "  %s  (created %q)\n", k.ID(), k.ValidAfterTime)
		}
	}
	if len(r.Failed) > 0 {
		fmt.Fprintf(w, "Failed:   %d\n", len(r.Failed))
		for _, f := range r.Failed {
			fmt.Fprintf(w, "  %s: %v\n", f.Key.ID(), f.Err)
		}
	}
	return nil
}
