package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stratoshell/stratoshell/pkg/display"
	"github.com/stratoshell/stratoshell/pkg/hwc"
	"github.com/stratoshell/stratoshell/pkg/table"
	"sigs.k8s.io/yaml"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func outputFormat() (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(viper.GetString(keyOutput))); f {
	case "", formatTable:
		return formatTable, nil
	case formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q, use table, json or yaml", f)
	}
}

// render writes v in the configured format. fill populates the table when
// the format is table.
func render(cmd *cobra.Command, v interface{}, headers []string, fill func(*table.ResourceTable)) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch format {
	case formatJSON:
		return writeJSON(out, v)
	case formatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = out.Write(b)
		return err
	default:
		t := table.NewResourceTable(out, headers...)
		fill(t)
		if t.Len() == 0 {
			fmt.Fprintln(out, "No resources found.")
			return nil
		}
		t.Render()
		return nil
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderRaw prints a raw-mode response and fails on a non-2xx status so the
// body is visible alongside the error.
func renderRaw(cmd *cobra.Command, resp *hwc.RawResponse) error {
	out := cmd.OutOrStdout()
	if format, _ := outputFormat(); format == formatTable {
		fmt.Fprintf(out, "Status: %s\n", resp.Status)
	}
	if resp.Body != "" {
		fmt.Fprintln(out, resp.Body)
	}
	if !resp.Success() {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}

// withSpinner runs fn while a spinner with message shows on stderr.
func withSpinner(cmd *cobra.Command, message string, fn func() error) error {
	sp := display.NewSpinner(cmd.ErrOrStderr(), message)
	defer sp.Stop()
	return fn()
}
