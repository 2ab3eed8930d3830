package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/robbyt/go-scriptbridge/platform/scripterr"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

// Report is the outcome of one script as printed by run.
type Report struct {
	Source     string
	ExecutorID string
	State      string
	Duration   time.Duration

	// Result is set on success, Error on a script failure. Failure holds bridge-level
	// problems: the script could not be loaded or the runtime was unavailable.
	Result  value.Value
	Error   *scripterr.Record
	Failure string
}

// Succeeded reports whether the script produced a value.
func (r Report) Succeeded() bool {
	return r.Failure == "" && r.Error == nil && r.Result != nil
}

type jsonReport struct {
	Source     string            `json:"source"`
	ExecutorID string            `json:"executorId,omitempty"`
	State      string            `json:"state,omitempty"`
	Duration   string            `json:"duration,omitempty"`
	Result     json.RawMessage   `json:"result,omitempty"`
	Error      *scripterr.Record `json:"error,omitempty"`
	Failure    string            `json:"failure,omitempty"`
}

type yamlReport struct {
	Source     string            `yaml:"source"`
	ExecutorID string            `yaml:"executorId,omitempty"`
	State      string            `yaml:"state,omitempty"`
	Duration   string            `yaml:"duration,omitempty"`
	Result     *yaml.Node        `yaml:"result,omitempty"`
	Error      *scripterr.Record `yaml:"error,omitempty"`
	Failure    string            `yaml:"failure,omitempty"`
}

func render(w io.Writer, format string, reports []Report) error {
	switch format {
	case "json":
		return renderJSON(w, reports)
	case "yaml":
		return renderYAML(w, reports)
	case "text":
		renderText(w, reports)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.Round(time.Microsecond).String()
}

func renderJSON(w io.Writer, reports []Report) error {
	out := make([]jsonReport, len(reports))
	for i, r := range reports {
		out[i] = jsonReport{
			Source:     r.Source,
			ExecutorID: r.ExecutorID,
			State:      r.State,
			Duration:   formatDuration(r.Duration),
			Error:      r.Error,
			Failure:    r.Failure,
		}
		if r.Result != nil {
			raw, err := value.ToJSON(r.Result)
			if err != nil {
				return fmt.Errorf("failed to encode result of %s: %w", r.Source, err)
			}
			out[i].Result = raw
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func renderYAML(w io.Writer, reports []Report) error {
	out := make([]yamlReport, len(reports))
	for i, r := range reports {
		out[i] = yamlReport{
			Source:     r.Source,
			ExecutorID: r.ExecutorID,
			State:      r.State,
			Duration:   formatDuration(r.Duration),
			Error:      r.Error,
			Failure:    r.Failure,
		}
		if r.Result != nil {
			out[i].Result = value.YAMLNode(r.Result)
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func renderText(w io.Writer, reports []Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "State", "Result", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})
	for _, r := range reports {
		var outcome string
		switch {
		case r.Failure != "":
			outcome = "failure: " + r.Failure
		case r.Error != nil:
			outcome = r.Error.Error()
		case r.Result != nil:
			outcome = r.Result.String()
		}
		t.AppendRow(table.Row{r.Source, r.State, outcome, formatDuration(r.Duration)})
	}
	t.Render()
}
