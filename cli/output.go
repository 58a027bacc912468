package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/tidwall/pretty"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return nil
	}
	return fmt.Errorf("unsupported output format %q (expected text, json or yaml)", format)
}

// writeValue renders v in format. JavaScript undefined is printed as
// "undefined" in text output and as null otherwise.
func writeValue(w io.Writer, format string, v any) error {
	if core.IsUndefined(v) {
		if format == OutputFormatText {
			_, err := fmt.Fprintln(w, core.Undefined.String())
			return err
		}
		v = nil
	}
	switch format {
	case OutputFormatJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode result as JSON: %w", err)
		}
		data = pretty.Pretty(data)
		if isTerminal(w) {
			data = pretty.Color(data, nil)
		}
		_, err = w.Write(data)
		return err
	case OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode result as YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		switch v.(type) {
		case nil:
			_, err := fmt.Fprintln(w, "null")
			return err
		case map[string]any, []any:
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			_, err = fmt.Fprintln(w, string(data))
			return err
		}
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// isTerminal reports whether stream is an interactive terminal.
func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
