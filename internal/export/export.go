// Package export writes the task list in formats meant for other tools.
//
// JSON output uses the same record layout as the task file, so an export
// can be copied over a task file and loaded back.
package export

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskman/internal/todo"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatYAML}

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json or yaml)", s)
	}
}

// Write encodes tasks to w in order.
func Write(w io.Writer, tasks []todo.Task, format Format) error {
	records := make([]todo.Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, t.ToRecord())
	}

	switch format {
	case FormatJSON:
		data, err := todo.EncodeRecords(records)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
