package export

import (
	"bytes"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskman/internal/todo"
)

func sampleTasks(t *testing.T) []todo.Task {
	t.Helper()
	d, err := todo.ParseDate("2030-01-01")
	if err != nil {
		t.Fatal(err)
	}
	done := todo.NewTask("Walk dog", todo.PriorityLow, time.Time{})
	done.MarkDone()
	return []todo.Task{
		todo.NewTask("Buy milk", todo.PriorityHigh, d),
		done,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteJSONLoadsBack(t *testing.T) {
	tasks := sampleTasks(t)
	var buf bytes.Buffer
	if err := Write(&buf, tasks, FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records, err := todo.DecodeRecords(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(records) != len(tasks) {
		t.Fatalf("records: got %d, want %d", len(records), len(tasks))
	}
	for i, r := range records {
		if got := todo.FromRecord(r); got != tasks[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got, tasks[i])
		}
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleTasks(t), FormatYAML); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got []map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("yaml: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("entries: got %d, want 2", len(got))
	}
	if got[0]["title"] != "Buy milk" || got[0]["priority"] != 1 || got[0]["deadline"] != "2030-01-01" {
		t.Errorf("first entry: got %v", got[0])
	}
	if got[1]["done"] != true || got[1]["deadline"] != nil {
		t.Errorf("second entry: got %v", got[1])
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "[]\n" {
		t.Errorf("got %q, want []", got)
	}
}
