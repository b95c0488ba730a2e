package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Store errors. Both degrade to an empty list in List.Load.
var (
	ErrNoStore         = errors.New("no task store")
	ErrStoreUnreadable = errors.New("task store is unreadable")
)

// Store persists the ordered record sequence.
type Store interface {
	Load() ([]Record, error)
	Save([]Record) error
}

//go:embed store.schema.json
var storeSchemaJSON string

const storeSchemaURL = "https://taskman.invalid/store.schema.json"

var (
	storeSchemaOnce sync.Once
	storeSchema     *jsonschema.Schema
	storeSchemaErr  error
)

func compiledStoreSchema() (*jsonschema.Schema, error) {
	storeSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(storeSchemaURL, strings.NewReader(storeSchemaJSON)); err != nil {
			storeSchemaErr = fmt.Errorf("add store schema: %w", err)
			return
		}
		storeSchema, storeSchemaErr = compiler.Compile(storeSchemaURL)
	})
	return storeSchema, storeSchemaErr
}

// FileStore keeps records in a JSON file.
type FileStore struct {
	Path string

	// damaged is set when Load could not read an existing file. The next
	// Save copies that file to BackupPath before replacing it.
	damaged bool
}

// BackupPath is where an unreadable store is kept when it is first
// overwritten.
func (s *FileStore) BackupPath() string {
	return s.Path + ".bak"
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads and decodes the file. A missing file yields ErrNoStore; a file
// that is empty, not JSON, or not shaped like a record list yields
// ErrStoreUnreadable.
func (s *FileStore) Load() ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.damaged = false
			return nil, fmt.Errorf("%w: %w", ErrNoStore, err)
		}
		s.damaged = true
		return nil, fmt.Errorf("%w: read %s: %w", ErrStoreUnreadable, s.Path, err)
	}
	records, err := DecodeRecords(data)
	if err != nil {
		s.damaged = true
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	s.damaged = false
	return records, nil
}

// Save writes records to a temporary file next to Path and renames it into
// place, so an interrupted write never replaces a good file. A file the last
// Load could not read is copied to BackupPath first.
func (s *FileStore) Save(records []Record) error {
	data, err := EncodeRecords(records)
	if err != nil {
		return err
	}
	if s.damaged {
		if err := s.backup(); err != nil {
			return fmt.Errorf("back up unreadable store: %w", err)
		}
		s.damaged = false
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		cleanup()
		return fmt.Errorf("replace task store: %w", err)
	}
	return nil
}

func (s *FileStore) backup() error {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.WriteFile(s.BackupPath(), data, 0644)
}

// rawRecord defers decoding of the fields that fall back per record.
type rawRecord struct {
	Title    string          `json:"title"`
	Done     bool            `json:"done"`
	Priority json.RawMessage `json:"priority"`
	Deadline json.RawMessage `json:"deadline"`
}

// UnmarshalJSON decodes a record leniently: a priority that is not an
// integral number and a deadline that is not a string decode as absent.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Title, r.Done = raw.Title, raw.Done
	r.Priority, _ = decodePriority(raw.Priority)
	r.Deadline, _ = decodeDeadline(raw.Deadline)
	return nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// decodePriority reports false when a value is present but unusable.
func decodePriority(raw json.RawMessage) (*int, bool) {
	if isNull(raw) {
		return nil, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, false
	}
	p := int(f)
	return &p, true
}

// decodeDeadline reports false when a value is present but not a string.
func decodeDeadline(raw json.RawMessage) (*string, bool) {
	if isNull(raw) {
		return nil, true
	}
	var d string
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, false
	}
	return &d, true
}

// EncodeRecords renders records as an indented JSON array with a trailing
// newline.
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeRecords parses and schema-checks a serialized record list.
func DecodeRecords(data []byte) ([]Record, error) {
	records, errs := decodeRecords(data)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnreadable, errors.Join(errs...))
	}
	return records, nil
}

func decodeRecords(data []byte) ([]Record, []error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, []error{errors.New("file is empty")}
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, []error{fmt.Errorf("parse: %w", err)}
	}
	if errs := validateDocument(doc); len(errs) > 0 {
		return nil, errs
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, []error{fmt.Errorf("decode: %w", err)}
	}
	return records, nil
}

// ValidationError is a schema violation at a location in the store document.
type ValidationError struct {
	Path string // location such as "[2].title"
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult reports how a store document would load.
type ValidationResult struct {
	Valid    bool
	Errors   []error
	Warnings []string
	Tasks    int
}

// Validate checks serialized store data without loading it. Errors make the
// document unreadable; warnings name values that load with a fallback.
func Validate(data []byte) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	records, errs := decodeRecords(data)
	if len(errs) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, errs...)
		return result
	}

	var raws []rawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("decode: %w", err))
		return result
	}

	result.Tasks = len(records)
	seen := make(map[string]bool, len(raws))
	for i, r := range raws {
		path := fmt.Sprintf("[%d]", i)
		switch {
		case r.Title == "":
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s.title: empty title will be skipped", path))
		case seen[r.Title]:
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s.title: duplicate %q will be skipped", path, r.Title))
		}
		seen[r.Title] = true

		if p, ok := decodePriority(r.Priority); !ok || (p != nil && !Priority(*p).Valid()) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s.priority: %s will load as Medium", path, bytes.TrimSpace(r.Priority)))
		}
		if d, ok := decodeDeadline(r.Deadline); !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s.deadline: %s will load as no deadline", path, bytes.TrimSpace(r.Deadline)))
		} else if d != nil {
			if _, err := ParseDate(*d); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s.deadline: %q will load as no deadline", path, *d))
			}
		}
	}
	return result
}

func validateDocument(doc interface{}) []error {
	schema, err := compiledStoreSchema()
	if err != nil {
		return []error{err}
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{err}
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errs
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
