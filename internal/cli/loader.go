package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/query"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/script"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeNotFound    = "E002" // document path not found
	ErrCodeReadFailed  = "E003" // file read error
	ErrCodeUnsupported = "E004" // unsupported document extension
	ErrCodeParseFailed = "E005" // CUE/YAML parse or decode failure
	ErrCodeBadDocument = "E006" // structurally invalid document content
	ErrCodeWriteFailed = "E007" // output file write error

	ErrCodeInvalidFilter = "E101" // filter failed validation
)

// LoadError represents an error that occurred during document loading.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Document is the on-disk form of a query request: a filter plus
// optional projection, limit, and sort. The same schema is accepted in
// CUE and YAML; field names match the wire names used everywhere else.
type Document struct {
	Filter FilterDoc `json:"filter" yaml:"filter"`
	Fields []string  `json:"fields,omitempty" yaml:"fields,omitempty"`
	Limit  *int      `json:"limit,omitempty" yaml:"limit,omitempty"`
	Sort   *SortDoc  `json:"sort,omitempty" yaml:"sort,omitempty"`
}

// FilterDoc mirrors filter.FilterSpec with serialization-friendly
// types. Dates are RFC 3339 strings; Spec converts and reports bad
// timestamps instead of silently dropping them.
type FilterDoc struct {
	Completed *bool     `json:"completed,omitempty" yaml:"completed,omitempty"`
	Flagged   *bool     `json:"flagged,omitempty" yaml:"flagged,omitempty"`
	Name      *MatchDoc `json:"name,omitempty" yaml:"name,omitempty"`
	Note      *MatchDoc `json:"note,omitempty" yaml:"note,omitempty"`
	Project   *MatchDoc `json:"project,omitempty" yaml:"project,omitempty"`
	Tags      *TagsDoc  `json:"tags,omitempty" yaml:"tags,omitempty"`
	DueDate   *RangeDoc `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	DeferDate *RangeDoc `json:"deferDate,omitempty" yaml:"deferDate,omitempty"`
	Search    string    `json:"search,omitempty" yaml:"search,omitempty"`
}

// MatchDoc is a string-field match clause. Mode defaults to "contains".
type MatchDoc struct {
	Value string `json:"value" yaml:"value"`
	Mode  string `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// TagsDoc is a tag-set clause. Op defaults to "any".
type TagsDoc struct {
	Op   string   `json:"op,omitempty" yaml:"op,omitempty"`
	Tags []string `json:"tags" yaml:"tags"`
}

// RangeDoc bounds a date field with RFC 3339 timestamps.
type RangeDoc struct {
	After  string `json:"after,omitempty" yaml:"after,omitempty"`
	Before string `json:"before,omitempty" yaml:"before,omitempty"`
}

// SortDoc names the result ordering.
type SortDoc struct {
	Key        string `json:"key" yaml:"key"`
	Descending bool   `json:"descending,omitempty" yaml:"descending,omitempty"`
}

// LoadDocument reads and decodes a filter document. The format is
// chosen by extension: .cue, .yaml/.yml, or .json.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "document not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: err.Error()}
	}

	var doc Document
	switch ext := filepath.Ext(path); ext {
	case ".cue":
		if err := decodeCUE(path, data, &doc); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: fmt.Sprintf("parsing YAML: %v", err)}
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: fmt.Sprintf("parsing JSON: %v", err)}
		}
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Path: path,
			Message: fmt.Sprintf("unsupported extension %q: want .cue, .yaml, .yml, or .json", ext)}
	}

	return &doc, nil
}

func decodeCUE(path string, data []byte, doc *Document) error {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return &LoadError{Code: ErrCodeParseFailed, Path: path, Message: fmt.Sprintf("compiling CUE: %v", err)}
	}
	if err := value.Decode(doc); err != nil {
		return &LoadError{Code: ErrCodeParseFailed, Path: path, Message: fmt.Sprintf("decoding CUE value: %v", err)}
	}
	return nil
}

// Spec converts the document's filter clause into a FilterSpec,
// applying the mode/op defaults and parsing timestamps.
func (d *Document) Spec() (filter.FilterSpec, error) {
	var spec filter.FilterSpec
	f := d.Filter

	spec.Completed = f.Completed
	spec.Flagged = f.Flagged
	spec.Search = f.Search

	spec.Name = toMatch(f.Name)
	spec.Note = toMatch(f.Note)
	spec.Project = toMatch(f.Project)

	if f.Tags != nil {
		op := filter.SetOp(f.Tags.Op)
		if f.Tags.Op == "" {
			op = filter.SetAny
		}
		spec.Tags = &filter.TagFilter{Op: op, Tags: f.Tags.Tags}
	}

	var err error
	if spec.DueDate, err = toRange("dueDate", f.DueDate); err != nil {
		return filter.FilterSpec{}, err
	}
	if spec.DeferDate, err = toRange("deferDate", f.DeferDate); err != nil {
		return filter.FilterSpec{}, err
	}

	return spec, nil
}

// Options converts the document's projection, limit, and sort clauses
// into request options. Unknown fields and sort keys surface later,
// during assembly, with their own messages.
func (d *Document) Options() query.Options {
	opts := query.Options{Limit: d.Limit}
	for _, name := range d.Fields {
		opts.Fields = append(opts.Fields, script.Field(name))
	}
	if d.Sort != nil {
		opts.Sort = &script.SortSpec{
			Key:        script.SortKey(d.Sort.Key),
			Descending: d.Sort.Descending,
		}
	}
	return opts
}

func toMatch(m *MatchDoc) *filter.StringMatch {
	if m == nil {
		return nil
	}
	mode := filter.MatchMode(m.Mode)
	if m.Mode == "" {
		mode = filter.MatchContains
	}
	return &filter.StringMatch{Value: m.Value, Mode: mode}
}

func toRange(field string, r *RangeDoc) (*filter.DateRange, error) {
	if r == nil {
		return nil, nil
	}
	var out filter.DateRange
	if r.After != "" {
		t, err := time.Parse(time.RFC3339, r.After)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadDocument,
				Message: fmt.Sprintf("%s.after: invalid RFC 3339 timestamp %q", field, r.After)}
		}
		out.After = &t
	}
	if r.Before != "" {
		t, err := time.Parse(time.RFC3339, r.Before)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadDocument,
				Message: fmt.Sprintf("%s.before: invalid RFC 3339 timestamp %q", field, r.Before)}
		}
		out.Before = &t
	}
	return &out, nil
}
