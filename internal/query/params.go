package query

import (
	"time"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
)

// specParams converts a FilterSpec into the canonical parameter map
// used for cache keying. Only populated fields appear, so a spec built
// field-by-field and a spec built literally key identically.
func specParams(spec filter.FilterSpec) map[string]any {
	params := make(map[string]any)

	if spec.Completed != nil {
		params["completed"] = *spec.Completed
	}
	if spec.Flagged != nil {
		params["flagged"] = *spec.Flagged
	}
	if spec.Name != nil {
		params["name"] = matchParams(*spec.Name)
	}
	if spec.Note != nil {
		params["note"] = matchParams(*spec.Note)
	}
	if spec.Project != nil {
		params["project"] = matchParams(*spec.Project)
	}
	if spec.Tags != nil {
		params["tags"] = map[string]any{
			"op":   string(spec.Tags.Op),
			"tags": spec.Tags.Tags,
		}
	}
	if spec.DueDate != nil {
		params["dueDate"] = rangeParams(*spec.DueDate)
	}
	if spec.DeferDate != nil {
		params["deferDate"] = rangeParams(*spec.DeferDate)
	}
	if spec.Search != "" {
		params["search"] = spec.Search
	}

	return params
}

// queryParams extends specParams with the projection, limit, and sort
// knobs that shape a query result.
func queryParams(spec filter.FilterSpec, opts Options) map[string]any {
	params := specParams(spec)

	if len(opts.Fields) > 0 {
		fields := make([]string, len(opts.Fields))
		for i, f := range opts.Fields {
			fields[i] = string(f)
		}
		params["fields"] = fields
	}
	if opts.Limit != nil {
		params["limit"] = *opts.Limit
	}
	if opts.Sort != nil {
		params["sort"] = map[string]any{
			"key":        string(opts.Sort.Key),
			"descending": opts.Sort.Descending,
		}
	}

	return params
}

func matchParams(m filter.StringMatch) map[string]any {
	return map[string]any{
		"value": m.Value,
		"mode":  string(m.Mode),
	}
}

func rangeParams(r filter.DateRange) map[string]any {
	bounds := make(map[string]any)
	if r.After != nil {
		bounds["after"] = r.After.UTC().Format(time.RFC3339Nano)
	}
	if r.Before != nil {
		bounds["before"] = r.Before.UTC().Format(time.RFC3339Nano)
	}
	return bounds
}
