// Package tools exposes the violation query operations as LLM-invokable
// tools: each one carries a natural-language description, a JSON-schema
// parameter spec and an execute func. The chat layer that orchestrates an
// actual model lives outside this service; it only consumes this registry.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/muraqib/backend/models"
	"github.com/muraqib/backend/services"
	"github.com/muraqib/backend/stats"
	"github.com/muraqib/backend/store"
)

// Schema is a JSON-schema fragment describing tool parameters.
type Schema map[string]interface{}

// Tool is one LLM-invokable operation.
type Tool struct {
	Name        string
	Description string
	Parameters  Schema
	Execute     func(ctx context.Context, args json.RawMessage) (interface{}, error)
}

// Registry holds the tool set for the chat layer.
type Registry struct {
	tools []Tool
}

// Tools returns every registered tool.
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Invoke decodes args against the named tool and runs it.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t.Execute(ctx, args)
}

func decode(args json.RawMessage, into interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, into)
}

// optionalWindow builds a window when both bounds are present.
func optionalWindow(from, to string) (*stats.Window, error) {
	if from == "" || to == "" {
		return nil, nil
	}
	w, err := stats.NewWindow(from, to)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// NewRegistry builds the tool set over the stats service and store. Dates the
// model passes are server-normalized, never browser dates, so no tool applies
// the client-date correction.
func NewRegistry(svc *services.StatsService, violations *store.ViolationStore) *Registry {
	return &Registry{tools: []Tool{
		{
			Name: "getViolationsSummary",
			Description: "Retrieve the total violations, grouped statistics and the highest-violation day. " +
				"For the current year, month, week or day pass only 'period'. For a specific date pass year, month and/or day.",
			Parameters: Schema{
				"type": "object",
				"properties": Schema{
					"year":   Schema{"type": "integer"},
					"month":  Schema{"type": "integer"},
					"day":    Schema{"type": "integer"},
					"period": Schema{"type": "string", "enum": []string{"daily", "weekly", "monthly", "yearly"}},
				},
			},
			Execute: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
				var in struct {
					Year   *int   `json:"year"`
					Month  *int   `json:"month"`
					Day    *int   `json:"day"`
					Period string `json:"period"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				q := services.SummaryQuery{Year: in.Year, Month: in.Month, Day: in.Day}
				if in.Period != "" {
					p, err := stats.ParsePeriod(in.Period)
					if err != nil {
						return nil, err
					}
					q.Period = &p
				}
				return svc.GetSummary(ctx, q)
			},
		},
		{
			Name: "getViolationsInRange",
			Description: "Get violations recorded between two YYYY-MM-DD dates, inclusive. " +
				"Set countOnly for just the total, or summary for grouped statistics.",
			Parameters: Schema{
				"type":     "object",
				"required": []string{"from", "to"},
				"properties": Schema{
					"from":      Schema{"type": "string"},
					"to":        Schema{"type": "string"},
					"countOnly": Schema{"type": "boolean"},
					"summary":   Schema{"type": "boolean"},
				},
			},
			Execute: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
				var in struct {
					From      string `json:"from"`
					To        string `json:"to"`
					CountOnly bool   `json:"countOnly"`
					Summary   bool   `json:"summary"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				w, err := stats.NewWindow(in.From, in.To)
				if err != nil {
					return nil, err
				}
				return svc.GetAllInRange(ctx, w, false, services.RangeAction{
					CountOnly: in.CountOnly,
					Summary:   in.Summary,
				})
			},
		},
		{
			Name:        "getViolationsComparison",
			Description: "Compare the violation count of the current day, week, month or year against the previous one.",
			Parameters: Schema{
				"type":     "object",
				"required": []string{"period"},
				"properties": Schema{
					"period": Schema{"type": "string", "enum": []string{"daily", "weekly", "monthly", "yearly"}},
				},
			},
			Execute: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
				var in struct {
					Period string `json:"period"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				p, err := stats.ParsePeriod(in.Period)
				if err != nil {
					return nil, err
				}
				return svc.GetComparison(ctx, p)
			},
		},
		{
			Name:        "getViolationsHistogram",
			Description: "Count violations between two YYYY-MM-DD dates bucketed by hour of day, day of month, month, or year.",
			Parameters: Schema{
				"type":     "object",
				"required": []string{"from", "to", "granularity"},
				"properties": Schema{
					"from":        Schema{"type": "string"},
					"to":          Schema{"type": "string"},
					"granularity": Schema{"type": "string", "enum": []string{"hourly", "daily", "monthly", "yearly"}},
				},
			},
			Execute: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
				var in struct {
					From        string `json:"from"`
					To          string `json:"to"`
					Granularity string `json:"granularity"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				w, err := stats.NewWindow(in.From, in.To)
				if err != nil {
					return nil, err
				}
				g, err := stats.ParseGranularity(in.Granularity)
				if err != nil {
					return nil, err
				}
				return svc.GetHistogram(ctx, w, g)
			},
		},
		{
			Name:        "getViolationsByStreetName",
			Description: "Retrieve all violations recorded on the specified street name. Omit from and to when no range is asked for.",
			Parameters: Schema{
				"type":     "object",
				"required": []string{"streetName"},
				"properties": Schema{
					"streetName": Schema{"type": "string"},
					"from":       Schema{"type": "string"},
					"to":         Schema{"type": "string"},
				},
			},
			Execute: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
				var in struct {
					StreetName string `json:"streetName"`
					From       string `json:"from"`
					To         string `json:"to"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				w, err := optionalWindow(in.From, in.To)
				if err != nil {
					return nil, err
				}
				return violations.FindByStreetName(ctx, in.StreetName, w)
			},
		},
		{
			Name: "getViolationsByViolationType",
			Description: "Retrieve all violations of one type. Only overtaking-from-left and overtaking-from-right exist; " +
				"for anything else tell the user only those two types are recorded.",
			Parameters: Schema{
				"type":     "object",
				"required": []string{"violationType"},
				"properties": Schema{
					"violationType": Schema{"type": "string", "enum": []string{string(models.OvertakingFromLeft), string(models.OvertakingFromRight)}},
					"from":          Schema{"type": "string"},
					"to":            Schema{"type": "string"},
				},
			},
			Execute: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
				var in struct {
					ViolationType string `json:"violationType"`
					From          string `json:"from"`
					To            string `json:"to"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				t := models.ViolationType(in.ViolationType)
				if !t.Valid() {
					return nil, stats.ValidationError{Field: "violationType", Message: "unsupported violation type"}
				}
				w, err := optionalWindow(in.From, in.To)
				if err != nil {
					return nil, err
				}
				return violations.FindByViolationType(ctx, t, w)
			},
		},
		{
			Name:        "getViolationsByLocation",
			Description: "Retrieve all violations recorded at the specified latitude and longitude.",
			Parameters: Schema{
				"type":     "object",
				"required": []string{"lat", "long"},
				"properties": Schema{
					"lat":  Schema{"type": "number"},
					"long": Schema{"type": "number"},
				},
			},
			Execute: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
				var in struct {
					Lat  float64 `json:"lat"`
					Long float64 `json:"long"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				return violations.FindByLocation(ctx, in.Lat, in.Long)
			},
		},
		{
			Name:        "getAllViolations",
			Description: "Retrieve every recorded violation.",
			Parameters:  Schema{"type": "object", "properties": Schema{}},
			Execute: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
				return violations.FindAll(ctx)
			},
		},
	}}
}
