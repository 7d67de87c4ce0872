// Package graphql exposes saved analyses and on-demand simulations over a
// graphql-go schema.
package graphql

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/nodelyzer/pkg/analysis"
	"github.com/dd0wney/nodelyzer/pkg/parser"
	"github.com/dd0wney/nodelyzer/pkg/store"
	"github.com/dd0wney/nodelyzer/pkg/validation"
)

// Resolver holds the collaborators behind every field
type Resolver struct {
	Store    store.Store
	Analysis *analysis.Service
	Limits   LimitConfig
}

// NewSchema builds the query and mutation types over r
func NewSchema(r *Resolver) (graphql.Schema, error) {
	if r.Limits == (LimitConfig{}) {
		r.Limits = DefaultLimits()
	}
	if err := r.Limits.Validate(); err != nil {
		return graphql.Schema{}, err
	}

	scenarioArgs := graphql.FieldConfigArgument{
		"scenario": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
		"targets":  &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"analyses": &graphql.Field{
				Type: graphql.NewList(analysisType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: -1},
				},
				Resolve: r.analyses,
			},
			"analysis": &graphql.Field{
				Type: analysisType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.analysis,
			},
			"detect": &graphql.Field{
				Type: detectionType,
				Args: graphql.FieldConfigArgument{
					"data":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"fileName": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					network, rule := parser.DetectWithRule(p.Args["data"].(string), p.Args["fileName"].(string))
					return map[string]any{"network": network.String(), "rule": rule}, nil
				},
			},
			"simulate": &graphql.Field{
				Type: resultType,
				Args: withArgs(scenarioArgs, graphql.FieldConfigArgument{
					"data":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"network":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"fileName": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				}),
				Resolve: r.simulate,
			},
			"run": &graphql.Field{
				Type:        resultType,
				Description: "Re-runs a saved analysis under a scenario without persisting",
				Args: withArgs(scenarioArgs, graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				}),
				Resolve: r.run,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createAnalysis": &graphql.Field{
				Type: analysisType,
				Args: graphql.FieldConfigArgument{
					"userId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"network":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"nodeData": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.createAnalysis,
			},
			"updateAnalysis": &graphql.Field{
				Type: analysisType,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"name":     &graphql.ArgumentConfig{Type: graphql.String},
					"nodeData": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.updateAnalysis,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func withArgs(sets ...graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	out := graphql.FieldConfigArgument{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

func (r *Resolver) analyses(p graphql.ResolveParams) (any, error) {
	records, err := r.Store.ListByUser(p.Context, p.Args["userId"].(string))
	if err != nil {
		return nil, err
	}
	limit := r.Limits.apply(p.Args["limit"].(int))
	if len(records) > limit {
		records = records[:limit]
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, recordView(rec))
	}
	return out, nil
}

func (r *Resolver) analysis(p graphql.ResolveParams) (any, error) {
	rec, err := r.Store.Get(p.Context, p.Args["id"].(string))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recordView(rec), nil
}

func (r *Resolver) simulate(p graphql.ResolveParams) (any, error) {
	result, err := r.Analysis.Run(p.Context, analysis.Request{
		Network:  p.Args["network"].(string),
		FileName: p.Args["fileName"].(string),
		Raw:      p.Args["data"].(string),
		Scenario: p.Args["scenario"].(string),
		Targets:  stringList(p.Args["targets"]),
	})
	if err != nil {
		return nil, err
	}
	return resultView(result), nil
}

func (r *Resolver) run(p graphql.ResolveParams) (any, error) {
	rec, err := r.Store.Get(p.Context, p.Args["id"].(string))
	if err != nil {
		return nil, err
	}
	result, err := r.Analysis.Rerun(p.Context, rec, p.Args["scenario"].(string), stringList(p.Args["targets"]))
	if err != nil {
		return nil, err
	}
	return resultView(result), nil
}

func (r *Resolver) createAnalysis(p graphql.ResolveParams) (any, error) {
	req := validation.RecordRequest{
		UserID:   p.Args["userId"].(string),
		Name:     p.Args["name"].(string),
		Network:  p.Args["network"].(string),
		NodeData: p.Args["nodeData"].(string),
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	rec, err := r.Analysis.NewRecord(p.Context, req)
	if err != nil {
		return nil, err
	}
	if _, err := r.Store.Create(p.Context, rec); err != nil {
		return nil, err
	}
	return recordView(rec), nil
}

func (r *Resolver) updateAnalysis(p graphql.ResolveParams) (any, error) {
	patch := validation.RecordPatch{}
	if v, ok := p.Args["name"].(string); ok {
		patch.Name = &v
	}
	if v, ok := p.Args["nodeData"].(string); ok {
		patch.NodeData = &v
	}
	if err := validation.ValidateRecordPatch(&patch); err != nil {
		return nil, err
	}

	id := p.Args["id"].(string)
	storePatch, err := r.Analysis.PreparePatch(p.Context, r.Store, id, patch)
	if err != nil {
		return nil, err
	}
	rec, err := r.Store.Update(p.Context, id, storePatch)
	if err != nil {
		return nil, err
	}
	return recordView(rec), nil
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
