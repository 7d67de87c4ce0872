package graphql

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/nodelyzer/pkg/country"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/store"
)

var metricsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Metrics",
	Fields: graphql.Fields{
		"gini":             &graphql.Field{Type: graphql.Float},
		"nakamoto":         &graphql.Field{Type: graphql.Int},
		"connectivityLoss": &graphql.Field{Type: graphql.String},
	},
})

var analysisType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Analysis",
	Description: "A saved node dump and its headline metrics",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"network":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"nodeData":  &graphql.Field{Type: graphql.String},
		"metrics":   &graphql.Field{Type: metricsType},
	},
})

var countryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CountryCount",
	Fields: graphql.Fields{
		"code":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":  &graphql.Field{Type: graphql.String},
		"value": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var providerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProviderCount",
	Fields: graphql.Fields{
		"name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"value": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var resultType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "AnalysisResult",
	Description: "Concentration metrics after applying a failure scenario",
	Fields: graphql.Fields{
		"network":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"scenario":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"targets":             &graphql.Field{Type: graphql.NewList(graphql.String)},
		"gini":                &graphql.Field{Type: graphql.Float},
		"nakamoto":            &graphql.Field{Type: graphql.Int},
		"nakamotoByProvider":  &graphql.Field{Type: graphql.Int},
		"connectivityLoss":    &graphql.Field{Type: graphql.String},
		"connectivityLossPct": &graphql.Field{Type: graphql.Float},
		"stakeLossPct":        &graphql.Field{Type: graphql.Float},
		"failedNodes":         &graphql.Field{Type: graphql.Int},
		"totalNodes":          &graphql.Field{Type: graphql.Int},
		"remainingCountries":  &graphql.Field{Type: graphql.Int},
		"noMatchingTargets":   &graphql.Field{Type: graphql.Boolean},
		"torCount":            &graphql.Field{Type: graphql.Int},
		"pointCount":          &graphql.Field{Type: graphql.Int},
		"countries":           &graphql.Field{Type: graphql.NewList(countryType)},
		"providers":           &graphql.Field{Type: graphql.NewList(providerType)},
		"suggestions":         &graphql.Field{Type: graphql.NewList(graphql.String)},
		"warnings":            &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

var detectionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Detection",
	Fields: graphql.Fields{
		"network": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"rule":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

// recordView flattens a record for the default map resolver
func recordView(r *store.Record) map[string]any {
	view := map[string]any{
		"id":        r.ID,
		"userId":    r.UserID,
		"name":      r.Name,
		"network":   r.Network.String(),
		"createdAt": r.CreatedAt.Format(time.RFC3339Nano),
		"nodeData":  r.RawNodeData,
	}
	if m := r.Metrics; m != nil {
		metrics := map[string]any{}
		if m.Gini != nil {
			metrics["gini"] = *m.Gini
		}
		if m.Nakamoto != nil {
			metrics["nakamoto"] = *m.Nakamoto
		}
		if m.ConnectivityLoss != nil {
			metrics["connectivityLoss"] = *m.ConnectivityLoss
		}
		view["metrics"] = metrics
	}
	return view
}

func resultView(r *nodes.AnalysisResult) map[string]any {
	countries := make([]map[string]any, 0, len(r.Countries))
	for _, c := range r.Countries {
		countries = append(countries, map[string]any{
			"code":  c.DisplayCode(),
			"name":  country.CodeToName(c.Code),
			"value": c.Value,
		})
	}
	providers := make([]map[string]any, 0, len(r.Providers))
	for _, p := range r.Providers {
		providers = append(providers, map[string]any{"name": p.Name, "value": p.Value})
	}
	return map[string]any{
		"network":             r.Network.String(),
		"scenario":            r.Scenario,
		"targets":             r.Targets,
		"gini":                r.Gini,
		"nakamoto":            r.Nakamoto,
		"nakamotoByProvider":  r.NakamotoByProvider,
		"connectivityLoss":    r.ConnectivityLoss(),
		"connectivityLossPct": r.ConnectivityLossPct,
		"stakeLossPct":        r.StakeLossPct,
		"failedNodes":         r.FailedNodes,
		"totalNodes":          r.TotalNodes,
		"remainingCountries":  r.RemainingCountries,
		"noMatchingTargets":   r.NoMatchingTargets,
		"torCount":            r.TorCount,
		"pointCount":          r.PointCount,
		"countries":           countries,
		"providers":           providers,
		"suggestions":         r.Suggestions,
		"warnings":            r.Warnings,
	}
}
