package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	gql "github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/nodelyzer/pkg/analysis"
	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/store"
)

const peersCSV = "name,country,lat,lon,provider\n" +
	"a,us,40.7,-74.0,AWS\n" +
	"b,us,37.7,-122.4,AWS\n" +
	"c,de,52.5,13.4,Hetzner\n" +
	"d,fr,48.8,2.3,OVH\n"

func newTestSchema(t *testing.T) (gql.Schema, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	schema, err := NewSchema(&Resolver{
		Store:    st,
		Analysis: analysis.NewService(analysis.Config{Logger: logging.NewNopLogger()}),
	})
	require.NoError(t, err)
	return schema, st
}

func do(t *testing.T, schema gql.Schema, query string, vars map[string]any) map[string]any {
	t.Helper()
	result := Execute(context.Background(), schema, Request{Query: query, Variables: vars}, 6)
	require.False(t, result.HasErrors(), "errors: %v", result.Errors)
	return result.Data.(map[string]any)
}

func TestHealthQuery(t *testing.T) {
	schema, _ := newTestSchema(t)
	data := do(t, schema, `{ health }`, nil)
	assert.Equal(t, "ok", data["health"])
}

func TestDetectQuery(t *testing.T) {
	schema, _ := newTestSchema(t)
	data := do(t, schema, `query($d: String!) { detect(data: $d, fileName: "solana_validators.csv") { network rule } }`,
		map[string]any{"d": "x"})

	detect := data["detect"].(map[string]any)
	assert.Equal(t, "solana", detect["network"])
	assert.Equal(t, "filename:solana", detect["rule"])
}

func TestSimulateQuery(t *testing.T) {
	schema, _ := newTestSchema(t)
	data := do(t, schema, `query($d: String!) {
		simulate(data: $d, network: "ethereum", scenario: "cloud", targets: ["aws"]) {
			scenario failedNodes totalNodes connectivityLoss
			countries { code name value }
			suggestions
		}
	}`, map[string]any{"d": peersCSV})

	sim := data["simulate"].(map[string]any)
	assert.Equal(t, "cloud", sim["scenario"])
	assert.EqualValues(t, 2, sim["failedNodes"])
	assert.EqualValues(t, 4, sim["totalNodes"])
	assert.Equal(t, "50.00%", sim["connectivityLoss"])
	countries := sim["countries"].([]any)
	assert.Len(t, countries, 2)
	assert.NotEmpty(t, sim["suggestions"])
}

func TestSimulateUnsupportedScenario(t *testing.T) {
	schema, _ := newTestSchema(t)
	result := Execute(context.Background(), schema, Request{
		Query: `{ simulate(data: "name,country\na,us", network: "ethereum", scenario: "meteor") { gini } }`,
	}, 6)
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Errors[0].Message, "scenario")
}

func TestCreateListAndRun(t *testing.T) {
	schema, _ := newTestSchema(t)

	created := do(t, schema, `mutation($d: String!) {
		createAnalysis(userId: "alice", name: "Peers", network: "ethereum", nodeData: $d) {
			id name network metrics { nakamoto connectivityLoss }
		}
	}`, map[string]any{"d": peersCSV})["createAnalysis"].(map[string]any)

	id := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "ethereum", created["network"])
	assert.Equal(t, "0.00%", created["metrics"].(map[string]any)["connectivityLoss"])

	list := do(t, schema, `{ analyses(userId: "alice") { id name } }`, nil)["analyses"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].(map[string]any)["id"])

	one := do(t, schema, `query($id: ID!) { analysis(id: $id) { name } }`, map[string]any{"id": id})
	assert.Equal(t, "Peers", one["analysis"].(map[string]any)["name"])

	missing := do(t, schema, `{ analysis(id: "nope") { name } }`, nil)
	assert.Nil(t, missing["analysis"])

	run := do(t, schema, `query($id: ID!) { run(id: $id, scenario: "region", targets: ["us"]) { failedNodes } }`,
		map[string]any{"id": id})
	assert.EqualValues(t, 2, run["run"].(map[string]any)["failedNodes"])

	renamed := do(t, schema, `mutation($id: ID!) { updateAnalysis(id: $id, name: "Renamed") { name } }`,
		map[string]any{"id": id})
	assert.Equal(t, "Renamed", renamed["updateAnalysis"].(map[string]any)["name"])
}

func TestCreateAnalysisValidation(t *testing.T) {
	schema, _ := newTestSchema(t)
	result := Execute(context.Background(), schema, Request{
		Query: `mutation { createAnalysis(userId: "u", name: "x", network: "dogecoin", nodeData: "a") { id } }`,
	}, 6)
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Errors[0].Message, "unsupported network")
}

func TestAnalysesLimit(t *testing.T) {
	schema, st := newTestSchema(t)
	for _, name := range []string{"a", "b", "c"} {
		_, err := st.Create(context.Background(), &store.Record{UserID: "bob", Name: name, Network: "bitcoin"})
		require.NoError(t, err)
	}
	list := do(t, schema, `{ analyses(userId: "bob", limit: 2) { id } }`, nil)["analyses"].([]any)
	assert.Len(t, list, 2)
}

func TestValidateQueryDepth(t *testing.T) {
	assert.NoError(t, ValidateQueryDepth(`{ analyses(userId: "a") { metrics { gini } } }`, 3))
	assert.Error(t, ValidateQueryDepth(`{ analyses(userId: "a") { metrics { gini } } }`, 2))
	assert.Error(t, ValidateQueryDepth(`{ unclosed`, 3))

	withFragment := `
		query { analyses(userId: "a") { ...f } }
		fragment f on Analysis { metrics { gini } }`
	assert.Error(t, ValidateQueryDepth(withFragment, 2))
	assert.NoError(t, ValidateQueryDepth(withFragment, 3))
}

func TestLimitConfig(t *testing.T) {
	c := DefaultLimits()
	require.NoError(t, c.Validate())
	assert.Equal(t, c.DefaultLimit, c.apply(-1))
	assert.Equal(t, 0, c.apply(0))
	assert.Equal(t, c.MaxLimit, c.apply(c.MaxLimit+1))

	assert.Error(t, LimitConfig{DefaultLimit: 10, MaxLimit: 5, MaxDepth: 1}.Validate())
	assert.Error(t, LimitConfig{DefaultLimit: 1, MaxLimit: 5}.Validate())
}

func TestHandler(t *testing.T) {
	schema, _ := newTestSchema(t)
	h := NewHandler(schema, 6)

	body, _ := json.Marshal(Request{Query: `{ health }`})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Data.(map[string]any)["health"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape("{ health }"), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/graphql", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
