package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodigypm/orchestrator/internal/agents"
	"github.com/prodigypm/orchestrator/internal/budget"
	"github.com/prodigypm/orchestrator/internal/cache"
	"github.com/prodigypm/orchestrator/internal/config"
	"github.com/prodigypm/orchestrator/internal/gateway"
	"github.com/prodigypm/orchestrator/internal/memory"
	"github.com/prodigypm/orchestrator/internal/monitoring"
	"github.com/prodigypm/orchestrator/internal/provider"
	"github.com/prodigypm/orchestrator/internal/workflow"
)

// fixedClient always returns the same completion.
type fixedClient struct{}

func (fixedClient) Name() string { return "fixed" }

func (fixedClient) Call(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64, maxTokens int) (*provider.Completion, error) {
	return &provider.Completion{Text: "reasoned output", PromptTokens: 50, CompletionTokens: 50}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ledger := budget.NewLedger(40)
	gw := gateway.New(ledger, cache.New(0), fixedClient{}, monitoring.NewMetricsCollector())
	mem := memory.NewStore()
	registry := agents.NewRegistry(mem)
	hub := NewHub()
	engine := workflow.NewEngine(registry, gw, mem, nil, monitoring.NewMetricsCollector(),
		workflow.WithProgress(hub.Publish))

	s := New(config.ServerConfig{Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Minute},
		gw, engine, registry, hub)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]any
	resp := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_ExecuteWorkflow(t *testing.T) {
	srv := newTestServer(t)

	payload := []byte(`{"workflow_type": "compliance_check", "input": {"feature": "EU export"}}`)
	resp, err := http.Post(srv.URL+"/api/v1/tasks/execute", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run workflow.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, "compliance_check", run.WorkflowType)
	assert.Equal(t, workflow.StatusCompleted, run.Status)
	require.Len(t, run.Steps, 1)
	assert.Equal(t, "regulation", run.Steps[0].Agent)
}

func TestServer_Execute_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `{not json`},
		{"missing workflow_type", `{"input": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/tasks/execute", "application/json",
				bytes.NewReader([]byte(tt.payload)))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestServer_BudgetAndUsage(t *testing.T) {
	srv := newTestServer(t)

	// Spend something first.
	payload := []byte(`{"workflow_type": "compliance_check", "input": {"feature": "x"}}`)
	resp, err := http.Post(srv.URL+"/api/v1/tasks/execute", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()

	var status budget.Status
	getJSON(t, srv.URL+"/api/v1/budget", &status)
	assert.Equal(t, 40.0, status.TotalBudget)
	assert.Greater(t, status.UsedBudget, 0.0)
	assert.Equal(t, budget.LevelHealthy, status.Level)

	var usage gateway.UsageStats
	getJSON(t, srv.URL+"/api/v1/usage", &usage)
	assert.Equal(t, 1, usage.CallsMade)
	assert.NotEmpty(t, usage.PerModelBreakdown)
}

func TestServer_AgentStatus(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Agents []agents.AgentStatus `json:"agents"`
	}
	getJSON(t, srv.URL+"/api/v1/agents/status", &body)

	require.Len(t, body.Agents, 10)
	for _, a := range body.Agents {
		assert.NotEmpty(t, a.Name)
		assert.NotEmpty(t, a.Goal)
		assert.Equal(t, agents.StatusIdle, a.Status)
	}
}

func TestServer_WorkflowCatalogAndRecommendation(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Workflows   []workflow.CatalogEntry `json:"workflows"`
		Recommended string                  `json:"recommended"`
	}
	getJSON(t, srv.URL+"/api/v1/workflows?describe=check+gdpr+compliance", &body)

	assert.Len(t, body.Workflows, 7)
	assert.Equal(t, workflow.TypeComplianceCheck, body.Recommended)
}

func TestServer_WorkflowHistory(t *testing.T) {
	srv := newTestServer(t)

	payload := []byte(`{"workflow_type": "compliance_check", "input": {"feature": "x"}}`)
	resp, err := http.Post(srv.URL+"/api/v1/tasks/execute", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()

	var body struct {
		Recent []workflow.Run `json:"recent"`
	}
	getJSON(t, srv.URL+"/api/v1/workflows/history", &body)
	require.Len(t, body.Recent, 1)
	assert.Equal(t, "compliance_check", body.Recent[0].WorkflowType)

	// Bad limit is rejected.
	r, err := http.Get(srv.URL + "/api/v1/workflows/history?limit=nope")
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestServer_AdminReset(t *testing.T) {
	srv := newTestServer(t)

	payload := []byte(`{"workflow_type": "compliance_check", "input": {"feature": "x"}}`)
	resp, err := http.Post(srv.URL+"/api/v1/tasks/execute", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/api/v1/admin/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status budget.Status
	getJSON(t, srv.URL+"/api/v1/budget", &status)
	assert.Zero(t, status.UsedBudget)
}

func TestServer_Dashboard(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestHub_PublishAndDrop(t *testing.T) {
	hub := NewHub()
	ch := hub.subscribe()

	hub.Publish("wf_1", workflow.StepResult{Agent: "strategy", Status: "completed"})

	select {
	case ev := <-ch:
		assert.Equal(t, "wf_1", ev.WorkflowID)
		assert.Equal(t, "strategy", ev.Step.Agent)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}

	// A full subscriber drops events instead of blocking the publisher.
	for i := 0; i < subscriberBuffer*2; i++ {
		hub.Publish("wf_1", workflow.StepResult{Agent: "research"})
	}

	hub.unsubscribe(ch)
	hub.Close()
}
