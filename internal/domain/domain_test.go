package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestWorkflow_RecordExecution(t *testing.T) {
	wf := NewWorkflow("daily", WorkflowTypeProducts, "https://n8n.local/webhook/daily")
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	d := 1500 * time.Millisecond
	wf.RecordExecution(OutcomeSuccess, &d, at)
	wf.RecordExecution(OutcomeFailure, nil, at.Add(time.Hour))
	d = 4500 * time.Millisecond
	wf.RecordExecution(OutcomeSuccess, &d, at.Add(2*time.Hour))

	assert.Equal(t, 3, wf.ExecutionCount)
	assert.Equal(t, 2, wf.SuccessCount)
	assert.Equal(t, 1, wf.FailureCount)
	assert.Equal(t, wf.ExecutionCount, wf.SuccessCount+wf.FailureCount)
	require.NotNil(t, wf.AverageExecutionTime)
	assert.InDelta(t, 2500, *wf.AverageExecutionTime, 0.001)
	assert.Equal(t, OutcomeSuccess, *wf.LastExecutionStatus)
	assert.Equal(t, at.Add(2*time.Hour), *wf.LastExecuted)
}

func TestWorkflow_NewWorkflowDefaults(t *testing.T) {
	wf := NewWorkflow("daily", WorkflowTypeProducts, "https://n8n.local/webhook/daily")

	cfg := wf.Configuration.Data()
	assert.True(t, wf.IsActive)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)
	assert.Equal(t, 3, cfg.RetryPolicy.MaxRetries)
	assert.Equal(t, 300000, cfg.Timeout)
	assert.True(t, cfg.Notifications.OnFailure)
	assert.NotNil(t, cfg.Triggers)
}

func TestAnalysisType_Label(t *testing.T) {
	tests := []struct {
		in   AnalysisType
		want string
	}{
		{AnalysisMarketFit, "Market Fit Analysis"},
		{AnalysisComprehensive, "Comprehensive Analysis"},
		{AnalysisType("vibes"), "Analysis"},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Label())
		})
	}
}

func TestConfidenceTier(t *testing.T) {
	assert.Equal(t, "high", ConfidenceTier(80))
	assert.Equal(t, "medium", ConfidenceTier(79.99))
	assert.Equal(t, "medium", ConfidenceTier(50))
	assert.Equal(t, "low", ConfidenceTier(49.99))
	assert.Equal(t, 72.35, RoundConfidence(72.346))
}

func TestViews_NilRelations(t *testing.T) {
	p := NewProduct("Foo", "Bar", "https://x.com", time.Now())
	assert.Nil(t, p.View().WorkflowRef)

	r := &AnalysisReport{ProductID: 1}
	v := r.View()
	assert.Nil(t, v.ProductRef)
	assert.Nil(t, v.WorkflowRef)
}

func TestExecution_Outcome(t *testing.T) {
	e := NewExecution(7)
	assert.Equal(t, ExecutionPending, e.Status)
	assert.False(t, e.IsFinished())

	e.Status = ExecutionFailed
	assert.True(t, e.IsFinished())
	assert.Equal(t, OutcomeFailure, e.Outcome())

	e.Status = ExecutionCompleted
	assert.Equal(t, OutcomeSuccess, e.Outcome())
}

func TestNewDispatchRequest(t *testing.T) {
	wf := NewWorkflow("daily", WorkflowTypeProducts, "https://n8n.local/webhook/daily")
	wf.ID = 4
	cfg := wf.Configuration.Data()
	cfg.Parameters = map[string]any{"limit": 20}
	wf.Configuration = datatypes.NewJSONType(cfg)

	exec := NewExecution(wf.ID)
	exec.ID = 11
	req := NewDispatchRequest(wf, exec, "https://api/callback")

	assert.Equal(t, uint(11), req.ExecutionID)
	assert.Equal(t, exec.DispatchID, req.DispatchID)
	assert.Equal(t, "https://n8n.local/webhook/daily", req.WebhookURL)
	assert.Equal(t, "https://api/callback", req.CallbackURL)
	assert.Equal(t, 20, req.Parameters["limit"])
}
