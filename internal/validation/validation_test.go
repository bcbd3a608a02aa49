package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntboard/internal/domain"
)

func fieldErrors(t *testing.T, err error) *Error {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	return verr
}

func TestParseProductWebhook_AppliesDefaults(t *testing.T) {
	p, err := ParseProductWebhook([]byte(`{"id":"p1","name":"Foo","tagline":"Bar","url":"https://x.com","createdAt":"2024-01-01T00:00:00Z"}`))
	require.NoError(t, err)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 0, p.VotesCount)
	assert.Equal(t, 0, p.CommentsCount)
	assert.Equal(t, 0, p.MakersCount)
	assert.False(t, p.Featured)
	assert.NotNil(t, p.Topics)
	assert.Empty(t, p.Topics)
	assert.NotNil(t, p.Makers)
	assert.Equal(t, "2024-01-01T00:00:00Z", p.Created().Format("2006-01-02T15:04:05Z07:00"))
}

func TestParseProductWebhook_ReportsEveryViolation(t *testing.T) {
	body := `{
		"id": "p1",
		"name": "",
		"tagline": "Bar",
		"url": "not a url",
		"votesCount": -1,
		"createdAt": "yesterday",
		"makers": [{"id": "m1", "name": "Ann"}]
	}`
	_, err := ParseProductWebhook([]byte(body))
	verr := fieldErrors(t, err)

	assert.ElementsMatch(t,
		[]string{"name", "url", "votesCount", "createdAt", "makers[0].username"},
		verr.Paths())
}

func TestParseProductWebhook_TypeMismatchIsAFieldError(t *testing.T) {
	_, err := ParseProductWebhook([]byte(`{"id":"p1","name":"Foo","tagline":"Bar","url":"https://x.com","createdAt":"2024-01-01T00:00:00Z","votesCount":"many"}`))
	verr := fieldErrors(t, err)

	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "votesCount", verr.Fields[0].Path)
	assert.Equal(t, "invalid_type", verr.Fields[0].Code)
}

func TestParseProductWebhook_ReportsEveryTypeMismatch(t *testing.T) {
	_, err := ParseProductWebhook([]byte(`{"id":"p1","name":"Foo","tagline":"Bar","url":"https://x.com",
		"createdAt":"2024-01-01T00:00:00Z","votesCount":"many","commentsCount":"lots",
		"topics":"ai","featured":"yes",
		"makers":[{"id":"m1","name":"Ann","username":"ann"},{"id":"m2","name":"Bob","username":7}],
		"hunter":{"id":"h1","name":"Hal","username":"hal","profileUrl":false}}`))
	verr := fieldErrors(t, err)

	assert.ElementsMatch(t, []string{
		"votesCount",
		"commentsCount",
		"topics",
		"featured",
		"makers[1].username",
		"hunter.profileUrl",
	}, verr.Paths())
	for _, f := range verr.Fields {
		assert.Equal(t, "invalid_type", f.Code, f.Path)
	}
}

func TestParseProductWebhook_TypeAndRuleErrorsShareOnePathForm(t *testing.T) {
	_, err := ParseProductWebhook([]byte(`{"id":"p1","name":"Foo","tagline":"Bar","url":"https://x.com",
		"createdAt":"2024-01-01T00:00:00Z",
		"makers":[{"id":"m1","name":"","username":"ann"},{"id":"m2","name":"Bob","username":7}]}`))
	verr := fieldErrors(t, err)

	assert.ElementsMatch(t, []string{"makers[0].name", "makers[1].username"}, verr.Paths())
}

func TestParseProductWebhook_NonObjectBody(t *testing.T) {
	_, err := ParseProductWebhook([]byte(`[1,2]`))
	verr := fieldErrors(t, err)

	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "", verr.Fields[0].Path)
	assert.Contains(t, verr.Fields[0].Message, "array")
}

func TestParseProductWebhook_MalformedJSON(t *testing.T) {
	_, err := ParseProductWebhook([]byte(`{"id":`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseProductWebhook(nil)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseAnalysisWebhook_Defaults(t *testing.T) {
	a, err := ParseAnalysisWebhook([]byte(`{
		"productId": "p1",
		"workflowExecutionId": "exec-1",
		"analysisType": "sentiment",
		"analysisResult": {"summary": "Looks good"},
		"createdAt": "2024-03-05T10:00:00Z"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "completed", a.Status)
	assert.NotNil(t, a.AnalysisResult.Insights)
	assert.NotNil(t, a.AnalysisResult.Risks)
	assert.Equal(t, 0.0, a.Confidence())
	assert.Equal(t, 1, a.ProductsAnalyzed())
}

func TestParseAnalysisWebhook_Confidence(t *testing.T) {
	tests := []struct {
		name     string
		extra    string
		expected float64
	}{
		{name: "metadata confidence wins", extra: `"metadata":{"confidence":0.876},"analysisResult":{"summary":"s","score":40}`, expected: 87.6},
		{name: "score fallback", extra: `"analysisResult":{"summary":"s","score":72.346}`, expected: 72.35},
		{name: "nothing reported", extra: `"analysisResult":{"summary":"s"}`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := fmt.Sprintf(`{"productId":"p1","workflowExecutionId":"e","analysisType":"feature","createdAt":"2024-01-01T00:00:00Z",%s}`, tt.extra)
			a, err := ParseAnalysisWebhook([]byte(body))
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, a.Confidence(), 0.0001)
		})
	}
}

func TestParseAnalysisWebhook_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		path  string
	}{
		{name: "confidence above one", extra: `"metadata":{"confidence":1.2}`, path: "metadata.confidence"},
		{name: "negative confidence", extra: `"metadata":{"confidence":-0.1}`, path: "metadata.confidence"},
		{name: "score above hundred", extra: `"analysisResult":{"summary":"s","score":100.5}`, path: "analysisResult.score"},
		{name: "market share", extra: `"analysisResult":{"summary":"s","competitors":[{"name":"c","marketShare":101}]}`, path: "analysisResult.competitors[0].marketShare"},
		{name: "insight importance", extra: `"analysisResult":{"summary":"s","insights":[{"category":"c","finding":"f","importance":"urgent"}]}`, path: "analysisResult.insights[0].importance"},
		{name: "comment relevance", extra: `"analysisResult":{"summary":"s","sentimentAnalysis":{"overall":"positive","topComments":[{"text":"t","sentiment":"positive","relevance":2}]}}`, path: "analysisResult.sentimentAnalysis.topComments[0].relevance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"productId":"p1","workflowExecutionId":"e","analysisType":"feature","createdAt":"2024-01-01T00:00:00Z","analysisResult":{"summary":"s"}}`
			if tt.extra != "" {
				body = fmt.Sprintf(`{"productId":"p1","workflowExecutionId":"e","analysisType":"feature","createdAt":"2024-01-01T00:00:00Z",%s}`, tt.extra)
			}
			_, err := ParseAnalysisWebhook([]byte(body))
			verr := fieldErrors(t, err)
			assert.Contains(t, verr.Paths(), tt.path)
		})
	}
}

func TestParseAnalysisWebhook_BoundaryValuesAccepted(t *testing.T) {
	for _, c := range []string{"0", "1", "0.5"} {
		body := fmt.Sprintf(`{"productId":"p1","workflowExecutionId":"e","analysisType":"market_fit","createdAt":"2024-01-01T00:00:00Z","analysisResult":{"summary":"s"},"metadata":{"confidence":%s}}`, c)
		_, err := ParseAnalysisWebhook([]byte(body))
		assert.NoError(t, err, "confidence %s", c)
	}
}

func TestParseAnalysisWebhook_RejectsUnknownType(t *testing.T) {
	_, err := ParseAnalysisWebhook([]byte(`{"productId":"p1","workflowExecutionId":"e","analysisType":"vibes","createdAt":"2024-01-01T00:00:00Z","analysisResult":{"summary":"s"}}`))
	verr := fieldErrors(t, err)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "analysisType", verr.Fields[0].Path)
	assert.Equal(t, "oneof", verr.Fields[0].Code)
}

func TestParseWorkflowCreate_DefaultsEachSubObject(t *testing.T) {
	w, err := ParseWorkflowCreate([]byte(`{
		"name": "Daily",
		"workflowType": "product_scraper",
		"n8nWorkflowId": "n8n-1",
		"webhookUrl": "https://n8n.local/webhook/daily",
		"configuration": {"retryPolicy": {"maxRetries": 5}, "notifications": {"onSuccess": true}}
	}`))
	require.NoError(t, err)

	assert.True(t, w.IsActive)
	cfg := w.Configuration
	assert.Equal(t, 5, cfg.RetryPolicy.MaxRetries)
	assert.Equal(t, 1000, cfg.RetryPolicy.RetryDelay)
	assert.Equal(t, 2.0, cfg.RetryPolicy.BackoffMultiplier)
	assert.Equal(t, 300000, cfg.Timeout)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)
	assert.True(t, cfg.Notifications.OnSuccess)
	assert.True(t, cfg.Notifications.OnFailure)
	assert.Empty(t, cfg.Triggers)
	assert.NotNil(t, w.Metadata)
}

func TestParseWorkflowCreate_RejectsOutOfRangeConfiguration(t *testing.T) {
	_, err := ParseWorkflowCreate([]byte(`{
		"name": "Daily",
		"workflowType": "nightly",
		"n8nWorkflowId": "n8n-1",
		"webhookUrl": "https://n8n.local/webhook/daily",
		"configuration": {
			"retryPolicy": {"maxRetries": 11, "backoffMultiplier": 0.5},
			"triggers": [{"type": "cron"}],
			"notifications": {"channels": ["pager"]}
		}
	}`))
	verr := fieldErrors(t, err)

	assert.ElementsMatch(t, []string{
		"workflowType",
		"configuration.retryPolicy.maxRetries",
		"configuration.retryPolicy.backoffMultiplier",
		"configuration.triggers[0].type",
		"configuration.notifications.channels[0]",
	}, verr.Paths())
}

func TestParseWorkflowUpdate_TracksPresence(t *testing.T) {
	w, err := ParseWorkflowUpdate([]byte(`{"isActive": false}`))
	require.NoError(t, err)
	require.NotNil(t, w.IsActive)
	assert.False(t, *w.IsActive)
	assert.Nil(t, w.Name)
	assert.Nil(t, w.Configuration)
	assert.True(t, w.Has("isActive"))
	assert.False(t, w.Has("name"))

	w, err = ParseWorkflowUpdate([]byte(`{"configuration": {"timeout": 10}}`))
	require.NoError(t, err)
	require.NotNil(t, w.Configuration)
	assert.Equal(t, 10, w.Configuration.Timeout)
	assert.Equal(t, 3, w.Configuration.RetryPolicy.MaxRetries)

	_, err = ParseWorkflowUpdate([]byte(`{"name": ""}`))
	verr := fieldErrors(t, err)
	assert.Equal(t, []string{"name"}, verr.Paths())
}

func TestParseProductUpdate_ExplicitNull(t *testing.T) {
	p, err := ParseProductUpdate([]byte(`{"workflowId": null, "votesCount": 3}`))
	require.NoError(t, err)
	assert.True(t, p.Has("workflowId"))
	assert.Nil(t, p.WorkflowID)
	require.NotNil(t, p.VotesCount)
	assert.Equal(t, 3, *p.VotesCount)
	assert.False(t, p.Has("name"))
}

func TestParseExecutionCallback(t *testing.T) {
	c, err := ParseExecutionCallback([]byte(`{"executionId": 4, "status": "failed", "error": "boom", "durationMs": 1500}`))
	require.NoError(t, err)

	ev := c.Event()
	assert.Equal(t, uint(4), ev.ExecutionID)
	assert.Equal(t, domain.ExecutionFailed, ev.Status)
	assert.Equal(t, "boom", ev.Error)
	require.NotNil(t, ev.DurationMs)
	assert.Equal(t, int64(1500), *ev.DurationMs)

	_, err = ParseExecutionCallback([]byte(`{"executionId": 0, "status": "running"}`))
	verr := fieldErrors(t, err)
	assert.ElementsMatch(t, []string{"executionId", "status"}, verr.Paths())
}
