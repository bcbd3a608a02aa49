package validation

import (
	"time"

	"huntboard/internal/domain"
)

type Insight struct {
	Category       string  `json:"category" validate:"required"`
	Finding        string  `json:"finding" validate:"required"`
	Importance     string  `json:"importance" validate:"required,oneof=high medium low"`
	Recommendation *string `json:"recommendation,omitempty"`
}

type Competitor struct {
	Name        string   `json:"name" validate:"required"`
	URL         *string  `json:"url,omitempty" validate:"omitempty,url"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	MarketShare *float64 `json:"marketShare,omitempty" validate:"omitnil,min=0,max=100"`
}

type MarketMetrics struct {
	TotalAddressableMarket *string  `json:"totalAddressableMarket,omitempty"`
	GrowthRate             *float64 `json:"growthRate,omitempty"`
	MarketMaturity         *string  `json:"marketMaturity,omitempty" validate:"omitnil,oneof=emerging growing mature declining"`
	Barriers               []string `json:"barriers"`
}

type SentimentBreakdown struct {
	Positive *float64 `json:"positive" validate:"required,min=0,max=100"`
	Neutral  *float64 `json:"neutral" validate:"required,min=0,max=100"`
	Negative *float64 `json:"negative" validate:"required,min=0,max=100"`
}

type TopComment struct {
	Text      string   `json:"text" validate:"required"`
	Sentiment string   `json:"sentiment" validate:"required,oneof=positive neutral negative"`
	Relevance *float64 `json:"relevance" validate:"required,min=0,max=1"`
}

type SentimentAnalysis struct {
	Overall     string              `json:"overall" validate:"required,oneof=very_positive positive neutral negative very_negative"`
	Breakdown   *SentimentBreakdown `json:"breakdown,omitempty"`
	TopComments []TopComment        `json:"topComments" validate:"dive"`
}

type AnalysisResult struct {
	Summary           string             `json:"summary" validate:"required"`
	Score             *float64           `json:"score,omitempty" validate:"omitnil,min=0,max=100"`
	Insights          []Insight          `json:"insights" validate:"dive"`
	Competitors       []Competitor       `json:"competitors,omitempty" validate:"dive"`
	MarketMetrics     *MarketMetrics     `json:"marketMetrics,omitempty"`
	SentimentAnalysis *SentimentAnalysis `json:"sentimentAnalysis,omitempty"`
	Recommendations   []string           `json:"recommendations"`
	Risks             []string           `json:"risks"`
	Opportunities     []string           `json:"opportunities"`
}

type AnalysisMetadata struct {
	ModelUsed      *string  `json:"modelUsed,omitempty"`
	ProcessingTime *float64 `json:"processingTime,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty" validate:"omitnil,min=0,max=1"`
	DataPoints     *int     `json:"dataPoints,omitempty" validate:"omitnil,min=0"`
}

// AnalysisWebhook is the payload the analysis workflow posts per product.
type AnalysisWebhook struct {
	ProductID           string              `json:"productId" validate:"required"`
	WorkflowExecutionID string              `json:"workflowExecutionId" validate:"required"`
	AnalysisType        domain.AnalysisType `json:"analysisType" validate:"required,oneof=market_fit competitor sentiment feature comprehensive"`
	AnalysisResult      AnalysisResult      `json:"analysisResult"`
	Metadata            *AnalysisMetadata   `json:"metadata,omitempty"`
	Status              string              `json:"status" validate:"oneof=pending processing completed failed"`
	Error               *string             `json:"error,omitempty"`
	CreatedAt           string              `json:"createdAt" validate:"required,datetime_iso"`
	UpdatedAt           *string             `json:"updatedAt,omitempty" validate:"omitempty,datetime_iso"`
}

// ParseAnalysisWebhook decodes and validates an analysis webhook body.
func ParseAnalysisWebhook(body []byte) (*AnalysisWebhook, error) {
	a := &AnalysisWebhook{Status: "completed"}
	if err := bind(body, a); err != nil {
		return nil, err
	}
	a.AnalysisResult.normalize()
	return a, nil
}

func (r *AnalysisResult) normalize() {
	r.Insights = orEmpty(r.Insights)
	r.Recommendations = orEmpty(r.Recommendations)
	r.Risks = orEmpty(r.Risks)
	r.Opportunities = orEmpty(r.Opportunities)
	for i := range r.Competitors {
		r.Competitors[i].Strengths = orEmpty(r.Competitors[i].Strengths)
		r.Competitors[i].Weaknesses = orEmpty(r.Competitors[i].Weaknesses)
	}
	if r.MarketMetrics != nil {
		r.MarketMetrics.Barriers = orEmpty(r.MarketMetrics.Barriers)
	}
	if r.SentimentAnalysis != nil {
		r.SentimentAnalysis.TopComments = orEmpty(r.SentimentAnalysis.TopComments)
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (a *AnalysisWebhook) Created() time.Time {
	t, _ := ParseTimestamp(a.CreatedAt)
	return t.UTC()
}

// Confidence is the report confidence on a 0-100 scale: the model confidence
// when reported, else the result score, else zero.
func (a *AnalysisWebhook) Confidence() float64 {
	switch {
	case a.Metadata != nil && a.Metadata.Confidence != nil:
		return domain.RoundConfidence(*a.Metadata.Confidence * 100)
	case a.AnalysisResult.Score != nil:
		return domain.RoundConfidence(*a.AnalysisResult.Score)
	default:
		return 0
	}
}

// ProductsAnalyzed is the reported data point count, or one when the count
// is missing or zero.
func (a *AnalysisWebhook) ProductsAnalyzed() int {
	if a.Metadata != nil && a.Metadata.DataPoints != nil && *a.Metadata.DataPoints > 0 {
		return *a.Metadata.DataPoints
	}
	return 1
}
