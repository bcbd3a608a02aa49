package domain

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

type AnalysisType string

const (
	AnalysisMarketFit     AnalysisType = "market_fit"
	AnalysisCompetitor    AnalysisType = "competitor"
	AnalysisSentiment     AnalysisType = "sentiment"
	AnalysisFeature       AnalysisType = "feature"
	AnalysisComprehensive AnalysisType = "comprehensive"
)

var analysisTypeLabels = map[AnalysisType]string{
	AnalysisMarketFit:     "Market Fit Analysis",
	AnalysisCompetitor:    "Competitor Analysis",
	AnalysisSentiment:     "Sentiment Analysis",
	AnalysisFeature:       "Feature Analysis",
	AnalysisComprehensive: "Comprehensive Analysis",
}

// Label returns the human readable name of the analysis type, or a generic
// label for values outside the known set.
func (t AnalysisType) Label() string {
	if label, ok := analysisTypeLabels[t]; ok {
		return label
	}
	return "Analysis"
}

// Confidence tier boundaries used by the dashboard.
const (
	HighConfidence   = 80.0
	MediumConfidence = 50.0
)

const DefaultReportVersion = "1.0"

type AnalysisReport struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Relationships
	ProductID  uint      `gorm:"not null;index" json:"productId"`
	Product    *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	WorkflowID *uint     `gorm:"index" json:"workflowId"`
	Workflow   *Workflow `gorm:"foreignKey:WorkflowID;constraint:OnDelete:RESTRICT" json:"-"`

	Title               string         `gorm:"type:text;not null" json:"title"`
	Content             datatypes.JSON `gorm:"not null" json:"content"`
	AnalysisType        AnalysisType   `gorm:"type:varchar(50);index;not null" json:"analysisType"`
	Confidence          float64        `gorm:"type:decimal(5,2);not null;default:0" json:"confidence"`
	Version             string         `gorm:"type:varchar(20);not null;default:'1.0'" json:"version"`
	ProductsAnalyzed    int            `gorm:"not null;default:1" json:"productsAnalyzed"`
	ExternalExecutionID string         `gorm:"type:varchar(255)" json:"externalExecutionId,omitempty"`

	// Audit
	AnalyzedAt time.Time `gorm:"not null;index" json:"analyzedAt"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AnalysisReportView is a report with its product and workflow flattened in.
type AnalysisReportView struct {
	AnalysisReport
	ProductRef  *ProductSummary  `json:"product"`
	WorkflowRef *WorkflowSummary `json:"workflow"`
}

// --- METHODS ---

func (r *AnalysisReport) View() AnalysisReportView {
	return AnalysisReportView{
		AnalysisReport: *r,
		ProductRef:     r.Product.Summary(),
		WorkflowRef:    r.Workflow.Summary(),
	}
}

// ConfidenceTier buckets a 0-100 confidence score into high, medium or low.
func ConfidenceTier(confidence float64) string {
	switch {
	case confidence >= HighConfidence:
		return "high"
	case confidence >= MediumConfidence:
		return "medium"
	default:
		return "low"
	}
}

// RoundConfidence rounds to the two decimals the column stores.
func RoundConfidence(v float64) float64 {
	return math.Round(v*100) / 100
}
