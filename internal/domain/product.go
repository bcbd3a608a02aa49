package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Product struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	ExternalID     string  `gorm:"type:varchar(100);index" json:"externalId,omitempty"`
	Name           string  `gorm:"type:text;not null" json:"name"`
	Tagline        string  `gorm:"type:text" json:"tagline"`
	Description    *string `gorm:"type:text" json:"description"`
	URL            string  `gorm:"column:url;type:text" json:"url"`
	ProductHuntURL *string `gorm:"column:product_hunt_url;type:text" json:"productHuntUrl"`
	WebsiteURL     *string `gorm:"column:website_url;type:text" json:"websiteUrl"`
	ThumbnailURL   *string `gorm:"column:thumbnail_url;type:text" json:"thumbnailUrl"`

	VotesCount    int `gorm:"not null;default:0;index" json:"votesCount"`
	CommentsCount int `gorm:"not null;default:0" json:"commentsCount"`

	Categories datatypes.JSONSlice[string] `json:"categories"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`
	Makers     datatypes.JSON              `json:"makers,omitempty"`

	FeaturedAt *time.Time `json:"featuredAt"`
	LaunchedAt *time.Time `json:"launchedAt"`

	// Relationships
	WorkflowID *uint     `gorm:"index" json:"workflowId"`
	Workflow   *Workflow `gorm:"foreignKey:WorkflowID;constraint:OnDelete:RESTRICT" json:"-"`

	// Audit
	ScrapedAt time.Time `gorm:"not null;index" json:"scrapedAt"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductView is a product with its owning workflow flattened in.
type ProductView struct {
	Product
	WorkflowRef *WorkflowSummary `json:"workflow"`
}

type ProductSummary struct {
	ID         uint   `json:"id"`
	ExternalID string `json:"externalId,omitempty"`
	Name       string `json:"name"`
}

// --- FACTORY ---

func NewProduct(name, tagline, url string, scrapedAt time.Time) *Product {
	return &Product{
		Name:       name,
		Tagline:    tagline,
		URL:        url,
		Categories: datatypes.JSONSlice[string]{},
		Tags:       datatypes.JSONSlice[string]{},
		ScrapedAt:  scrapedAt,
	}
}

// --- METHODS ---

func (p *Product) View() ProductView {
	return ProductView{Product: *p, WorkflowRef: p.Workflow.Summary()}
}

func (p *Product) Summary() *ProductSummary {
	if p == nil {
		return nil
	}
	return &ProductSummary{ID: p.ID, ExternalID: p.ExternalID, Name: p.Name}
}
