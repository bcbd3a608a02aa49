package validation

import (
	"time"
)

// Person is a ProductHunt maker or hunter.
type Person struct {
	ID         string  `json:"id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Username   string  `json:"username" validate:"required"`
	ProfileURL *string `json:"profileUrl,omitempty" validate:"omitempty,url"`
	AvatarURL  *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// ProductWebhook is the payload the scraping workflow posts for each product.
type ProductWebhook struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Tagline       string   `json:"tagline" validate:"required"`
	Description   *string  `json:"description,omitempty"`
	URL           string   `json:"url" validate:"required,url"`
	WebsiteURL    *string  `json:"websiteUrl,omitempty" validate:"omitempty,url"`
	ImageURL      *string  `json:"imageUrl,omitempty" validate:"omitempty,url"`
	ThumbnailURL  *string  `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
	Topics        []string `json:"topics"`
	VotesCount    int      `json:"votesCount" validate:"min=0"`
	CommentsCount int      `json:"commentsCount" validate:"min=0"`
	MakersCount   int      `json:"makersCount" validate:"min=0"`
	Featured      bool     `json:"featured"`
	FeaturedAt    *string  `json:"featuredAt,omitempty" validate:"omitempty,datetime_iso"`
	CreatedAt     string   `json:"createdAt" validate:"required,datetime_iso"`
	UpdatedAt     *string  `json:"updatedAt,omitempty" validate:"omitempty,datetime_iso"`
	Makers        []Person `json:"makers" validate:"dive"`
	Hunter        *Person  `json:"hunter,omitempty"`

	WorkflowExecutionID *string `json:"workflowExecutionId,omitempty"`
	WebhookReceivedAt   *string `json:"webhookReceivedAt,omitempty" validate:"omitempty,datetime_iso"`
}

// ParseProductWebhook decodes and validates a product webhook body.
func ParseProductWebhook(body []byte) (*ProductWebhook, error) {
	p := &ProductWebhook{
		Topics: []string{},
		Makers: []Person{},
	}
	if err := bind(body, p); err != nil {
		return nil, err
	}
	if p.Topics == nil {
		p.Topics = []string{}
	}
	if p.Makers == nil {
		p.Makers = []Person{}
	}
	return p, nil
}

// Created returns the payload's own creation time. Only valid after parsing.
func (p *ProductWebhook) Created() time.Time {
	t, _ := ParseTimestamp(p.CreatedAt)
	return t.UTC()
}

// ProductCreate is the body of a manual product insert.
type ProductCreate struct {
	Name           string   `json:"name" validate:"required,max=500"`
	Tagline        string   `json:"tagline"`
	Description    *string  `json:"description,omitempty"`
	URL            string   `json:"url" validate:"omitempty,url"`
	ProductHuntURL *string  `json:"productHuntUrl,omitempty" validate:"omitempty,url"`
	WebsiteURL     *string  `json:"websiteUrl,omitempty" validate:"omitempty,url"`
	ThumbnailURL   *string  `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
	VotesCount     int      `json:"votesCount" validate:"min=0"`
	CommentsCount  int      `json:"commentsCount" validate:"min=0"`
	Categories     []string `json:"categories"`
	Tags           []string `json:"tags"`
	WorkflowID     *uint    `json:"workflowId,omitempty"`
	ScrapedAt      *string  `json:"scrapedAt,omitempty" validate:"omitempty,datetime_iso"`
}

func ParseProductCreate(body []byte) (*ProductCreate, error) {
	p := &ProductCreate{Categories: []string{}, Tags: []string{}}
	if err := bind(body, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ProductUpdate is a partial product update. Present reports which keys the
// body carried so an explicit null can clear a nullable column.
type ProductUpdate struct {
	Name           *string  `json:"name" validate:"omitnil,min=1,max=500"`
	Tagline        *string  `json:"tagline"`
	Description    *string  `json:"description"`
	URL            *string  `json:"url" validate:"omitnil,url"`
	ProductHuntURL *string  `json:"productHuntUrl" validate:"omitnil,url"`
	WebsiteURL     *string  `json:"websiteUrl" validate:"omitnil,url"`
	ThumbnailURL   *string  `json:"thumbnailUrl" validate:"omitnil,url"`
	VotesCount     *int     `json:"votesCount" validate:"omitnil,min=0"`
	CommentsCount  *int     `json:"commentsCount" validate:"omitnil,min=0"`
	Categories     []string `json:"categories"`
	Tags           []string `json:"tags"`
	WorkflowID     *uint    `json:"workflowId"`
	ScrapedAt      *string  `json:"scrapedAt" validate:"omitnil,datetime_iso"`

	Present map[string]bool `json:"-"`
}

func ParseProductUpdate(body []byte) (*ProductUpdate, error) {
	p := &ProductUpdate{}
	if err := bind(body, p); err != nil {
		return nil, err
	}
	present, err := presentKeys(body)
	if err != nil {
		return nil, err
	}
	p.Present = present
	return p, nil
}

func (p *ProductUpdate) Has(key string) bool {
	return p.Present[key]
}
