package dto

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*pageSize within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// SortFields maps an API sort key to its column.
type SortFields map[string]string

var (
	WorkflowSortFields = SortFields{
		"createdAt":      "created_at",
		"name":           "name",
		"lastExecuted":   "last_executed",
		"executionCount": "execution_count",
	}
	ProductSortFields = SortFields{
		"scrapedAt":  "scraped_at",
		"createdAt":  "created_at",
		"votesCount": "votes_count",
		"name":       "name",
	}
	AnalysisSortFields = SortFields{
		"analyzedAt":       "analyzed_at",
		"productsAnalyzed": "products_analyzed",
		"confidence":       "confidence",
		"createdAt":        "created_at",
	}
	ExecutionSortFields = SortFields{
		"startedAt":   "started_at",
		"completedAt": "completed_at",
	}
)

// QueryError is a rejected query string parameter.
type QueryError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *QueryError) Error() string { return e.Message }

// ListQuery is a parsed list request: pagination, sorting and the filters
// shared by every resource.
type ListQuery struct {
	Page       int
	PageSize   int
	SortColumn string
	SortOrder  ports.SortOrder
	WorkflowID *uint
	StartDate  *time.Time
	EndDate    *time.Time
}

// ParseListQuery validates page, pageSize, sortBy, sortOrder, workflowId,
// startDate and endDate. Out of range values are rejected, never clamped.
func ParseListQuery(q url.Values, sortable SortFields) (*ListQuery, error) {
	lq := &ListQuery{Page: DefaultPage, PageSize: DefaultPageSize, SortOrder: ports.SortDesc}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPage {
			return nil, &QueryError{Code: CodeInvalidPagination, Message: fmt.Sprintf("page must be an integer between 1 and %d", MaxPage),
				Details: map[string]any{"page": v}}
		}
		lq.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPageSize {
			return nil, &QueryError{Code: CodeInvalidPagination, Message: fmt.Sprintf("pageSize must be an integer between 1 and %d", MaxPageSize),
				Details: map[string]any{"pageSize": v}}
		}
		lq.PageSize = n
	}

	if v := q.Get("sortBy"); v != "" {
		column, ok := sortable[v]
		if !ok {
			return nil, &QueryError{Code: CodeInvalidSort, Message: "unsupported sortBy " + strconv.Quote(v),
				Details: map[string]any{"sortBy": v, "allowed": sortable.keys()}}
		}
		lq.SortColumn = column
	}
	switch v := strings.ToLower(q.Get("sortOrder")); v {
	case "", "desc":
	case "asc":
		lq.SortOrder = ports.SortAsc
	default:
		return nil, &QueryError{Code: CodeInvalidSort, Message: "sortOrder must be asc or desc",
			Details: map[string]any{"sortOrder": q.Get("sortOrder")}}
	}

	if v := q.Get("workflowId"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return nil, &QueryError{Code: CodeValidation, Message: "workflowId must be a positive integer",
				Details: map[string]any{"workflowId": v}}
		}
		id := uint(n)
		lq.WorkflowID = &id
	}

	var err error
	if lq.StartDate, err = parseDate("startDate", q.Get("startDate"), false); err != nil {
		return nil, err
	}
	if lq.EndDate, err = parseDate("endDate", q.Get("endDate"), true); err != nil {
		return nil, err
	}
	if lq.StartDate != nil && lq.EndDate != nil && lq.EndDate.Before(*lq.StartDate) {
		return nil, &QueryError{Code: CodeInvalidDate, Message: "endDate is before startDate"}
	}

	return lq, nil
}

// parseDate accepts RFC 3339 or YYYY-MM-DD. A date-only end bound covers the
// whole day.
func parseDate(name, v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, &QueryError{Code: CodeInvalidDate, Message: name + " must be RFC 3339 or YYYY-MM-DD",
			Details: map[string]any{name: v}}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// Filter converts the query into a repository filter.
func (q *ListQuery) Filter() ports.ListFilter {
	return ports.ListFilter{
		WorkflowID: q.WorkflowID,
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
		Offset:     (q.Page - 1) * q.PageSize,
		Limit:      q.PageSize,
		SortColumn: q.SortColumn,
		SortOrder:  q.SortOrder,
	}
}

func (q *ListQuery) Pagination(total int64) *Pagination {
	return NewPagination(q.Page, q.PageSize, total)
}

// ParseEnum reads an optional query value restricted to allowed.
func ParseEnum(q url.Values, name string, allowed ...string) (string, error) {
	v := q.Get(name)
	if v == "" {
		return "", nil
	}
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", &QueryError{Code: CodeValidation, Message: fmt.Sprintf("%s must be one of %s", name, strings.Join(allowed, ", ")),
		Details: map[string]any{name: v}}
}

// ParseBool reads an optional true/false query value.
func ParseBool(q url.Values, name string) (*bool, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &QueryError{Code: CodeValidation, Message: name + " must be true or false",
			Details: map[string]any{name: v}}
	}
	return &b, nil
}

func (s SortFields) keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// WorkflowTypes and AnalysisTypes are the filter values accepted on lists.
var (
	WorkflowTypes = []string{
		string(domain.WorkflowTypeProducts), string(domain.WorkflowTypeAnalysis),
		string(domain.WorkflowTypeProductScraper), string(domain.WorkflowTypeAnalysisRunner),
		string(domain.WorkflowTypeDataPipeline), string(domain.WorkflowTypeCustom),
	}
	AnalysisTypes = []string{
		string(domain.AnalysisMarketFit), string(domain.AnalysisCompetitor), string(domain.AnalysisSentiment),
		string(domain.AnalysisFeature), string(domain.AnalysisComprehensive),
	}
	ExecutionStatuses = []string{
		string(domain.ExecutionPending), string(domain.ExecutionRunning),
		string(domain.ExecutionCompleted), string(domain.ExecutionFailed),
	}
)
