package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"huntboard/internal/core/ports"
	"huntboard/internal/domain"
)

// dateRange limits column to the filter's inclusive bounds.
func dateRange(column string, f ports.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.StartDate != nil {
			db = db.Where(clause.Gte{Column: clause.Column{Name: column}, Value: *f.StartDate})
		}
		if f.EndDate != nil {
			db = db.Where(clause.Lte{Column: clause.Column{Name: column}, Value: *f.EndDate})
		}
		return db
	}
}

func byWorkflow(f ports.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.WorkflowID != nil {
			db = db.Where("workflow_id = ?", *f.WorkflowID)
		}
		return db
	}
}

// ordered sorts by the filter's column, or fallback, newest first unless asc
// was asked for. id breaks ties so pages are stable.
func ordered(f ports.ListFilter, fallback string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column := f.SortColumn
		if column == "" {
			column = fallback
		}
		desc := f.SortOrder != ports.SortAsc
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
}

func paginate(f ports.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Limit > 0 {
			db = db.Limit(f.Limit)
		}
		if f.Offset > 0 {
			db = db.Offset(f.Offset)
		}
		return db
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// withUpdatedAt copies fields and stamps updated_at.
func withUpdatedAt(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["updated_at"] = time.Now().UTC()
	return out
}
