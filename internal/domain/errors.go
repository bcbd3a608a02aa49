package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrWorkflowInactive = errors.New("workflow is not active")
)

// DependencyError blocks a workflow delete while products or reports still
// reference it.
type DependencyError struct {
	HasProducts  bool
	HasReports   bool
	ProductCount int64
	ReportCount  int64
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("workflow has dependencies: %d products, %d analysis reports", e.ProductCount, e.ReportCount)
}
