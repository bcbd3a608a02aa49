package worker

import (
	"context"

	"huntboard/internal/domain"
)

// Result is what a handler reports back for a finished run.
type Result struct {
	ProductsProcessed int
	Metadata          map[string]any
}

// TaskHandler runs one dispatched workflow locally.
type TaskHandler func(ctx context.Context, req domain.DispatchRequest) (Result, error)

// TaskRegistry maps workflow categories to the handler that executes them.
type TaskRegistry map[domain.WorkflowType]TaskHandler

// InitRegistry wires a pass-through handler for every category. It stands in
// for the external engine during local development.
func InitRegistry() TaskRegistry {
	registry := make(TaskRegistry)

	for _, t := range []domain.WorkflowType{
		domain.WorkflowTypeProducts,
		domain.WorkflowTypeAnalysis,
		domain.WorkflowTypeProductScraper,
		domain.WorkflowTypeAnalysisRunner,
		domain.WorkflowTypeDataPipeline,
		domain.WorkflowTypeCustom,
	} {
		registry[t] = passThrough
	}

	return registry
}

func passThrough(_ context.Context, req domain.DispatchRequest) (Result, error) {
	return Result{
		ProductsProcessed: 0,
		Metadata: map[string]any{
			"executor":      "local",
			"workflowType":  string(req.WorkflowType),
			"n8nWorkflowId": req.N8nWorkflow,
		},
	}, nil
}
