package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huntboard/internal/api/dto"
	"huntboard/internal/service"
	"huntboard/internal/validation"
)

type WorkflowHandler struct {
	base
	workflows  service.WorkflowService
	executions service.ExecutionService
}

func NewWorkflowHandler(workflows service.WorkflowService, executions service.ExecutionService, log *zap.Logger, production bool) *WorkflowHandler {
	return &WorkflowHandler{base: newBase(log, production), workflows: workflows, executions: executions}
}

func (h *WorkflowHandler) List(c *gin.Context) {
	q, err := dto.ParseListQuery(c.Request.URL.Query(), dto.WorkflowSortFields)
	if err != nil {
		h.handleError(c, err)
		return
	}
	workflowType, err := dto.ParseEnum(c.Request.URL.Query(), "type", dto.WorkflowTypes...)
	if err != nil {
		h.handleError(c, err)
		return
	}
	active, err := dto.ParseBool(c.Request.URL.Query(), "isActive")
	if err != nil {
		h.handleError(c, err)
		return
	}

	filter := q.Filter()
	filter.Type = workflowType
	filter.Active = active

	items, total, err := h.workflows.ListWorkflows(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.okPage(c, items, q.Pagination(total))
}

func (h *WorkflowHandler) Get(c *gin.Context) {
	id, ok := h.requireID(c)
	if !ok {
		return
	}
	wf, err := h.workflows.GetWorkflow(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, wf)
}

func (h *WorkflowHandler) Create(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	req, err := validation.ParseWorkflowCreate(body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	wf, err := h.workflows.CreateWorkflow(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusCreated, wf)
}

func (h *WorkflowHandler) Update(c *gin.Context) {
	id, ok := h.requireID(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	req, err := validation.ParseWorkflowUpdate(body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	wf, err := h.workflows.UpdateWorkflow(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, wf)
}

func (h *WorkflowHandler) Delete(c *gin.Context) {
	id, ok := h.requireID(c)
	if !ok {
		return
	}
	if err := h.workflows.DeleteWorkflow(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"id": id, "message": fmt.Sprintf("Workflow %d deleted", id)})
}

// Run dispatches a workflow execution and answers 202 once the executor has
// accepted it.
func (h *WorkflowHandler) Run(c *gin.Context) {
	id, ok := h.requireID(c)
	if !ok {
		return
	}
	exec, err := h.executions.RunWorkflow(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusAccepted, dto.RunResponse{
		ExecutionID: exec.ID,
		DispatchID:  exec.DispatchID.String(),
		Status:      string(exec.Status),
		StartedAt:   exec.StartedAt,
	})
}

func (h *WorkflowHandler) Executions(c *gin.Context) {
	id, ok := h.requireID(c)
	if !ok {
		return
	}
	q, err := dto.ParseListQuery(c.Request.URL.Query(), dto.ExecutionSortFields)
	if err != nil {
		h.handleError(c, err)
		return
	}
	status, err := dto.ParseEnum(c.Request.URL.Query(), "status", dto.ExecutionStatuses...)
	if err != nil {
		h.handleError(c, err)
		return
	}

	filter := q.Filter()
	filter.Status = status

	items, total, err := h.executions.ListExecutions(c.Request.Context(), id, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.okPage(c, items, q.Pagination(total))
}
