package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ordem-digital/protocol-engine/internal/application/handler"
	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/application/service"
	appworkflow "github.com/ordem-digital/protocol-engine/internal/application/workflow"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	domainwf "github.com/ordem-digital/protocol-engine/internal/domain/workflow"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/storage"
)

const actorContextKey = "actor"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine        appworkflow.Orchestrator
	registry      *domainwf.Registry
	protocolRepo  port.ProtocolRepository
	accountRepo   port.AccountRepository
	memberRepo    port.MemberRepository
	reportService service.ReportService
	receiptStore  *storage.ReceiptStore
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engine appworkflow.Orchestrator,
	registry *domainwf.Registry,
	protocolRepo port.ProtocolRepository,
	accountRepo port.AccountRepository,
	memberRepo port.MemberRepository,
	reportService service.ReportService,
	receiptStore *storage.ReceiptStore,
	logger Logger,
) *Handlers {
	return &Handlers{
		engine:        engine,
		registry:      registry,
		protocolRepo:  protocolRepo,
		accountRepo:   accountRepo,
		memberRepo:    memberRepo,
		reportService: reportService,
		receiptStore:  receiptStore,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CreateProtocolRequest represents the protocol creation request body
type CreateProtocolRequest struct {
	Type       string          `json:"type" binding:"required"`
	AssemblyID int64           `json:"assembly_id" binding:"required"`
	Payload    handler.Payload `json:"payload"`
}

// TransitionRequest represents the transition request body
type TransitionRequest struct {
	Target  string          `json:"target" binding:"required"`
	Payload handler.Payload `json:"payload"`
}

// ProtocolResponse represents a protocol in API responses
type ProtocolResponse struct {
	ID               int64   `json:"id"`
	Code             string  `json:"code"`
	Type             string  `json:"type"`
	CurrentStep      string  `json:"current_step"`
	Status           string  `json:"status"`
	AssemblyID       int64   `json:"assembly_id"`
	RequesterID      int64   `json:"requester_id"`
	ApproverID       *int64  `json:"approver_id,omitempty"`
	CeremonyDate     *string `json:"ceremony_date,omitempty"`
	FeeCents         *int64  `json:"fee_cents,omitempty"`
	FeeNotes         string  `json:"fee_notes,omitempty"`
	ReceiptPath      string  `json:"receipt_path,omitempty"`
	PaymentConfirmed bool    `json:"payment_confirmed"`
	Feedback         string  `json:"feedback,omitempty"`
	ApprovedAt       *string `json:"approved_at,omitempty"`
	ArchivedAt       *string `json:"archived_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// HistoryEntryResponse represents one journal entry in API responses
type HistoryEntryResponse struct {
	ID            int64  `json:"id"`
	ActorID       int64  `json:"actor_id"`
	ActionType    string `json:"action_type"`
	Description   string `json:"description"`
	PreviousState string `json:"previous_state,omitempty"`
	NewState      string `json:"new_state"`
	Note          string `json:"note,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// WorkflowResponse describes one registered workflow
type WorkflowResponse struct {
	Type        string                 `json:"type"`
	InitialStep string                 `json:"initial_step"`
	Steps       []WorkflowStepResponse `json:"steps"`
}

// WorkflowStepResponse describes one step of a workflow
type WorkflowStepResponse struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	RequiredRoles []string `json:"required_roles,omitempty"`
	NextSteps     []string `json:"next_steps,omitempty"`
}

// ActorMiddleware resolves the acting account from the X-Account-ID header
// and stashes a workflow actor in the request context
func (h *Handlers) ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader("X-Account-ID")
		if idStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing X-Account-ID header",
			})
			return
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid X-Account-ID header",
			})
			return
		}

		account, err := h.accountRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			h.logger.Error("Failed to resolve account", "account_id", id, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
				Success: false,
				Error:   "failed to resolve account",
			})
			return
		}
		if account == nil || !account.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "unknown account",
			})
			return
		}

		c.Set(actorContextKey, domainwf.Actor{
			AccountID:  account.ID,
			Name:       account.Name,
			Roles:      account.Roles,
			AssemblyID: account.AssemblyID,
		})
		c.Next()
	}
}

func (h *Handlers) actor(c *gin.Context) domainwf.Actor {
	return c.MustGet(actorContextKey).(domainwf.Actor)
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateProtocol handles POST /api/v1/protocols
func (h *Handlers) CreateProtocol(c *gin.Context) {
	var req CreateProtocolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	protocolType := entity.ProtocolType(req.Type)
	if !protocolType.IsValid() {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("unknown protocol type: %s", req.Type),
		})
		return
	}

	protocol, err := h.engine.CreateProtocol(c.Request.Context(), appworkflow.CreateRequest{
		Type:       protocolType,
		AssemblyID: req.AssemblyID,
		Actor:      h.actor(c),
		Payload:    req.Payload,
	})
	if err != nil {
		h.writeWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toProtocolResponse(protocol),
	})
}

// Transition handles POST /api/v1/protocols/:id/transition
func (h *Handlers) Transition(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	target := domainwf.Step(req.Target)
	if !target.IsValid() {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("unknown step: %s", req.Target),
		})
		return
	}

	protocol, err := h.engine.TransitionTo(c.Request.Context(), id, target, h.actor(c), req.Payload)
	if err != nil {
		h.writeWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toProtocolResponse(protocol),
	})
}

// GetProtocol handles GET /api/v1/protocols/:id
func (h *Handlers) GetProtocol(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	protocol, err := h.protocolRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get protocol", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve protocol",
		})
		return
	}
	if protocol == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "protocol not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toProtocolResponse(protocol),
	})
}

// ListProtocols handles GET /api/v1/protocols
func (h *Handlers) ListProtocols(c *gin.Context) {
	var filter port.ProtocolFilter

	if v := c.Query("assembly_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   "invalid assembly_id",
			})
			return
		}
		filter.AssemblyID = &id
	}
	filter.Type = entity.ProtocolType(c.Query("type"))
	filter.Status = c.Query("status")

	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	protocols, err := h.protocolRepo.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list protocols", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve protocols",
		})
		return
	}

	responses := make([]ProtocolResponse, 0, len(protocols))
	for _, protocol := range protocols {
		responses = append(responses, toProtocolResponse(protocol))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    responses,
	})
}

// UploadReceipt handles POST /api/v1/protocols/:id/receipt. The stored path is
// returned to the caller, who passes it as receipt_path on the
// awaiting-payment transition.
func (h *Handlers) UploadReceipt(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	protocol, err := h.protocolRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get protocol", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve protocol",
		})
		return
	}
	if protocol == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "protocol not found",
		})
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "missing receipt file",
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "unreadable receipt file",
		})
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "unreadable receipt file",
		})
		return
	}

	path, err := h.receiptStore.Save(id, file.Filename, content)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    gin.H{"receipt_path": path},
	})
}

// GetHistory handles GET /api/v1/protocols/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	entries, err := h.engine.History(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get history", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve history",
		})
		return
	}

	responses := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, HistoryEntryResponse{
			ID:            entry.ID,
			ActorID:       entry.ActorID,
			ActionType:    entry.ActionType,
			Description:   entry.Description,
			PreviousState: entry.PreviousState,
			NewState:      entry.NewState,
			Note:          entry.Note,
			Timestamp:     entry.Timestamp.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    responses,
	})
}

// ListWorkflows handles GET /api/v1/workflows
func (h *Handlers) ListWorkflows(c *gin.Context) {
	var responses []WorkflowResponse

	for _, protocolType := range h.registry.Types() {
		wf, err := h.registry.WorkflowFor(protocolType)
		if err != nil {
			continue
		}

		resp := WorkflowResponse{
			Type:        protocolType.String(),
			InitialStep: wf.InitialStep.String(),
		}
		for _, name := range wf.Steps() {
			def, err := wf.Step(name)
			if err != nil {
				continue
			}

			nextSteps := make([]string, 0, len(def.NextSteps))
			for _, next := range def.NextSteps {
				nextSteps = append(nextSteps, next.String())
			}
			resp.Steps = append(resp.Steps, WorkflowStepResponse{
				Name:          def.Name.String(),
				Label:         def.Label,
				RequiredRoles: def.RequiredRoles,
				NextSteps:     nextSteps,
			})
		}

		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    responses,
	})
}

// ListMembers handles GET /api/v1/assemblies/:id/members
func (h *Handlers) ListMembers(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	members, err := h.memberRepo.ListByAssembly(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list members", "assembly_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve members",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    members,
	})
}

// MemberRosterReport handles GET /api/v1/assemblies/:id/reports/members
func (h *Handlers) MemberRosterReport(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	workbook, err := h.reportService.MemberRoster(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to build member roster", "assembly_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to build report",
		})
		return
	}

	filename := fmt.Sprintf("members_assembly_%d.xlsx", id)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

// ProtocolSummaryReport handles GET /api/v1/reports/protocols
func (h *Handlers) ProtocolSummaryReport(c *gin.Context) {
	var filter port.ProtocolFilter

	if v := c.Query("assembly_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   "invalid assembly_id",
			})
			return
		}
		filter.AssemblyID = &id
	}
	filter.Type = entity.ProtocolType(c.Query("type"))
	filter.Status = c.Query("status")

	workbook, err := h.reportService.ProtocolSummary(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to build protocol summary", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to build report",
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="protocols.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

// pathID parses the :id path parameter
func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid ID",
		})
		return 0, false
	}
	return id, true
}

// writeWorkflowError maps engine errors to HTTP statuses
func (h *Handlers) writeWorkflowError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domainwf.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domainwf.ErrInvalidTransition),
		errors.Is(err, domainwf.ErrConcurrentTransition):
		status = http.StatusConflict
	case errors.Is(err, domainwf.ErrUnknownProtocolType),
		errors.Is(err, domainwf.ErrInvalidStep):
		status = http.StatusBadRequest
	case errors.Is(err, domainwf.ErrMissingDecision),
		errors.Is(err, domainwf.ErrMissingCeremonyDate),
		errors.Is(err, domainwf.ErrActionFailed):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Workflow operation failed", "error", err)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func toProtocolResponse(protocol *entity.Protocol) ProtocolResponse {
	resp := ProtocolResponse{
		ID:               protocol.ID,
		Code:             protocol.Code,
		Type:             protocol.Type.String(),
		CurrentStep:      protocol.CurrentStep,
		Status:           protocol.Status,
		AssemblyID:       protocol.AssemblyID,
		RequesterID:      protocol.RequesterID,
		ApproverID:       protocol.ApproverID,
		FeeCents:         protocol.FeeCents,
		FeeNotes:         protocol.FeeNotes,
		ReceiptPath:      protocol.ReceiptPath,
		PaymentConfirmed: protocol.PaymentConfirmed,
		Feedback:         protocol.Feedback,
		CreatedAt:        protocol.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        protocol.UpdatedAt.Format(time.RFC3339),
	}

	if protocol.CeremonyDate != nil {
		s := protocol.CeremonyDate.Format("2006-01-02")
		resp.CeremonyDate = &s
	}
	if protocol.ApprovedAt != nil {
		s := protocol.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	if protocol.ArchivedAt != nil {
		s := protocol.ArchivedAt.Format(time.RFC3339)
		resp.ArchivedAt = &s
	}

	return resp
}
