package handler

import (
	"context"
	"time"

	filingapp "github.com/bettstax/backend/internal/application/filing"
	"github.com/bettstax/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FilingHandler handles tax filing API endpoints
type FilingHandler struct {
	BaseHandler
	filingService *filingapp.FilingService
}

// NewFilingHandler creates a new FilingHandler
func NewFilingHandler(filingService *filingapp.FilingService) *FilingHandler {
	return &FilingHandler{
		filingService: filingService,
	}
}

// FlagForReviewRequest represents a request to flag a filing for supervisor review
// @Description Request body for flagging a filing
type FlagForReviewRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// Create godoc
// @ID           createFiling
// @Summary      Create a filing
// @Description  Create a draft tax filing. Due date and tax due are computed when omitted.
// @Tags         filings
// @Accept       json
// @Produce      json
// @Param        request body filingapp.CreateFilingRequest true "Filing creation request"
// @Success      201 {object} APIResponse[filingapp.FilingResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings [post]
func (h *FilingHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req filingapp.CreateFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	filing, err := h.filingService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, filing)
}

// GetByID godoc
// @ID           getFilingById
// @Summary      Get filing by ID
// @Tags         filings
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id} [get]
func (h *FilingHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	filing, err := h.filingService.GetByID(c.Request.Context(), tenantID, filingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if !h.filingVisible(c, filing.ClientID) {
		return
	}

	h.Success(c, filing)
}

// GetByNumber godoc
// @ID           getFilingByNumber
// @Summary      Get filing by number
// @Tags         filings
// @Produce      json
// @Param        number path string true "Filing number"
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/number/{number} [get]
func (h *FilingHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Filing number is required")
		return
	}

	filing, err := h.filingService.GetByNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if !h.filingVisible(c, filing.ClientID) {
		return
	}

	h.Success(c, filing)
}

// List godoc
// @ID           listFilings
// @Summary      List filings
// @Description  List filings with filtering and pagination. Client portal users only see their own filings.
// @Tags         filings
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        search query string false "Search by filing number or client name"
// @Param        status query string false "Filter by status"
// @Param        tax_type query string false "Filter by tax type"
// @Param        client_id query string false "Filter by client" format(uuid)
// @Param        due_from query string false "Due date range start" format(date)
// @Param        due_to query string false "Due date range end" format(date)
// @Success      200 {object} APIResponse[[]filingapp.FilingListResponse]
// @Security     BearerAuth
// @Router       /filings [get]
func (h *FilingHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter filingapp.FilingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Portal users are pinned to their own client regardless of the filter
	if middleware.GetJWTRole(c) == middleware.RoleClient {
		clientID, ok := portalClientID(c)
		if !ok {
			h.Forbidden(c, "No client linked to this account")
			return
		}
		filter.ClientID = clientID.String()
	}

	filings, total, err := h.filingService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, filings, total, filter.Page, filter.PageSize)
}

// ListByClient godoc
// @ID           listFilingsByClient
// @Summary      List a client's filings
// @Tags         filings
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        status query string false "Filter by status"
// @Param        tax_type query string false "Filter by tax type"
// @Success      200 {object} APIResponse[[]filingapp.FilingListResponse]
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/filings [get]
func (h *FilingHandler) ListByClient(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	if !h.filingVisible(c, clientID) {
		return
	}

	var filter filingapp.FilingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filings, err := h.filingService.ListByClient(c.Request.Context(), tenantID, clientID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, filings)
}

// Update godoc
// @ID           updateFiling
// @Summary      Update a filing
// @Description  Update amounts on a draft or rejected filing
// @Tags         filings
// @Accept       json
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Param        request body filingapp.UpdateFilingRequest true "Filing update request"
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id} [put]
func (h *FilingHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	var req filingapp.UpdateFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filing, err := h.filingService.Update(c.Request.Context(), tenantID, filingID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, filing)
}

// Submit godoc
// @ID           submitFiling
// @Summary      Submit a filing
// @Description  Submit a draft filing for review
// @Tags         filings
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/submit [post]
func (h *FilingHandler) Submit(c *gin.Context) {
	h.actorTransition(c, h.filingService.Submit)
}

// StartReview godoc
// @ID           startFilingReview
// @Summary      Start reviewing a filing
// @Tags         filings
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/review [post]
func (h *FilingHandler) StartReview(c *gin.Context) {
	h.actorTransition(c, h.filingService.StartReview)
}

// FlagForReview godoc
// @ID           flagFilingForReview
// @Summary      Flag a filing for review
// @Description  Flag a submitted filing for supervisor attention without changing its status
// @Tags         filings
// @Accept       json
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Param        request body FlagForReviewRequest true "Flag reason"
// @Success      200 {object} SuccessResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/flag [post]
func (h *FilingHandler) FlagForReview(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	var req FlagForReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.filingService.FlagForReview(c.Request.Context(), tenantID, filingID, req.Reason); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Filing flagged for review"})
}

// Approve godoc
// @ID           approveFiling
// @Summary      Approve a filing
// @Tags         filings
// @Accept       json
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Param        request body filingapp.ApproveFilingRequest true "Reviewer notes"
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/approve [post]
func (h *FilingHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req filingapp.ApproveFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filing, err := h.filingService.Approve(c.Request.Context(), tenantID, filingID, reviewerID, req.Notes)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, filing)
}

// Reject godoc
// @ID           rejectFiling
// @Summary      Reject a filing
// @Description  Send a filing back to the preparer with a reason
// @Tags         filings
// @Accept       json
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Param        request body filingapp.RejectFilingRequest true "Rejection reason"
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/reject [post]
func (h *FilingHandler) Reject(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req filingapp.RejectFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filing, err := h.filingService.Reject(c.Request.Context(), tenantID, filingID, reviewerID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, filing)
}

// MarkFiled godoc
// @ID           markFilingFiled
// @Summary      Mark a filing as filed
// @Description  Record the NRA submission reference for an approved filing
// @Tags         filings
// @Accept       json
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Param        request body filingapp.MarkFiledRequest true "NRA reference"
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/file [post]
func (h *FilingHandler) MarkFiled(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	var req filingapp.MarkFiledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filing, err := h.filingService.MarkFiled(c.Request.Context(), tenantID, filingID, req.Reference)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, filing)
}

// Cancel godoc
// @ID           cancelFiling
// @Summary      Cancel a filing
// @Tags         filings
// @Accept       json
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Param        request body filingapp.CancelFilingRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/cancel [post]
func (h *FilingHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	var req filingapp.CancelFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filing, err := h.filingService.Cancel(c.Request.Context(), tenantID, filingID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, filing)
}

// RecalculateCharges godoc
// @ID           recalculateFilingCharges
// @Summary      Recalculate late charges
// @Description  Recompute penalty and interest for an overdue filing as of today
// @Tags         filings
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/recalculate [post]
func (h *FilingHandler) RecalculateCharges(c *gin.Context) {
	h.plainTransition(c, h.filingService.RecalculateCharges)
}

// MarkOverdue godoc
// @ID           markFilingOverdue
// @Summary      Mark a filing overdue
// @Tags         filings
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Success      200 {object} APIResponse[filingapp.FilingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/overdue [post]
func (h *FilingHandler) MarkOverdue(c *gin.Context) {
	h.plainTransition(c, h.filingService.MarkOverdue)
}

// UpcomingDeadlines godoc
// @ID           upcomingFilingDeadlines
// @Summary      Upcoming deadlines
// @Description  List filings due within the next N days (default 30)
// @Tags         filings
// @Produce      json
// @Param        days query int false "Horizon in days" default(30)
// @Success      200 {object} APIResponse[[]filingapp.FilingListResponse]
// @Security     BearerAuth
// @Router       /filings/deadlines [get]
func (h *FilingHandler) UpcomingDeadlines(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	days := 30
	if v := c.Query("days"); v != "" {
		parsed, err := parsePositiveInt(v)
		if err != nil {
			h.BadRequest(c, "Invalid days value")
			return
		}
		days = parsed
	}

	filings, err := h.filingService.UpcomingDeadlines(c.Request.Context(), tenantID, days)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, filings)
}

// Stats godoc
// @ID           filingStats
// @Summary      Filing statistics
// @Description  Aggregate filing counts and liabilities for a date range
// @Tags         filings
// @Produce      json
// @Param        from query string false "Range start (YYYY-MM-DD)" format(date)
// @Param        to query string false "Range end (YYYY-MM-DD)" format(date)
// @Success      200 {object} APIResponse[filingapp.FilingStatsResponse]
// @Security     BearerAuth
// @Router       /filings/stats [get]
func (h *FilingHandler) Stats(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, -12, 0)
	to := now
	if v := c.Query("from"); v != "" {
		parsed, err := parseDateParam(v)
		if err != nil {
			h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := parseDateParam(v)
		if err != nil {
			h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		to = parsed
	}

	stats, err := h.filingService.Stats(c.Request.Context(), tenantID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// Delete godoc
// @ID           deleteFiling
// @Summary      Delete a filing
// @Description  Delete a draft or cancelled filing
// @Tags         filings
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id} [delete]
func (h *FilingHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	if err := h.filingService.Delete(c.Request.Context(), tenantID, filingID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// filingVisible enforces the client-portal scope: client users may only
// touch filings belonging to their own client record.
func (h *FilingHandler) filingVisible(c *gin.Context, clientID uuid.UUID) bool {
	if middleware.GetJWTRole(c) != middleware.RoleClient {
		return true
	}
	own, ok := portalClientID(c)
	if !ok || own != clientID {
		h.Forbidden(c, "Access to this client's filings is not allowed")
		return false
	}
	return true
}

func (h *FilingHandler) actorTransition(c *gin.Context, op func(ctx context.Context, tenantID, filingID, userID uuid.UUID) (*filingapp.FilingResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	filing, err := op(c.Request.Context(), tenantID, filingID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, filing)
}

func (h *FilingHandler) plainTransition(c *gin.Context, op func(ctx context.Context, tenantID, filingID uuid.UUID) (*filingapp.FilingResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	filing, err := op(c.Request.Context(), tenantID, filingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, filing)
}
