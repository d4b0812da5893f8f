package handler

import (
	"context"
	"time"

	paymentapp "github.com/bettstax/backend/internal/application/payment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Record godoc
// @ID           recordPayment
// @Summary      Record a payment
// @Description  Record a payment against a filing. Overpayment is rejected.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body paymentapp.RecordPaymentRequest true "Payment record request"
// @Success      201 {object} APIResponse[paymentapp.PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req paymentapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	payment, err := h.paymentService.Record(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetByID godoc
// @ID           getPaymentById
// @Summary      Get payment by ID
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[paymentapp.PaymentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// GetByNumber godoc
// @ID           getPaymentByNumber
// @Summary      Get payment by number
// @Tags         payments
// @Produce      json
// @Param        number path string true "Payment number"
// @Success      200 {object} APIResponse[paymentapp.PaymentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/number/{number} [get]
func (h *PaymentHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Payment number is required")
		return
	}

	payment, err := h.paymentService.GetByNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        method query string false "Filter by payment method"
// @Param        client_id query string false "Filter by client" format(uuid)
// @Param        filing_id query string false "Filter by filing" format(uuid)
// @Success      200 {object} APIResponse[[]paymentapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter paymentapp.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// ListByFiling godoc
// @ID           listPaymentsByFiling
// @Summary      List a filing's payments
// @Tags         payments
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Success      200 {object} APIResponse[[]paymentapp.PaymentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/payments [get]
func (h *PaymentHandler) ListByFiling(c *gin.Context) {
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

	payments, err := h.paymentService.ListByFiling(c.Request.Context(), tenantID, filingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// Confirm godoc
// @ID           confirmPayment
// @Summary      Confirm a payment
// @Description  Confirm a pending payment, settling the filing when fully paid
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[paymentapp.PaymentResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	payment, err := h.paymentService.Confirm(c.Request.Context(), tenantID, paymentID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Fail godoc
// @ID           failPayment
// @Summary      Mark a payment failed
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body paymentapp.FailPaymentRequest true "Failure reason"
// @Success      200 {object} APIResponse[paymentapp.PaymentResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/fail [post]
func (h *PaymentHandler) Fail(c *gin.Context) {
	h.reasonTransition(c, func(ctx context.Context, tenantID, paymentID uuid.UUID, reason string) (*paymentapp.PaymentResponse, error) {
		return h.paymentService.Fail(ctx, tenantID, paymentID, reason)
	})
}

// Refund godoc
// @ID           refundPayment
// @Summary      Refund a payment
// @Description  Refund a confirmed payment, reopening the filing balance
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body paymentapp.RefundPaymentRequest true "Refund reason"
// @Success      200 {object} APIResponse[paymentapp.PaymentResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	h.reasonTransition(c, func(ctx context.Context, tenantID, paymentID uuid.UUID, reason string) (*paymentapp.PaymentResponse, error) {
		return h.paymentService.Refund(ctx, tenantID, paymentID, reason)
	})
}

// AttachReceipt godoc
// @ID           attachPaymentReceipt
// @Summary      Attach a receipt document
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body paymentapp.AttachReceiptRequest true "Receipt document"
// @Success      200 {object} APIResponse[paymentapp.PaymentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/receipt [put]
func (h *PaymentHandler) AttachReceipt(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req paymentapp.AttachReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.AttachReceipt(c.Request.Context(), tenantID, paymentID, req.DocumentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// OutstandingBalance godoc
// @ID           filingOutstandingBalance
// @Summary      Outstanding balance of a filing
// @Description  Total due, confirmed payments and remaining balance for a filing
// @Tags         payments
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Success      200 {object} APIResponse[paymentapp.FilingBalanceResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /filings/{id}/balance [get]
func (h *PaymentHandler) OutstandingBalance(c *gin.Context) {
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

	balance, err := h.paymentService.OutstandingBalance(c.Request.Context(), tenantID, filingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// TotalsByMethod godoc
// @ID           paymentTotalsByMethod
// @Summary      Payment totals by method
// @Description  Confirmed payment totals grouped by method for a date range
// @Tags         payments
// @Produce      json
// @Param        from query string false "Range start (YYYY-MM-DD)" format(date)
// @Param        to query string false "Range end (YYYY-MM-DD)" format(date)
// @Success      200 {object} APIResponse[[]paymentapp.MethodTotalResponse]
// @Security     BearerAuth
// @Router       /payments/totals [get]
func (h *PaymentHandler) TotalsByMethod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, -1, 0)
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

	totals, err := h.paymentService.TotalsByMethod(c.Request.Context(), tenantID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, totals)
}

// Delete godoc
// @ID           deletePayment
// @Summary      Delete a payment
// @Description  Delete a pending or failed payment record
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), tenantID, paymentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

type paymentReasonOp func(ctx context.Context, tenantID, paymentID uuid.UUID, reason string) (*paymentapp.PaymentResponse, error)

func (h *PaymentHandler) reasonTransition(c *gin.Context, op paymentReasonOp) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req paymentapp.FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := op(c.Request.Context(), tenantID, paymentID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}
