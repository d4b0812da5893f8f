package handler

import (
	taxcalcapp "github.com/bettstax/backend/internal/application/taxcalc"
	"github.com/gin-gonic/gin"
)

// CalculatorHandler handles tax calculator API endpoints
type CalculatorHandler struct {
	BaseHandler
	calculatorService *taxcalcapp.CalculatorService
}

// NewCalculatorHandler creates a new CalculatorHandler
func NewCalculatorHandler(calculatorService *taxcalcapp.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{
		calculatorService: calculatorService,
	}
}

// CalculateLiability godoc
// @ID           calculateLiability
// @Summary      Calculate a tax liability
// @Description  Compute the tax due for an amount under Finance Act 2025 rates
// @Tags         calculator
// @Accept       json
// @Produce      json
// @Param        request body taxcalcapp.CalculateLiabilityRequest true "Liability calculation request"
// @Success      200 {object} APIResponse[taxcalcapp.LiabilityResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /calculator/liability [post]
func (h *CalculatorHandler) CalculateLiability(c *gin.Context) {
	var req taxcalcapp.CalculateLiabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.calculatorService.CalculateLiability(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// CalculateComprehensive godoc
// @ID           calculateComprehensive
// @Summary      Comprehensive calculation
// @Description  Compute liability with a full band-by-band breakdown and the filing due date
// @Tags         calculator
// @Accept       json
// @Produce      json
// @Param        request body taxcalcapp.CalculateComprehensiveRequest true "Comprehensive calculation request"
// @Success      200 {object} APIResponse[taxcalcapp.ComprehensiveResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /calculator/comprehensive [post]
func (h *CalculatorHandler) CalculateComprehensive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req taxcalcapp.CalculateComprehensiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.calculatorService.CalculateComprehensive(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// CalculateLateCharges godoc
// @ID           calculateLateCharges
// @Summary      Calculate late charges
// @Description  Compute penalty and interest for a late payment
// @Tags         calculator
// @Accept       json
// @Produce      json
// @Param        request body taxcalcapp.LateChargesRequest true "Late charges request"
// @Success      200 {object} APIResponse[taxcalcapp.LateChargesResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /calculator/late-charges [post]
func (h *CalculatorHandler) CalculateLateCharges(c *gin.Context) {
	var req taxcalcapp.LateChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.calculatorService.CalculateLateCharges(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RateTables godoc
// @ID           calculatorRateTables
// @Summary      Current rate tables
// @Description  PAYE and corporate brackets, GST rate and late charge rates
// @Tags         calculator
// @Produce      json
// @Success      200 {object} APIResponse[taxcalcapp.RateTablesResponse]
// @Security     BearerAuth
// @Router       /calculator/rates [get]
func (h *CalculatorHandler) RateTables(c *gin.Context) {
	h.Success(c, h.calculatorService.RateTables())
}

// WithholdingCategories godoc
// @ID           withholdingCategories
// @Summary      Withholding categories
// @Description  Withholding tax categories with resident and non-resident rates
// @Tags         calculator
// @Produce      json
// @Success      200 {object} APIResponse[[]taxcalcapp.WithholdingCategoryResponse]
// @Security     BearerAuth
// @Router       /calculator/withholding-categories [get]
func (h *CalculatorHandler) WithholdingCategories(c *gin.Context) {
	h.Success(c, h.calculatorService.WithholdingCategories())
}
