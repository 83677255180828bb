package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finadmin/tesoreria/internal/application/service"
	"github.com/finadmin/tesoreria/internal/domain/budget"
	"github.com/finadmin/tesoreria/internal/domain/entity"
	"github.com/finadmin/tesoreria/internal/domain/money"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	packageService service.PackageService
	ledgerService  service.LedgerService
	folioService   service.FolioService
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	packageService service.PackageService,
	ledgerService service.LedgerService,
	folioService service.FolioService,
	logger Logger,
) *Handlers {
	return &Handlers{
		packageService: packageService,
		ledgerService:  ledgerService,
		folioService:   folioService,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BudgetExceededResponse is the 422 payload when a transition is blocked by
// budget exceedance. It itemizes the overages and tells the caller what to
// do next.
type BudgetExceededResponse struct {
	Error      string         `json:"error"`
	Verdict    budget.Verdict `json:"verdict"`
	NextAction string         `json:"next_action"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ToggleAuthorizationRequest carries one authorize/reject decision
type ToggleAuthorizationRequest struct {
	Decision *bool `json:"decision" binding:"required"`
}

// RequestFolioRequest identifies who is asking for the override
type RequestFolioRequest struct {
	RequestedBy string `json:"requested_by" binding:"required"`
}

// ResolveFolioRequest carries the external approver's decision
type ResolveFolioRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// SendRequest optionally carries the folio code unlocking a blocked send
type SendRequest struct {
	FolioCode string `json:"folio_code"`
}

// ScheduleRequest carries the payment schedule selection
type ScheduleRequest struct {
	CompanyID     int64 `json:"company_id" binding:"required"`
	BankAccountID int64 `json:"bank_account_id" binding:"required"`
}

// ListPackagesRequest represents query parameters for listing packages
type ListPackagesRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
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

// ListPackages handles GET /api/v1/packages
func (h *Handlers) ListPackages(c *gin.Context) {
	var req ListPackagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	packages, err := h.packageService.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, "failed to list packages", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    packages,
	})
}

// ListCompanies handles GET /api/v1/companies
func (h *Handlers) ListCompanies(c *gin.Context) {
	companies, err := h.packageService.ListCompanies(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list companies", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    companies,
	})
}

// GetPackage handles GET /api/v1/packages/:id
func (h *Handlers) GetPackage(c *gin.Context) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}

	detail, err := h.packageService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to get package", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    detail,
	})
}

// GetVerdict handles GET /api/v1/packages/:id/verdict
func (h *Handlers) GetVerdict(c *gin.Context) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}

	verdict, err := h.packageService.ComputeVerdict(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to compute verdict", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    verdict,
	})
}

// GetTimeline handles GET /api/v1/packages/:id/timeline
func (h *Handlers) GetTimeline(c *gin.Context) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}

	entries, err := h.packageService.Timeline(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to get timeline", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    entries,
	})
}

// DeactivatePackage handles DELETE /api/v1/packages/:id
func (h *Handlers) DeactivatePackage(c *gin.Context) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}

	if err := h.packageService.Deactivate(c.Request.Context(), id); err != nil {
		h.fail(c, "failed to deactivate package", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ToggleAuthorization handles POST /api/v1/packages/:id/line-items/:itemID/authorization
func (h *Handlers) ToggleAuthorization(c *gin.Context) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "itemID", "invalid line item ID")
	if !ok {
		return
	}

	var req ToggleAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "decision is required")
		return
	}

	pkg, err := h.ledgerService.ToggleAuthorization(c.Request.Context(), id, itemID, *req.Decision)
	if err != nil {
		h.fail(c, "failed to toggle authorization", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    pkg,
	})
}

// RecordPayment handles POST /api/v1/packages/:id/line-items/:itemID/payment.
// The body is decoded as a raw document on purpose: upstream systems deliver
// the amount as a number, a numeric string, or a wrapped decimal document,
// and money.NormalizeField canonicalizes all of them.
func (h *Handlers) RecordPayment(c *gin.Context) {
	if _, ok := h.packageID(c); !ok {
		return
	}
	itemID, ok := h.pathID(c, "itemID", "invalid line item ID")
	if !ok {
		return
	}

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}
	if _, present := payload["amount"]; !present {
		h.badRequest(c, "amount is required")
		return
	}
	amount := money.NormalizeField(payload, "amount")
	description, _ := payload["description"].(string)

	if err := h.ledgerService.RecordPayment(c.Request.Context(), itemID, amount, description); err != nil {
		h.fail(c, "failed to record payment", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// RequestFolio handles POST /api/v1/packages/:id/folios
func (h *Handlers) RequestFolio(c *gin.Context) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}

	var req RequestFolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "requested_by is required")
		return
	}

	folio, err := h.packageService.RequestFolio(c.Request.Context(), id, req.RequestedBy)
	if err != nil {
		h.fail(c, "failed to request folio", err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    folio,
	})
}

// ListFolios handles GET /api/v1/packages/:id/folios
func (h *Handlers) ListFolios(c *gin.Context) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}

	folios, err := h.folioService.HistoryForPackage(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to list folios", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    folios,
	})
}

// ResolveFolio handles POST /api/v1/folios/:code/resolution
func (h *Handlers) ResolveFolio(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.badRequest(c, "folio code is required")
		return
	}

	var req ResolveFolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "approved is required")
		return
	}

	folio, err := h.folioService.Resolve(c.Request.Context(), code, *req.Approved)
	if err != nil {
		h.fail(c, "failed to resolve folio", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    folio,
	})
}

// SendToTreasury handles POST /api/v1/packages/:id/send
func (h *Handlers) SendToTreasury(c *gin.Context) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}

	var req SendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, "invalid request body")
			return
		}
	}

	pkg, err := h.packageService.SendToTreasury(c.Request.Context(), id, req.FolioCode)
	if err != nil {
		h.fail(c, "failed to send package to treasury", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    pkg,
	})
}

// SchedulePayment handles POST /api/v1/packages/:id/schedule
func (h *Handlers) SchedulePayment(c *gin.Context) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "company_id and bank_account_id are required")
		return
	}

	pkg, err := h.packageService.SchedulePayment(c.Request.Context(), id, req.CompanyID, req.BankAccountID)
	if err != nil {
		h.fail(c, "failed to schedule payment", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    pkg,
	})
}

// GeneratePayments handles POST /api/v1/packages/:id/generate
func (h *Handlers) GeneratePayments(c *gin.Context) {
	h.transition(c, h.packageService.GeneratePayments, "failed to generate payments")
}

// SendToFunding handles POST /api/v1/packages/:id/fund-request
func (h *Handlers) SendToFunding(c *gin.Context) {
	h.transition(c, h.packageService.SendToFunding, "failed to send package to funding")
}

// Fund handles POST /api/v1/packages/:id/fund
func (h *Handlers) Fund(c *gin.Context) {
	h.transition(c, h.packageService.Fund, "failed to fund package")
}

// MarkPaid handles POST /api/v1/packages/:id/pay
func (h *Handlers) MarkPaid(c *gin.Context) {
	h.transition(c, h.packageService.MarkPaid, "failed to mark package paid")
}

func (h *Handlers) transition(c *gin.Context, fn func(ctx context.Context, packageID int64) (*entity.Package, error), failMsg string) {
	id, ok := h.packageID(c)
	if !ok {
		return
	}

	pkg, err := fn(c.Request.Context(), id)
	if err != nil {
		h.fail(c, failMsg, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    pkg,
	})
}

func (h *Handlers) packageID(c *gin.Context) (int64, bool) {
	return h.pathID(c, "id", "invalid package ID")
}

func (h *Handlers) pathID(c *gin.Context, param, msg string) (int64, bool) {
	idStr := c.Param(param)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, msg)
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// fail maps a service error to its HTTP status. Budget exceedance keeps its
// itemized verdict so the caller knows which concepts overran and that a
// folio request is the next step.
func (h *Handlers) fail(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "error", err, "path", c.Request.URL.Path)

	var exceeded *budget.ExceededError
	if errors.As(err, &exceeded) {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   err.Error(),
			Data: BudgetExceededResponse{
				Error:      exceeded.Verdict.Reason(),
				Verdict:    exceeded.Verdict,
				NextAction: "request an authorization folio and retry the send with its code once authorized",
			},
		})
		return
	}

	c.JSON(statusFor(err), Response{
		Success: false,
		Error:   err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidState),
		errors.Is(err, entity.ErrFolioRejected),
		errors.Is(err, entity.ErrAlreadyRedeemed),
		errors.Is(err, entity.ErrDeactivationBlocked):
		return http.StatusConflict
	case errors.Is(err, entity.ErrBudgetExceeded),
		errors.Is(err, entity.ErrFolioRequired),
		errors.Is(err, entity.ErrFolioMismatch),
		errors.Is(err, entity.ErrFolioNotAuthorized):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrPaymentDateMissing),
		errors.Is(err, entity.ErrBankSelectionMissing),
		errors.Is(err, entity.ErrPaidExceedsToPay):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
