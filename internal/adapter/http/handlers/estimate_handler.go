package handlers

import (
	"errors"
	"net/http"

	request "arm_backoffice/internal/adapter/http/dto/request"
	response "arm_backoffice/internal/adapter/http/dto/response"
	"arm_backoffice/internal/domain/entities"
	"arm_backoffice/internal/usecase"
	"arm_backoffice/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidEstimatePayload = pkg.NewDomainErrorSimple("INVALID_ESTIMATE_INPUT", "Invalid estimate payload", http.StatusBadRequest)
)

// EstimateHandler handles HTTP requests for the estimate builder and its
// public approval surface.
type EstimateHandler struct {
	usecase usecase.IEstimateUseCase
}

func NewEstimateHandler(uc usecase.IEstimateUseCase) *EstimateHandler {
	return &EstimateHandler{usecase: uc}
}

// SaveEstimate creates a draft when no estimate_id is given and replaces the
// identified estimate otherwise. Totals are always recomputed server-side.
func (h *EstimateHandler) SaveEstimate(c *gin.Context) {
	var payload request.SaveEstimateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidEstimatePayload.HTTPStatus, errInvalidEstimatePayload.ToHTTPError())
		return
	}

	estimate, err := h.usecase.Save(c.Request.Context(), payload.ToCommand())
	if err != nil {
		appErr := mapEstimateError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	status := http.StatusOK
	if payload.EstimateID == "" {
		status = http.StatusCreated
	}
	c.JSON(status, response.FromEstimate(estimate))
}

// SendEstimate dispatches the public link to the customer and promotes DRAFT
// to SENT. Resending never changes the status.
func (h *EstimateHandler) SendEstimate(c *gin.Context) {
	estimate, err := h.usecase.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := mapEstimateError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromEstimate(estimate))
}

// MarkEstimateStatus is the operator override: APPROVED, DECLINED or EXPIRED
// from any state.
func (h *EstimateHandler) MarkEstimateStatus(c *gin.Context) {
	var payload request.MarkEstimateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidEstimatePayload.HTTPStatus, errInvalidEstimatePayload.ToHTTPError())
		return
	}

	estimate, err := h.usecase.MarkStatus(c.Request.Context(), c.Param("id"), entities.EstimateStatus(payload.Status))
	if err != nil {
		appErr := mapEstimateError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromEstimate(estimate))
}

func (h *EstimateHandler) GetEstimateByID(c *gin.Context) {
	estimate, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := mapEstimateError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromEstimate(estimate))
}

// GetEstimateByToken resolves the public-link token used by customers.
func (h *EstimateHandler) GetEstimateByToken(c *gin.Context) {
	estimate, err := h.usecase.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		appErr := mapEstimateError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromEstimate(estimate))
}

// SearchCustomers backs the estimate builder's customer picker.
func (h *EstimateHandler) SearchCustomers(c *gin.Context) {
	customers, err := h.usecase.SearchCustomers(c.Request.Context(), c.Query("q"))
	if err != nil {
		appErr := mapEstimateError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromCustomers(customers))
}

func mapEstimateError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidEstimateID), errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrInvalidStatus):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrCustomerRequired):
		return pkg.NewDomainErrorSimple("CUSTOMER_REQUIRED", "Select or create a customer", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrCustomerContactMissing):
		return pkg.NewDomainErrorSimple("CUSTOMER_CONTACT_MISSING", "Customer has no phone number on file", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrEstimateNotFound):
		return pkg.NewDomainErrorSimple("ESTIMATE_NOT_FOUND", "Estimate not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrCustomerNotFound):
		return pkg.NewDomainErrorSimple("CUSTOMER_NOT_FOUND", "Customer not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrNotifierNotConfigured):
		return pkg.NewDomainErrorSimple("NOTIFIER_NOT_CONFIGURED", "Notification service not configured", http.StatusServiceUnavailable)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
