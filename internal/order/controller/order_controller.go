package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"coffeeshop/internal/domain"
	"coffeeshop/internal/dto"
	apperrors "coffeeshop/internal/errors"
	"coffeeshop/internal/order/usecase"
)

type CustomerSessions interface {
	Open(ctx context.Context, customerID uint) (*usecase.Customer, error)
}

type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID uint) (*domain.Order, error)
}

type OrderController struct {
	customers CustomerSessions
	manager   StatusUpdater
	logger    *zap.Logger
}

func NewOrderController(customers CustomerSessions, manager StatusUpdater, logger *zap.Logger) *OrderController {
	return &OrderController{
		customers: customers,
		manager:   manager,
		logger:    logger,
	}
}

// PlaceOrder handles POST /api/order.
func (c *OrderController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validatePlaceOrderRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	customer, err := c.customers.Open(r.Context(), req.UserID)
	if err != nil {
		c.handleUseCaseError(w, traceID, 0, err, logger)
		return
	}

	order, err := customer.PlaceOrder(r.Context(), req.Product, req.Variation)
	if err != nil {
		c.handleUseCaseError(w, traceID, 0, err, logger)
		return
	}

	c.writeOrder(w, traceID, http.StatusCreated, order)
}

// ListOrders handles GET /api/orders?userId=.
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	userID, err := parseID(r.URL.Query().Get("userId"))
	if err != nil {
		logger.Warn("invalid userId in query", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid userId", apperrors.ValidationDetail{
			Field:   "userId",
			Message: "userId must be a positive integer",
		})
		return
	}

	customer, err := c.customers.Open(r.Context(), userID)
	if err != nil {
		c.handleUseCaseError(w, traceID, 0, err, logger)
		return
	}

	orders, err := customer.ViewOrderDetails(r.Context())
	if err != nil {
		c.handleUseCaseError(w, traceID, 0, err, logger)
		return
	}

	resp := dto.OrdersResponse{
		TraceID:   traceID,
		Orders:    make([]dto.OrderDTO, 0, len(orders)),
		Timestamp: time.Now().UTC(),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrderDTO(o))
	}

	c.writeJSON(w, http.StatusOK, resp)
}

// CancelOrder handles POST /api/order/{orderId}/cancel.
func (c *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.orderIDParam(w, r, traceID, logger)
	if !ok {
		return
	}

	var req dto.CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.UserID == 0 {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "userId",
			Message: "userId is required",
		})
		return
	}

	customer, err := c.customers.Open(r.Context(), req.UserID)
	if err != nil {
		c.handleUseCaseError(w, traceID, orderID, err, logger)
		return
	}

	order, err := customer.CancelOrder(r.Context(), orderID)
	if err != nil {
		c.handleUseCaseError(w, traceID, orderID, err, logger)
		return
	}

	c.writeOrder(w, traceID, http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/order/status/{orderId}.
func (c *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.orderIDParam(w, r, traceID, logger)
	if !ok {
		return
	}

	order, err := c.manager.UpdateOrderStatus(r.Context(), orderID)
	if err != nil {
		c.handleUseCaseError(w, traceID, orderID, err, logger)
		return
	}

	c.writeOrder(w, traceID, http.StatusOK, order)
}

func (c *OrderController) orderIDParam(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) (uint, bool) {
	orderID, err := parseID(chi.URLParam(r, "orderId"))
	if err != nil {
		logger.Warn("invalid orderId in path", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return orderID, true
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, strconv.ErrRange
	}
	return uint(id), nil
}

func validatePlaceOrderRequest(req dto.PlaceOrderRequest) error {
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(req.Product) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "product",
			Message: "product is required",
		})
	}

	if strings.TrimSpace(req.Variation) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "variation",
			Message: "variation is required",
		})
	}

	if req.UserID == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "userId",
			Message: "userId is required",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, traceID string, orderID uint, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Uint("orderId", orderID), zap.Error(err))
	c.writeErrorResponse(w, traceID, orderID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *OrderController) writeOrder(w http.ResponseWriter, traceID string, statusCode int, order *domain.Order) {
	c.writeJSON(w, statusCode, dto.OrderResponse{
		TraceID:   traceID,
		Order:     dto.NewOrderDTO(*order),
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) writeErrorResponse(w http.ResponseWriter, traceID string, orderID uint, statusCode int, code string, message string) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
