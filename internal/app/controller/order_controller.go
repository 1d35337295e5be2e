package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	apperrors "github.com/rhinoeg/rhino-backend/internal/errors"
	"github.com/rhinoeg/rhino-backend/internal/middleware"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportDateFmt   = "2006-01-02"
)

type OrderController struct {
	orderService  service.OrderService
	exportService service.OrderExportService
}

func NewOrderController(orderService service.OrderService, exportService service.OrderExportService) *OrderController {
	return &OrderController{
		orderService:  orderService,
		exportService: exportService,
	}
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	Phone           string `json:"phone"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// Checkout turns the cart into an order
// POST /api/v1/orders/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orderService.Checkout(userID, service.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		Phone:           req.Phone,
	})
	if err != nil {
		respondError(c, err, "checkout")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Checkout completed", map[string]interface{}{
		"user_id":      userID,
		"order_number": order.OrderNumber,
	})
	c.JSON(http.StatusCreated, gin.H{"order": orderBody(order)})
}

// GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		respondError(c, err, "list orders")
		return
	}

	bodies := make([]gin.H, 0, len(orders))
	for i := range orders {
		bodies = append(bodies, orderBody(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": bodies, "count": len(bodies)})
}

// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, orderID)
	if err != nil {
		respondError(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": orderBody(order)})
}

// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.CancelOrder(userID, orderID)
	if err != nil {
		respondError(c, err, "cancel order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": orderBody(order)})
}

// UpdateStatus moves an order along its lifecycle
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(orderID, req.Status)
	if err != nil {
		respondError(c, err, "update order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": orderBody(order)})
}

// ExportOrders downloads orders as an xlsx workbook
// GET /api/v1/admin/orders/export?status=&from=2026-01-01&to=2026-02-01
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	filter := repository.OrderExportFilter{
		Status: model.OrderStatus(c.Query("status")),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown order status")
		return
	}

	var err error
	if filter.From, err = queryDate(c, "from"); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "from must be YYYY-MM-DD")
		return
	}
	if filter.To, err = queryDate(c, "to"); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "to must be YYYY-MM-DD")
		return
	}

	data, err := ctrl.exportService.ExportOrders(filter)
	if err != nil {
		respondError(c, err, "export orders")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format(exportDateFmt))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// queryDate returns the zero time when key is absent
func queryDate(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(exportDateFmt, raw)
}
