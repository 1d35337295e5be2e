package service

import (
	"bytes"
	"fmt"

	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	ordersSheet     = "Orders"
	orderItemsSheet = "Items"
	exportTimeFmt   = "2006-01-02 15:04"
)

var (
	orderHeaders = []interface{}{
		"Order Number", "User ID", "Status", "Subtotal", "Discount", "Total",
		"Promo Code", "Shipping Address", "Phone", "Created At",
	}
	orderItemHeaders = []interface{}{
		"Order Number", "Product", "Quantity", "Unit Price", "Line Total",
	}
)

type OrderExportService interface {
	ExportOrders(filter repository.OrderExportFilter) ([]byte, error)
}

type orderExportService struct {
	orderRepo repository.OrderRepository
}

func NewOrderExportService(orderRepo repository.OrderRepository) OrderExportService {
	return &orderExportService{orderRepo: orderRepo}
}

// ExportOrders renders matching orders as an xlsx workbook with one sheet of
// orders and one of their items.
func (s *orderExportService) ExportOrders(filter repository.OrderExportFilter) ([]byte, error) {
	orders, err := s.orderRepo.FindForExport(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ordersSheet); err != nil {
		return nil, fmt.Errorf("failed to name orders sheet: %w", err)
	}
	if _, err := f.NewSheet(orderItemsSheet); err != nil {
		return nil, fmt.Errorf("failed to create items sheet: %w", err)
	}

	if err := f.SetSheetRow(ordersSheet, "A1", &orderHeaders); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(orderItemsSheet, "A1", &orderItemHeaders); err != nil {
		return nil, err
	}

	itemRow := 2
	for i, order := range orders {
		row := []interface{}{
			order.OrderNumber,
			order.UserID,
			string(order.Status),
			order.Subtotal.StringFixed(2),
			order.DiscountAmount.StringFixed(2),
			order.TotalAmount.StringFixed(2),
			order.PromoCode,
			order.ShippingAddress,
			order.Phone,
			order.CreatedAt.UTC().Format(exportTimeFmt),
		}
		if err := f.SetSheetRow(ordersSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}

		for _, item := range order.Items {
			line := []interface{}{
				order.OrderNumber,
				item.ProductName,
				item.Quantity,
				item.UnitPrice.StringFixed(2),
				item.LineTotal().StringFixed(2),
			}
			if err := f.SetSheetRow(orderItemsSheet, fmt.Sprintf("A%d", itemRow), &line); err != nil {
				return nil, err
			}
			itemRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("Orders exported", map[string]interface{}{
		"orders": len(orders),
		"items":  itemRow - 2,
		"bytes":  buf.Len(),
	})
	return buf.Bytes(), nil
}
