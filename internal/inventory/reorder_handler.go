package inventory

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"stocktrack-backend/internal/database"
	"stocktrack-backend/internal/models"
	"stocktrack-backend/internal/reorder"

	"github.com/gofiber/fiber/v2"
)

type ReorderItemResponse struct {
	ID             uint    `json:"id"`
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Supplier       string  `json:"supplier"`
	Quantity       int     `json:"quantity"`
	LeadTimeDays   int     `json:"lead_time_days"`
	AvgDailyDemand float64 `json:"avg_daily_demand"`
	SafetyStock    int     `json:"safety_stock"`

	reorder.Fields
}

func projectionRows(c *fiber.Ctx) ([]reorder.Row, error) {
	filter, ok := reorder.ParseFilter(c.Query("filter"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "filter must be one of: all, needs_ordering, attention")
	}
	order, ok := reorder.ParseSort(c.Query("sort"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unknown sort order")
	}

	var products []models.Product
	if err := database.DB.Where("is_active = ?", true).Find(&products).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
	}

	return reorder.Project(products, filter, order), nil
}

// GET /api/reorder?filter=needs_ordering&sort=suggested_desc (both roles)
func ReorderListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := projectionRows(c)
		if err != nil {
			return err
		}

		res := make([]ReorderItemResponse, 0, len(rows))
		for _, row := range rows {
			p := row.Product
			category := p.Category
			if category == "" {
				category = "Uncategorized"
			}
			supplier := p.Supplier
			if supplier == "" {
				supplier = "—"
			}
			res = append(res, ReorderItemResponse{
				ID:             p.ID,
				SKU:            p.SKU,
				Name:           p.Name,
				Category:       category,
				Supplier:       supplier,
				Quantity:       p.Quantity,
				LeadTimeDays:   p.LeadTimeDays,
				AvgDailyDemand: p.AvgDailyDemand,
				SafetyStock:    p.SafetyStock,
				Fields:         row.Fields,
			})
		}
		return c.JSON(res)
	}
}

// GET /api/reorder.csv (both roles)
func ReorderCSVHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := projectionRows(c)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)

		_ = w.Write([]string{
			"sku", "name", "category", "supplier",
			"quantity", "lead_time_days", "avg_daily_demand", "safety_stock",
			"reorder_point", "status", "target_stock", "suggested_reorder", "below_by",
		})

		for _, row := range rows {
			p := row.Product
			_ = w.Write([]string{
				p.SKU,
				p.Name,
				p.Category,
				p.Supplier,
				strconv.Itoa(p.Quantity),
				strconv.Itoa(p.LeadTimeDays),
				strconv.FormatFloat(p.AvgDailyDemand, 'f', -1, 64),
				strconv.Itoa(p.SafetyStock),
				strconv.Itoa(row.ReorderPoint),
				string(row.Status),
				strconv.Itoa(row.TargetStock),
				strconv.Itoa(row.SuggestedReorder),
				strconv.Itoa(row.BelowBy),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build CSV")
		}

		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="reorder_list.csv"`)
		return c.Send(buf.Bytes())
	}
}
