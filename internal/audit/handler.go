package audit

import (
	"fmt"

	"stocktrack-backend/internal/database"
	"stocktrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID           uint               `json:"id"`
	CreatedAt    string             `json:"created_at"`
	Action       models.AuditAction `json:"action"`
	ProductID    uint               `json:"product_id"`
	SKU          string             `json:"sku"`
	Name         string             `json:"name"`
	PrevQuantity int                `json:"prev_quantity"`
	NewQuantity  int                `json:"new_quantity"`
	Delta        int                `json:"delta"`
	Actor        string             `json:"actor"`
	IP           string             `json:"ip,omitempty"`
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// GET /api/audit-logs?product_id=1&limit=50
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := defaultLimit
		if limitStr := c.Query("limit"); limitStr != "" {
			if _, err := fmt.Sscan(limitStr, &limit); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be an integer")
			}
		}
		if limit < 1 {
			limit = 1
		}
		if limit > maxLimit {
			limit = maxLimit
		}

		dbq := database.DB.Model(&models.AuditLog{})

		if pidStr := c.Query("product_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "product_id must be a positive integer")
			}
			dbq = dbq.Where("product_id = ?", pid)
		}

		var logs []models.AuditLog
		if err := dbq.Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, entry := range logs {
			resp = append(resp, AuditLogResponse{
				ID:           entry.ID,
				CreatedAt:    entry.CreatedAt.Format("2006-01-02 15:04:05"),
				Action:       entry.Action,
				ProductID:    entry.ProductID,
				SKU:          entry.SKU,
				Name:         entry.Name,
				PrevQuantity: entry.PrevQuantity,
				NewQuantity:  entry.NewQuantity,
				Delta:        entry.Delta,
				Actor:        entry.Actor,
				IP:           entry.IP,
			})
		}

		return c.JSON(resp)
	}
}
