package inventory

import (
	"errors"
	"strings"

	"stocktrack-backend/internal/audit"
	"stocktrack-backend/internal/auth"
	"stocktrack-backend/internal/database"
	"stocktrack-backend/internal/models"
	"stocktrack-backend/internal/reorder"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductResponse struct {
	ID             uint    `json:"id"`
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Supplier       string  `json:"supplier"`
	Quantity       int     `json:"quantity"`
	LeadTimeDays   int     `json:"lead_time_days"`
	AvgDailyDemand float64 `json:"avg_daily_demand"`
	SafetyStock    int     `json:"safety_stock"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`

	reorder.Fields
}

type CreateProductRequest struct {
	SKU            string   `json:"sku"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Supplier       string   `json:"supplier"`
	Quantity       *int     `json:"quantity"`
	LeadTimeDays   *int     `json:"lead_time_days"`
	AvgDailyDemand *float64 `json:"avg_daily_demand"`
	SafetyStock    *int     `json:"safety_stock"`
}

type UpdateProductRequest struct {
	Name           *string  `json:"name"`
	Category       *string  `json:"category"`
	Supplier       *string  `json:"supplier"`
	LeadTimeDays   *int     `json:"lead_time_days"`
	AvgDailyDemand *float64 `json:"avg_daily_demand"`
	SafetyStock    *int     `json:"safety_stock"`
}

// Defaults applied on create when the field is absent from the request.
const (
	defaultLeadTimeDays   = 7
	defaultAvgDailyDemand = 1.0
	defaultSafetyStock    = 5
)

// toProductResponse renders a product together with its derived reorder
// fields, so clients never re-derive the formula themselves.
func toProductResponse(p models.Product) ProductResponse {
	category := p.Category
	if category == "" {
		category = "Uncategorized"
	}
	supplier := p.Supplier
	if supplier == "" {
		supplier = "—"
	}

	return ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Category:       category,
		Supplier:       supplier,
		Quantity:       p.Quantity,
		LeadTimeDays:   p.LeadTimeDays,
		AvgDailyDemand: p.AvgDailyDemand,
		SafetyStock:    p.SafetyStock,
		CreatedAt:      p.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:      p.UpdatedAt.Format("2006-01-02 15:04:05"),
		Fields:         reorder.Compute(p),
	}
}

// GET /api/products (both roles)
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.
			Where("is_active = ?", true).
			Order("name asc").
			Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, toProductResponse(p))
		}
		return c.JSON(res)
	}
}

// POST /api/products (manager only)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.SKU = strings.TrimSpace(body.SKU)
		body.Name = strings.TrimSpace(body.Name)
		body.Category = strings.TrimSpace(body.Category)
		body.Supplier = strings.TrimSpace(body.Supplier)

		if body.SKU == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "SKU and name are required")
		}

		p := models.Product{
			SKU:            body.SKU,
			Name:           body.Name,
			Category:       body.Category,
			Supplier:       body.Supplier,
			LeadTimeDays:   defaultLeadTimeDays,
			AvgDailyDemand: defaultAvgDailyDemand,
			SafetyStock:    defaultSafetyStock,
			IsActive:       true,
		}
		if body.Quantity != nil {
			p.Quantity = *body.Quantity
		}
		if body.LeadTimeDays != nil {
			p.LeadTimeDays = *body.LeadTimeDays
		}
		if body.AvgDailyDemand != nil {
			p.AvgDailyDemand = *body.AvgDailyDemand
		}
		if body.SafetyStock != nil {
			p.SafetyStock = *body.SafetyStock
		}

		if p.Quantity < 0 || p.LeadTimeDays < 0 || p.AvgDailyDemand < 0 || p.SafetyStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Numeric fields cannot be negative")
		}

		var existing models.Product
		if err := database.DB.
			Where("sku = ? AND is_active = ?", p.SKU, true).
			First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "SKU already exists")
		}

		actor := auth.ResolveActor(c)
		ip := c.IP()

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				Action:       models.AuditActionProductCreate,
				Product:      p,
				PrevQuantity: 0,
				NewQuantity:  p.Quantity,
				Actor:        actor,
				IP:           ip,
			})
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(p))
	}
}

// PATCH /api/products/:id (manager only)
// Attribute updates only: quantity changes go through the stock path.
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ? AND is_active = ?", id, true).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			p.Name = name
		}
		if body.Category != nil {
			p.Category = strings.TrimSpace(*body.Category)
		}
		if body.Supplier != nil {
			p.Supplier = strings.TrimSpace(*body.Supplier)
		}
		if body.LeadTimeDays != nil {
			if *body.LeadTimeDays < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "lead_time_days cannot be negative")
			}
			p.LeadTimeDays = *body.LeadTimeDays
		}
		if body.AvgDailyDemand != nil {
			if *body.AvgDailyDemand < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "avg_daily_demand cannot be negative")
			}
			p.AvgDailyDemand = *body.AvgDailyDemand
		}
		if body.SafetyStock != nil {
			if *body.SafetyStock < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "safety_stock cannot be negative")
			}
			p.SafetyStock = *body.SafetyStock
		}

		actor := auth.ResolveActor(c)
		ip := c.IP()

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			// Column-scoped update: quantity is never written through this
			// path, even if a stock adjustment lands concurrently.
			if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
				"name":             p.Name,
				"category":         p.Category,
				"supplier":         p.Supplier,
				"lead_time_days":   p.LeadTimeDays,
				"avg_daily_demand": p.AvgDailyDemand,
				"safety_stock":     p.SafetyStock,
			}).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				Action:       models.AuditActionProductUpdate,
				Product:      p,
				PrevQuantity: p.Quantity,
				NewQuantity:  p.Quantity,
				Actor:        actor,
				IP:           ip,
			})
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}

		return c.JSON(toProductResponse(p))
	}
}

// DELETE /api/products/:id (manager only)
// Soft delete: the product vanishes from every listing but its audit
// history remains readable under the denormalized sku/name.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ? AND is_active = ?", id, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Product not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load product")
		}

		actor := auth.ResolveActor(c)
		ip := c.IP()

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := audit.WriteLog(tx, audit.LogOptions{
				Action:       models.AuditActionProductDelete,
				Product:      p,
				PrevQuantity: p.Quantity,
				NewQuantity:  p.Quantity,
				Actor:        actor,
				IP:           ip,
			}); err != nil {
				return err
			}
			return tx.Model(&models.Product{}).Where("id = ?", p.ID).
				Update("is_active", false).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
