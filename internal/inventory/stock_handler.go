package inventory

import (
	"errors"

	"stocktrack-backend/internal/auth"
	"stocktrack-backend/internal/database"

	"github.com/gofiber/fiber/v2"
)

type StockUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// PATCH /api/products/:id/stock (manager only)
// The dedicated quantity path: audited, serialized per product, idempotent
// when the quantity is unchanged.
func UpdateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var body StockUpdateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		actor := auth.ResolveActor(c)

		p, err := AdjustQuantity(database.DB, uint(id), body.Quantity, actor, c.IP())
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Product not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update stock")
		}

		return c.JSON(toProductResponse(p))
	}
}
