package audit

import (
	"fmt"

	"stocktrack-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	Action       models.AuditAction
	Product      models.Product
	PrevQuantity int
	NewQuantity  int
	Actor        string
	IP           string
}

// WriteLog appends one audit entry on the given handle. Callers pass their
// open transaction so the entry commits together with the mutation it
// records; the created_at timestamp is assigned here, never by the client.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	actor := opts.Actor
	if actor == "" {
		actor = "system"
	}

	entry := models.AuditLog{
		Action:       opts.Action,
		ProductID:    opts.Product.ID,
		SKU:          opts.Product.SKU,
		Name:         opts.Product.Name,
		PrevQuantity: opts.PrevQuantity,
		NewQuantity:  opts.NewQuantity,
		Delta:        opts.NewQuantity - opts.PrevQuantity,
		Actor:        actor,
		IP:           opts.IP,
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log append failed: %w", err)
	}

	return nil
}
