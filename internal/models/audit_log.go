package models

import "time"

type AuditAction string

const (
	AuditActionStockUpdate   AuditAction = "stock_update"
	AuditActionProductCreate AuditAction = "product_create"
	AuditActionProductUpdate AuditAction = "product_update"
	AuditActionProductDelete AuditAction = "product_delete"
)

// AuditLog rows are append-only: never updated or deleted by the application.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Action AuditAction `gorm:"size:30;not null" json:"action"`

	// SKU and name are denormalized at write time so the entry survives
	// later product edits and deletion.
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	SKU       string `gorm:"size:50;index;not null" json:"sku"`
	Name      string `gorm:"size:100;not null" json:"name"`

	PrevQuantity int `gorm:"not null;default:0" json:"prev_quantity"`
	NewQuantity  int `gorm:"not null;default:0" json:"new_quantity"`
	Delta        int `gorm:"not null;default:0" json:"delta"`

	Actor string `gorm:"size:100;not null;default:system" json:"actor"`
	IP    string `gorm:"size:45" json:"ip,omitempty"`
}
