package models

import "time"

type Product struct {
	// SKU uniqueness is enforced at the catalog level, scoped to active
	// products, so a deleted product's SKU can be reused.
	ID   uint   `gorm:"primaryKey"`
	SKU  string `gorm:"size:50;index;not null"`
	Name string `gorm:"size:100;not null"`

	// Optional classifiers. Stored empty when absent; the API layer
	// renders the display fallbacks ("Uncategorized" / "—").
	Category string `gorm:"size:100"`
	Supplier string `gorm:"size:100;index"`

	Quantity int `gorm:"not null;default:0;check:quantity >= 0"`

	// Reorder inputs. Quantity changes go through the stock adjustment
	// path, never through attribute updates.
	LeadTimeDays   int     `gorm:"not null;default:0;check:lead_time_days >= 0"`
	AvgDailyDemand float64 `gorm:"not null;default:0;check:avg_daily_demand >= 0"`
	SafetyStock    int     `gorm:"not null;default:0;check:safety_stock >= 0"`

	// Soft delete: inactive products vanish from every listing but their
	// audit history stays readable.
	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
