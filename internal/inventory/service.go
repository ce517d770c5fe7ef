package inventory

import (
	"errors"
	"sync"

	"stocktrack-backend/internal/audit"
	"stocktrack-backend/internal/models"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// productLocks serializes stock writes per product id so two concurrent
// adjustments cannot read the same prev quantity and overwrite each other's
// delta. Writes to different products proceed in parallel.
var productLocks sync.Map // uint -> *sync.Mutex

func lockProduct(id uint) *sync.Mutex {
	m, _ := productLocks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu
}

// AdjustQuantity sets the on-hand quantity of one product and records the
// change. Negative targets clamp to zero before anything else. Writing the
// quantity the product already has is a no-op and appends no audit entry.
// The quantity update and the audit append commit in one transaction, so a
// reader never sees one without the other.
func AdjustQuantity(db *gorm.DB, productID uint, newQuantity int, actor, ip string) (models.Product, error) {
	if newQuantity < 0 {
		newQuantity = 0
	}

	mu := lockProduct(productID)
	defer mu.Unlock()

	var p models.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ? AND is_active = ?", productID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		prev := p.Quantity
		if prev == newQuantity {
			return nil
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).
			Update("quantity", newQuantity).Error; err != nil {
			return err
		}
		p.Quantity = newQuantity

		return audit.WriteLog(tx, audit.LogOptions{
			Action:       models.AuditActionStockUpdate,
			Product:      p,
			PrevQuantity: prev,
			NewQuantity:  newQuantity,
			Actor:        actor,
			IP:           ip,
		})
	})

	return p, err
}
