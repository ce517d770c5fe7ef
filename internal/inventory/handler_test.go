package inventory_test

import (
	"encoding/csv"
	"net/http"
	"testing"

	"stocktrack-backend/internal/models"
	"stocktrack-backend/internal/router"
	"stocktrack-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type productResponse struct {
	ID               uint    `json:"id"`
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Supplier         string  `json:"supplier"`
	Quantity         int     `json:"quantity"`
	LeadTimeDays     int     `json:"lead_time_days"`
	AvgDailyDemand   float64 `json:"avg_daily_demand"`
	SafetyStock      int     `json:"safety_stock"`
	ReorderPoint     int     `json:"reorder_point"`
	TargetStock      int     `json:"target_stock"`
	SuggestedReorder int     `json:"suggested_reorder"`
	BelowBy          int     `json:"below_by"`
	Status           string  `json:"status"`
}

func setup(t *testing.T) (*fiber.App, *gorm.DB, string, string) {
	t.Helper()

	db := testutil.SetupDB(t)
	cfg := testutil.TestConfig()
	app := router.New(cfg)

	manager := testutil.CreateUser(t, db, "manager", "Manager", models.RoleManager, "manager123")
	viewer := testutil.CreateUser(t, db, "viewer", "Viewer", models.RoleViewer, "viewer123")

	return app, db, testutil.Token(t, cfg, manager), testutil.Token(t, cfg, viewer)
}

func TestCreateProduct(t *testing.T) {
	app, db, managerToken, _ := setup(t)

	res, err := app.Test(testutil.JSONRequest(http.MethodPost, "/api/products", managerToken, fiber.Map{
		"sku":              "SKU-001",
		"name":             "Widget A",
		"category":         "Widgets",
		"supplier":         "ACME",
		"quantity":         12,
		"lead_time_days":   7,
		"avg_daily_demand": 1.5,
		"safety_stock":     5,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var got productResponse
	testutil.DecodeJSON(t, res, &got)
	assert.Equal(t, "SKU-001", got.SKU)
	assert.Equal(t, 12, got.Quantity)
	// rop = ceil(10.5 + 5) = 16, target = ceil(16 + 10.5) = 27
	assert.Equal(t, 16, got.ReorderPoint)
	assert.Equal(t, 27, got.TargetStock)
	assert.Equal(t, 15, got.SuggestedReorder)
	assert.Equal(t, "LOW", got.Status)

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, models.AuditActionProductCreate, entry.Action)
	assert.Equal(t, 0, entry.PrevQuantity)
	assert.Equal(t, 12, entry.NewQuantity)
	assert.Equal(t, "Manager", entry.Actor)
}

func TestCreateProduct_DefaultsWhenAbsent(t *testing.T) {
	app, _, managerToken, _ := setup(t)

	res, err := app.Test(testutil.JSONRequest(http.MethodPost, "/api/products", managerToken, fiber.Map{
		"sku":  "SKU-001",
		"name": "Widget A",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var got productResponse
	testutil.DecodeJSON(t, res, &got)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, 7, got.LeadTimeDays)
	assert.Equal(t, 1.0, got.AvgDailyDemand)
	assert.Equal(t, 5, got.SafetyStock)
	assert.Equal(t, "Uncategorized", got.Category)
	assert.Equal(t, "—", got.Supplier)
}

func TestCreateProduct_Validation(t *testing.T) {
	app, _, managerToken, _ := setup(t)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing sku", fiber.Map{"name": "Widget A"}},
		{"missing name", fiber.Map{"sku": "SKU-001"}},
		{"blank name", fiber.Map{"sku": "SKU-001", "name": "   "}},
		{"negative quantity", fiber.Map{"sku": "SKU-001", "name": "Widget A", "quantity": -1}},
		{"negative demand", fiber.Map{"sku": "SKU-001", "name": "Widget A", "avg_daily_demand": -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := app.Test(testutil.JSONRequest(http.MethodPost, "/api/products", managerToken, tt.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		})
	}
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	app, db, managerToken, _ := setup(t)
	testutil.CreateProduct(t, db, models.Product{SKU: "SKU-001", Name: "Widget A"})

	res, err := app.Test(testutil.JSONRequest(http.MethodPost, "/api/products", managerToken, fiber.Map{
		"sku":  "SKU-001",
		"name": "Widget A again",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestUpdateProduct(t *testing.T) {
	app, db, managerToken, _ := setup(t)
	p := testutil.CreateProduct(t, db, models.Product{
		SKU: "SKU-001", Name: "Widget A", Quantity: 10, LeadTimeDays: 7, AvgDailyDemand: 2, SafetyStock: 5,
	})

	res, err := app.Test(testutil.JSONRequest(http.MethodPatch, "/api/products/1", managerToken, fiber.Map{
		"name":           "Widget A v2",
		"lead_time_days": 3,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var got productResponse
	testutil.DecodeJSON(t, res, &got)
	assert.Equal(t, "Widget A v2", got.Name)
	assert.Equal(t, 3, got.LeadTimeDays)
	assert.Equal(t, 10, got.Quantity)

	var entry models.AuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionProductUpdate).First(&entry).Error)
	assert.Equal(t, p.ID, entry.ProductID)
	assert.Equal(t, 10, entry.PrevQuantity)
	assert.Equal(t, 10, entry.NewQuantity)
	assert.Equal(t, 0, entry.Delta)
}

func TestUpdateProduct_QuantityImmune(t *testing.T) {
	app, db, managerToken, _ := setup(t)
	testutil.CreateProduct(t, db, models.Product{SKU: "SKU-001", Name: "Widget A", Quantity: 10})

	// quantity is not part of the attribute-update contract; it must
	// survive untouched even if a client sends it.
	res, err := app.Test(testutil.JSONRequest(http.MethodPatch, "/api/products/1", managerToken, fiber.Map{
		"quantity": 999,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, 1).Error)
	assert.Equal(t, 10, fresh.Quantity)
}

func TestUpdateProduct_Validation(t *testing.T) {
	app, db, managerToken, _ := setup(t)
	testutil.CreateProduct(t, db, models.Product{SKU: "SKU-001", Name: "Widget A"})

	tests := []struct {
		name       string
		body       fiber.Map
		wantStatus int
	}{
		{"blank name", fiber.Map{"name": " "}, http.StatusBadRequest},
		{"negative lead time", fiber.Map{"lead_time_days": -1}, http.StatusBadRequest},
		{"negative safety stock", fiber.Map{"safety_stock": -2}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := app.Test(testutil.JSONRequest(http.MethodPatch, "/api/products/1", managerToken, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
		})
	}

	res, err := app.Test(testutil.JSONRequest(http.MethodPatch, "/api/products/999", managerToken, fiber.Map{"name": "X"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDeleteProduct_Isolation(t *testing.T) {
	app, db, managerToken, _ := setup(t)
	p := testutil.CreateProduct(t, db, models.Product{SKU: "SKU-001", Name: "Widget A", Quantity: 4})

	res, err := app.Test(testutil.JSONRequest(http.MethodDelete, "/api/products/1", managerToken, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	// Gone from listings.
	res, err = app.Test(testutil.JSONRequest(http.MethodGet, "/api/products", managerToken, nil))
	require.NoError(t, err)
	var listed []productResponse
	testutil.DecodeJSON(t, res, &listed)
	assert.Empty(t, listed)

	// Gone from the projection.
	res, err = app.Test(testutil.JSONRequest(http.MethodGet, "/api/reorder", managerToken, nil))
	require.NoError(t, err)
	var rows []productResponse
	testutil.DecodeJSON(t, res, &rows)
	assert.Empty(t, rows)

	// Audit history survives with the denormalized sku/name.
	var entry models.AuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionProductDelete).First(&entry).Error)
	assert.Equal(t, p.ID, entry.ProductID)
	assert.Equal(t, "SKU-001", entry.SKU)
	assert.Equal(t, "Widget A", entry.Name)
	assert.Equal(t, 4, entry.PrevQuantity)
	assert.Equal(t, 4, entry.NewQuantity)

	// A second delete is NotFound.
	res, err = app.Test(testutil.JSONRequest(http.MethodDelete, "/api/products/1", managerToken, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUpdateStock(t *testing.T) {
	app, db, managerToken, _ := setup(t)
	testutil.CreateProduct(t, db, models.Product{
		SKU: "SKU-001", Name: "Widget A", Quantity: 10, LeadTimeDays: 7, AvgDailyDemand: 2, SafetyStock: 5,
	})

	res, err := app.Test(testutil.JSONRequest(http.MethodPatch, "/api/products/1/stock", managerToken, fiber.Map{
		"quantity": 15,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var got productResponse
	testutil.DecodeJSON(t, res, &got)
	assert.Equal(t, 15, got.Quantity)
	assert.Equal(t, "LOW", got.Status)

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, models.AuditActionStockUpdate, entry.Action)
	assert.Equal(t, 10, entry.PrevQuantity)
	assert.Equal(t, 15, entry.NewQuantity)

	res, err = app.Test(testutil.JSONRequest(http.MethodPatch, "/api/products/999/stock", managerToken, fiber.Map{
		"quantity": 1,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestViewerWritesForbidden(t *testing.T) {
	app, db, _, viewerToken := setup(t)
	testutil.CreateProduct(t, db, models.Product{SKU: "SKU-001", Name: "Widget A", Quantity: 10})

	writes := []struct {
		method string
		path   string
		body   fiber.Map
	}{
		{http.MethodPost, "/api/products", fiber.Map{"sku": "SKU-002", "name": "Widget B"}},
		{http.MethodPatch, "/api/products/1", fiber.Map{"name": "Renamed"}},
		{http.MethodDelete, "/api/products/1", nil},
		{http.MethodPatch, "/api/products/1/stock", fiber.Map{"quantity": 99}},
	}
	for _, w := range writes {
		res, err := app.Test(testutil.JSONRequest(w.method, w.path, viewerToken, w.body))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, res.StatusCode, "%s %s", w.method, w.path)
	}

	// Zero side effects: no audit entries, the catalog untouched.
	var auditCount int64
	db.Model(&models.AuditLog{}).Count(&auditCount)
	assert.Zero(t, auditCount)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, 1).Error)
	assert.Equal(t, "Widget A", fresh.Name)
	assert.Equal(t, 10, fresh.Quantity)
	assert.True(t, fresh.IsActive)

	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)
	assert.Equal(t, int64(1), productCount)
}

func TestViewerReadsAllowed(t *testing.T) {
	app, db, _, viewerToken := setup(t)
	testutil.CreateProduct(t, db, models.Product{SKU: "SKU-001", Name: "Widget A", Quantity: 10})

	for _, path := range []string{"/api/products", "/api/reorder", "/api/reorder.csv", "/api/audit-logs"} {
		res, err := app.Test(testutil.JSONRequest(http.MethodGet, path, viewerToken, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
	}
}

func TestReorderList(t *testing.T) {
	app, db, managerToken, _ := setup(t)
	testutil.CreateProduct(t, db, models.Product{SKU: "SKU-001", Name: "Widget A", Quantity: 10, LeadTimeDays: 7, AvgDailyDemand: 2, SafetyStock: 5})
	testutil.CreateProduct(t, db, models.Product{SKU: "SKU-002", Name: "Widget B", Quantity: 0, LeadTimeDays: 7, AvgDailyDemand: 2, SafetyStock: 5})
	testutil.CreateProduct(t, db, models.Product{SKU: "SKU-003", Name: "Gadget C", Quantity: 40, LeadTimeDays: 7, AvgDailyDemand: 2, SafetyStock: 5})

	// Default: full projection sorted by suggested quantity descending.
	res, err := app.Test(testutil.JSONRequest(http.MethodGet, "/api/reorder", managerToken, nil))
	require.NoError(t, err)
	var rows []productResponse
	testutil.DecodeJSON(t, res, &rows)
	require.Len(t, rows, 3)
	assert.Equal(t, "SKU-002", rows[0].SKU)
	assert.Equal(t, "OUT", rows[0].Status)
	assert.Equal(t, 33, rows[0].SuggestedReorder)
	assert.Equal(t, "SKU-001", rows[1].SKU)
	assert.Equal(t, "SKU-003", rows[2].SKU)

	// Pre-filtered to items actually worth ordering.
	res, err = app.Test(testutil.JSONRequest(http.MethodGet, "/api/reorder?filter=needs_ordering", managerToken, nil))
	require.NoError(t, err)
	testutil.DecodeJSON(t, res, &rows)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Greater(t, r.SuggestedReorder, 0)
	}

	res, err = app.Test(testutil.JSONRequest(http.MethodGet, "/api/reorder?filter=bogus", managerToken, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = app.Test(testutil.JSONRequest(http.MethodGet, "/api/reorder?sort=bogus", managerToken, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestReorderCSV(t *testing.T) {
	app, db, managerToken, _ := setup(t)
	testutil.CreateProduct(t, db, models.Product{SKU: "SKU-001", Name: "Widget A", Quantity: 10, LeadTimeDays: 7, AvgDailyDemand: 2, SafetyStock: 5})

	res, err := app.Test(testutil.JSONRequest(http.MethodGet, "/api/reorder.csv", managerToken, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, res.Header.Get("Content-Disposition"), "reorder_list.csv")

	records, err := csv.NewReader(res.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "sku", records[0][0])
	assert.Equal(t, "SKU-001", records[1][0])
	assert.Equal(t, "19", records[1][8])  // reorder_point
	assert.Equal(t, "LOW", records[1][9]) // status
}

func TestUnauthenticatedRejected(t *testing.T) {
	app, _, _, _ := setup(t)

	res, err := app.Test(testutil.JSONRequest(http.MethodGet, "/api/products", "", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
