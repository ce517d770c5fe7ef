package main

import (
	"log"

	"stocktrack-backend/internal/config"
	"stocktrack-backend/internal/database"
	"stocktrack-backend/internal/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds demo users and sample products for local development.
// Existing rows with the same username/sku are left untouched.

var users = []struct {
	Username string
	Name     string
	Role     models.UserRole
	Password string
}{
	{"manager", "Manager", models.RoleManager, "manager123"},
	{"viewer", "Viewer", models.RoleViewer, "viewer123"},
}

var products = []models.Product{
	{SKU: "SKU-001", Name: "Widget A", Category: "Widgets", Supplier: "ACME", Quantity: 12, LeadTimeDays: 7, AvgDailyDemand: 1.5, SafetyStock: 5, IsActive: true},
	{SKU: "SKU-002", Name: "Widget B", Category: "Widgets", Supplier: "ACME", Quantity: 6, LeadTimeDays: 7, AvgDailyDemand: 2.0, SafetyStock: 4, IsActive: true},
	{SKU: "SKU-003", Name: "Gadget C", Category: "Gadgets", Supplier: "Globex", Quantity: 2, LeadTimeDays: 14, AvgDailyDemand: 1.2, SafetyStock: 6, IsActive: true},
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	database.Init(cfg)

	for _, u := range users {
		var count int64
		database.DB.Model(&models.User{}).Where("username = ?", u.Username).Count(&count)
		if count > 0 {
			log.Printf("user %q already exists, skipping", u.Username)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("could not hash password for %q: %v", u.Username, err)
		}

		user := models.User{
			Username:     u.Username,
			Name:         u.Name,
			Role:         u.Role,
			PasswordHash: string(hash),
		}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Fatalf("could not create user %q: %v", u.Username, err)
		}
		log.Printf("created user %q (%s)", u.Username, u.Role)
	}

	for _, p := range products {
		var count int64
		database.DB.Model(&models.Product{}).Where("sku = ?", p.SKU).Count(&count)
		if count > 0 {
			log.Printf("product %q already exists, skipping", p.SKU)
			continue
		}
		if err := database.DB.Create(&p).Error; err != nil {
			log.Fatalf("could not create product %q: %v", p.SKU, err)
		}
		log.Printf("created product %q", p.SKU)
	}

	log.Println("Seed complete.")
}
