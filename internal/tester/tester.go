package tester

import (
	"path/filepath"
	"testing"

	"github.com/bcmimarlik/site/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB opens a migrated sqlite database that lives for the duration of the test.
func TestDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "site.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// ContentPath returns a content file path inside a fresh temp dir.
func ContentPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "site-data.json")
}

// Document returns a small document that differs from the default one.
func Document() *model.SiteDocument {
	return &model.SiteDocument{
		Projects: []model.ProjectEntry{
			{ID: 4, Name: "Gökova Evi", MediaURL: "/gokova.webp", AltText: "Gökova Evi"},
			{ID: 9, Name: "Ula Atölye", MediaURL: "https://cdn.example.com/ula.mp4", AltText: "Ula", IsVideo: true, InProgress: true},
		},
		Contact: model.ContactInfo{
			AddressLines: []string{"Ula", "", "Muğla"},
			PhoneText:    "0532 123 45 67",
			EmailText:    "info@example.com",
		},
		Links: model.LinksInfo{
			WhatsappURL:  "##https://wa.me/905321234567",
			InstagramURL: "https://instagram.com/example",
		},
	}
}
