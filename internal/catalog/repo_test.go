package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/salonpos/salonpos-backend/pkg/db/models"
)

func TestProductsAndServicesAreShopScoped(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	shopID, otherID := uuid.New(), uuid.New()

	own := models.Product{ShopID: shopID, Name: "Shampoo", Quantity: 3, UnitPrice: decimal.RequireFromString("9.99")}
	foreign := models.Product{ShopID: otherID, Name: "Gel", Quantity: 3, UnitPrice: decimal.RequireFromString("4.00")}
	cut := models.Service{ShopID: shopID, Name: "Cut", UnitPrice: decimal.RequireFromString("30")}
	for _, row := range []any{&own, &foreign, &cut} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	repo := NewRepository(db)
	products, err := repo.ProductsByID(ctx, shopID, []uuid.UUID{own.ID, foreign.ID, uuid.New()})
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected only the shop's product, got %d", len(products))
	}
	if !products[own.ID].UnitPrice.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("unexpected unit price %s", products[own.ID].UnitPrice)
	}

	services, err := repo.ServicesByID(ctx, shopID, []uuid.UUID{cut.ID})
	if err != nil {
		t.Fatalf("services: %v", err)
	}
	if _, ok := services[cut.ID]; !ok {
		t.Fatal("expected service to resolve")
	}

	empty, err := repo.ServicesByID(ctx, shopID, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", empty, err)
	}
}

func TestFindHairdresser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	shopID := uuid.New()
	h := models.Hairdresser{ShopID: shopID, Name: "Ana", Active: true}
	if err := db.Create(&h).Error; err != nil {
		t.Fatalf("seed hairdresser: %v", err)
	}

	repo := NewRepository(db)
	found, err := repo.FindHairdresser(ctx, shopID, h.ID)
	if err != nil || found == nil || found.Name != "Ana" {
		t.Fatalf("expected hairdresser, got %+v err=%v", found, err)
	}

	foreign, err := repo.FindHairdresser(ctx, uuid.New(), h.ID)
	if err != nil || foreign != nil {
		t.Fatalf("expected nil for another shop, got %+v err=%v", foreign, err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Service{}, &models.Hairdresser{}); err != nil {
		t.Fatalf("migrate catalog: %v", err)
	}
	return db
}
