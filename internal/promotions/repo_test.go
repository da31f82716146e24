package promotions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/salonpos/salonpos-backend/pkg/db/models"
	dbtypes "github.com/salonpos/salonpos-backend/pkg/db/types"
)

func TestFindForShopIsShopScoped(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	shopID, otherShopID := uuid.New(), uuid.New()
	promo := seedPromotion(t, db, models.Promotion{ShopID: shopID, Name: "Spring", Active: true, Percentage: dec("10")})

	repo := NewRepository(db)
	found, err := repo.FindForShop(ctx, shopID, promo.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Spring", found.Name)

	foreign, err := repo.FindForShop(ctx, otherShopID, promo.ID)
	require.NoError(t, err)
	assert.Nil(t, foreign)

	missing, err := repo.FindForShop(ctx, shopID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListActiveForShopRoundTripsWeekdays(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	shopID := uuid.New()
	seedPromotion(t, db, models.Promotion{ShopID: shopID, Name: "Weekend", Active: true, Percentage: dec("15"), DaysOfWeek: dbtypes.Weekdays{6, 0}})
	seedPromotion(t, db, models.Promotion{ShopID: shopID, Name: "Retired", Active: false, Percentage: dec("90")})
	seedPromotion(t, db, models.Promotion{ShopID: uuid.New(), Name: "Elsewhere", Active: true})

	promos, err := NewRepository(db).ListActiveForShop(ctx, shopID)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, "Weekend", promos[0].Name)
	assert.Equal(t, dbtypes.Weekdays{0, 6}, promos[0].DaysOfWeek)
	assert.True(t, promos[0].Percentage.Equal(dec("15")))
}

func TestClaimEndedAnnouncesOnceAndKeepsActive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	shopID := uuid.New()
	ended := seedPromotion(t, db, models.Promotion{ShopID: shopID, Name: "Ended", Active: true, EndsAt: dayPtr("2025-03-01")})
	lastDay := seedPromotion(t, db, models.Promotion{ShopID: shopID, Name: "Last day", Active: true, EndsAt: dayPtr("2025-03-05")})
	seedPromotion(t, db, models.Promotion{ShopID: shopID, Name: "Open", Active: true})

	repo := NewRepository(db)
	shops, err := repo.ListShopsWithEnded(ctx, day("2025-03-05"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{shopID}, shops)

	ids, err := repo.ClaimEnded(ctx, shopID, day("2025-03-05"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ended.ID}, ids)

	var reloaded models.Promotion
	require.NoError(t, db.First(&reloaded, "id = ?", ended.ID).Error)
	assert.True(t, reloaded.Active, "the sweep must not switch a promotion off")
	require.NotNil(t, reloaded.EndAnnouncedAt)
	assert.True(t, IsActiveForDate(reloaded, day("2025-03-01")), "sales dated inside the window still qualify")

	require.NoError(t, db.First(&reloaded, "id = ?", lastDay.ID).Error)
	assert.Nil(t, reloaded.EndAnnouncedAt, "a promotion is still running on its end date")

	ids, err = repo.ClaimEnded(ctx, shopID, day("2025-03-05"))
	require.NoError(t, err)
	assert.Empty(t, ids)

	shops, err = repo.ListShopsWithEnded(ctx, day("2025-03-05"))
	require.NoError(t, err)
	assert.Empty(t, shops)
}

func TestServiceActiveForDate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	shopID := uuid.New()
	seedPromotion(t, db, models.Promotion{ShopID: shopID, Name: "Mondays", Active: true, Percentage: dec("25"), DaysOfWeek: dbtypes.Weekdays{1}})
	seedPromotion(t, db, models.Promotion{ShopID: shopID, Name: "Always", Active: true, Percentage: dec("5")})

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	monday, err := svc.ActiveForDate(ctx, shopID, day("2025-03-03"))
	require.NoError(t, err)
	assert.Len(t, monday.Promotions, 2)
	require.NotNil(t, monday.AutoPick)
	assert.Equal(t, "Mondays", monday.AutoPick.Name)

	tuesday, err := svc.ActiveForDate(ctx, shopID, day("2025-03-04"))
	require.NoError(t, err)
	assert.Len(t, tuesday.Promotions, 1)
	assert.Equal(t, "Always", tuesday.AutoPick.Name)

	_, err = NewService(nil)
	assert.Error(t, err)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:promotions_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Promotion{}); err != nil {
		t.Fatalf("migrate promotions: %v", err)
	}
	return db
}

func seedPromotion(t *testing.T, db *gorm.DB, promo models.Promotion) *models.Promotion {
	t.Helper()
	promo.ApplicableToProducts = true
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("seed promotion: %v", err)
	}
	return &promo
}
