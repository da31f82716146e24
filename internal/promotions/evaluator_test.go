package promotions

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonpos/salonpos-backend/pkg/db/models"
	dbtypes "github.com/salonpos/salonpos-backend/pkg/db/types"
	pkgerrors "github.com/salonpos/salonpos-backend/pkg/errors"
)

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(value string) *time.Time {
	t := day(value)
	return &t
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestIsActiveForDateWindowIsInclusive(t *testing.T) {
	promo := models.Promotion{
		Active:   true,
		StartsAt: dayPtr("2025-03-10"),
		EndsAt:   dayPtr("2025-03-20"),
	}

	cases := map[string]bool{
		"2025-03-09": false,
		"2025-03-10": true,
		"2025-03-15": true,
		"2025-03-20": true,
		"2025-03-21": false,
	}
	for date, want := range cases {
		if got := IsActiveForDate(promo, day(date)); got != want {
			t.Fatalf("date %s: expected %v got %v", date, want, got)
		}
	}

	lateInDay := time.Date(2025, 3, 20, 23, 59, 0, 0, time.UTC)
	if !IsActiveForDate(promo, lateInDay) {
		t.Fatal("time of day must not affect the window check")
	}
}

func TestIsActiveForDateOpenBoundsAndFlag(t *testing.T) {
	open := models.Promotion{Active: true}
	assert.True(t, IsActiveForDate(open, day("1999-01-01")))
	assert.True(t, IsActiveForDate(open, day("2099-12-31")))

	onlyStart := models.Promotion{Active: true, StartsAt: dayPtr("2025-01-01")}
	assert.False(t, IsActiveForDate(onlyStart, day("2024-12-31")))
	assert.True(t, IsActiveForDate(onlyStart, day("2030-01-01")))

	off := models.Promotion{Active: false}
	assert.False(t, IsActiveForDate(off, day("2025-03-03")))
}

func TestIsActiveForDateWeekdayRestriction(t *testing.T) {
	promo := models.Promotion{
		Active:     true,
		StartsAt:   dayPtr("2025-03-01"),
		EndsAt:     dayPtr("2025-03-31"),
		DaysOfWeek: dbtypes.Weekdays{1, 5},
	}

	// 2025-03-02 is a Sunday.
	start := day("2025-03-02")
	for i := 0; i < 14; i++ {
		date := start.AddDate(0, 0, i)
		want := date.Weekday() == time.Monday || date.Weekday() == time.Friday
		if got := IsActiveForDate(promo, date); got != want {
			t.Fatalf("%s (%s): expected %v got %v", date.Format(time.DateOnly), date.Weekday(), want, got)
		}
	}

	assert.False(t, IsActiveForDate(promo, day("2025-04-04")), "a Friday outside the window stays inactive")
}

func TestSelectAutoPrefersHighestPercentage(t *testing.T) {
	date := day("2025-03-03")
	low := models.Promotion{ID: uuid.New(), Active: true, Percentage: dec("5")}
	high := models.Promotion{ID: uuid.New(), Active: true, Percentage: dec("20")}
	inactiveHigher := models.Promotion{ID: uuid.New(), Active: true, Percentage: dec("50"), EndsAt: dayPtr("2025-03-02")}

	picked := SelectAuto([]models.Promotion{low, inactiveHigher, high}, date)
	require.NotNil(t, picked)
	assert.Equal(t, high.ID, picked.ID)

	assert.Nil(t, SelectAuto([]models.Promotion{inactiveHigher}, date))
	assert.Nil(t, SelectAuto(nil, date))
}

func TestSelectAutoBreaksTiesOnLowestID(t *testing.T) {
	date := day("2025-03-03")
	a := models.Promotion{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), Active: true, Percentage: dec("10")}
	b := models.Promotion{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), Active: true, Percentage: dec("10")}

	assert.Equal(t, a.ID, SelectAuto([]models.Promotion{b, a}, date).ID)
	assert.Equal(t, a.ID, SelectAuto([]models.Promotion{a, b}, date).ID)
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name  string
		promo models.Promotion
		base  string
		want  string
	}{
		{name: "percentage", promo: models.Promotion{Percentage: dec("10")}, base: "3000", want: "300"},
		{name: "percentage rounds half away from zero", promo: models.Promotion{Percentage: dec("15")}, base: "0.30", want: "0.05"},
		{name: "amount capped at base", promo: models.Promotion{Amount: dec("5000")}, base: "2400", want: "2400"},
		{name: "amount below base", promo: models.Promotion{Amount: dec("12.5")}, base: "40", want: "12.5"},
		{name: "percentage wins over amount", promo: models.Promotion{Percentage: dec("50"), Amount: dec("1")}, base: "10", want: "5"},
		{name: "nothing configured", promo: models.Promotion{}, base: "10", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDiscount(tt.promo, dec(tt.base))
			if !got.Equal(dec(tt.want)) {
				t.Fatalf("expected %s got %s", tt.want, got)
			}
		})
	}
}

func TestApplyPercentageOnProductsOnly(t *testing.T) {
	promo := &models.Promotion{ID: uuid.New(), Active: true, Percentage: dec("10"), ApplicableToProducts: true}

	out, err := Apply(ApplyInput{
		Promotion:     promo,
		Origin:        OriginExplicit,
		Date:          day("2025-03-03"),
		ProductsTotal: dec("3000"),
		ServicesTotal: dec("3000"),
	})
	require.NoError(t, err)
	require.NotNil(t, out.PromotionID)
	assert.Equal(t, promo.ID, *out.PromotionID)
	assert.True(t, out.Discount().Equal(dec("300")), "got %s", out.Discount())
}

func TestApplyFixedAmountCapped(t *testing.T) {
	promo := &models.Promotion{ID: uuid.New(), Active: true, Amount: dec("5000"), ApplicableToProducts: true, ApplicableToServices: true}

	out, err := Apply(ApplyInput{
		Promotion:     promo,
		Origin:        OriginExplicit,
		Date:          day("2025-03-03"),
		ProductsTotal: dec("2000"),
		ServicesTotal: dec("400"),
	})
	require.NoError(t, err)
	assert.True(t, out.Discount().Equal(dec("2400")), "got %s", out.Discount())
}

func TestApplyExplicitInactiveIsRejected(t *testing.T) {
	promo := &models.Promotion{
		ID:                   uuid.New(),
		Active:               true,
		Percentage:           dec("10"),
		ApplicableToProducts: true,
		DaysOfWeek:           dbtypes.Weekdays{1, 5},
	}

	// 2025-03-04 is a Tuesday.
	out, err := Apply(ApplyInput{
		Promotion:     promo,
		Origin:        OriginExplicit,
		Date:          day("2025-03-04"),
		ProductsTotal: dec("100"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromotionNotActive))
	assert.Equal(t, FieldPromotion, pkgerrors.As(err).Field())
	assert.Nil(t, out.PromotionID)
	assert.Nil(t, out.DiscountAmount)
}

func TestApplyAutoAndRetainedOrigins(t *testing.T) {
	expired := &models.Promotion{ID: uuid.New(), Active: true, Percentage: dec("10"), ApplicableToProducts: true, EndsAt: dayPtr("2025-03-01")}
	wrongDay := &models.Promotion{ID: uuid.New(), Active: true, Percentage: dec("10"), ApplicableToProducts: true, DaysOfWeek: dbtypes.Weekdays{0}}
	date := day("2025-03-03")

	for _, origin := range []Origin{OriginAuto, OriginRetained} {
		out, err := Apply(ApplyInput{Promotion: expired, Origin: origin, Date: date, ProductsTotal: dec("50")})
		require.NoError(t, err, "origin %s", origin)
		assert.Nil(t, out.PromotionID, "origin %s clears an out-of-window promotion", origin)
		assert.Nil(t, out.DiscountAmount)

		_, err = Apply(ApplyInput{Promotion: wrongDay, Origin: origin, Date: date, ProductsTotal: dec("50")})
		assert.True(t, errors.Is(err, ErrPromotionNotActive), "origin %s enforces weekdays", origin)
	}

	_, err := Apply(ApplyInput{Promotion: expired, Origin: OriginExplicit, Date: date, ProductsTotal: dec("50")})
	assert.True(t, errors.Is(err, ErrPromotionNotActive))
}

func TestApplyRejectsEmptyEligibleBase(t *testing.T) {
	promo := &models.Promotion{ID: uuid.New(), Active: true, Percentage: dec("10"), ApplicableToProducts: true}

	for _, origin := range []Origin{OriginExplicit, OriginAuto, OriginRetained} {
		_, err := Apply(ApplyInput{
			Promotion:     promo,
			Origin:        origin,
			Date:          day("2025-03-03"),
			ProductsTotal: decimal.Zero,
			ServicesTotal: dec("80"),
		})
		require.Error(t, err, "origin %s", origin)
		assert.True(t, errors.Is(err, ErrPromotionNotApplicable))
		assert.True(t, pkgerrors.IsValidation(err))
	}
}

func TestApplyZeroDiscount(t *testing.T) {
	promo := &models.Promotion{ID: uuid.New(), Active: true, ApplicableToServices: true}
	in := ApplyInput{Promotion: promo, Date: day("2025-03-03"), ServicesTotal: dec("40")}

	in.Origin = OriginExplicit
	out, err := Apply(in)
	require.NoError(t, err)
	require.NotNil(t, out.PromotionID)
	require.NotNil(t, out.DiscountAmount)
	assert.True(t, out.DiscountAmount.IsZero())

	in.Origin = OriginAuto
	out, err = Apply(in)
	require.NoError(t, err)
	assert.Nil(t, out.PromotionID)
	assert.Nil(t, out.DiscountAmount)
}

func TestApplyWithoutPromotion(t *testing.T) {
	out, err := Apply(ApplyInput{Origin: OriginAuto, Date: day("2025-03-03")})
	require.NoError(t, err)
	assert.Nil(t, out.PromotionID)
	assert.True(t, out.Discount().IsZero())
}
