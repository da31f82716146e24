package dbtypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdaysValueAndScan(t *testing.T) {
	value, err := Weekdays{5, 1, 5}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[1,5]", value)

	var scanned Weekdays
	require.NoError(t, scanned.Scan([]byte("[1,5]")))
	assert.Equal(t, Weekdays{1, 5}, scanned)
	assert.True(t, scanned.Contains(time.Monday))
	assert.True(t, scanned.Contains(time.Friday))
	assert.False(t, scanned.Contains(time.Sunday))
}

func TestWeekdaysEmptyIsUnrestricted(t *testing.T) {
	value, err := Weekdays{}.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	var scanned Weekdays
	require.NoError(t, scanned.Scan(nil))
	assert.False(t, scanned.IsRestricted())

	require.NoError(t, scanned.Scan("[]"))
	assert.False(t, scanned.IsRestricted())
}

func TestWeekdaysValidate(t *testing.T) {
	assert.NoError(t, Weekdays{0, 6}.Validate())
	assert.Error(t, Weekdays{7}.Validate())
	assert.Error(t, Weekdays{-1}.Validate())
}

func TestWeekdaysScanRejectsUnsupportedType(t *testing.T) {
	var w Weekdays
	assert.Error(t, w.Scan(42))
}
