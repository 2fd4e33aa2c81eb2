package subscriptions

import (
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestExtendFromNowWhenLapsedOrMissing(t *testing.T) {
	got, err := Extend(nil, now, 30)
	require.NoError(t, err)
	assert.True(t, got.Equal(now.Add(30*day)))

	lapsed := now.Add(-72 * time.Hour)
	got, err = Extend(&lapsed, now, 30)
	require.NoError(t, err)
	assert.True(t, got.Equal(now.Add(30*day)))
}

func TestExtendStacksOnFutureExpiry(t *testing.T) {
	future := now.Add(10 * day)
	got, err := Extend(&future, now, 90)
	require.NoError(t, err)
	assert.True(t, got.Equal(future.Add(90*day)))
}

func TestExtendNeverDecreases(t *testing.T) {
	starts := []*time.Time{nil, ptr(now.Add(-400 * day)), ptr(now.Add(-time.Second)), ptr(now), ptr(now.Add(time.Minute)), ptr(now.Add(365 * day))}
	for _, current := range starts {
		for _, days := range []int{0, 1, 7, 30, 90, 365} {
			got, err := Extend(current, now, days)
			require.NoError(t, err)
			if current != nil {
				assert.False(t, got.Before(*current), "extend(%v, %d) shrank expiry", current, days)
			}
			assert.False(t, got.Before(now))
		}
	}
}

func TestExtendRejectsNegativeDays(t *testing.T) {
	_, err := Extend(nil, now, -1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPeriodAtCeilsDaysLeft(t *testing.T) {
	p := PeriodAt(ptr(now.Add(36*time.Hour)), now)
	require.NotNil(t, p.DaysLeft)
	assert.Equal(t, 2, *p.DaysLeft)
	assert.False(t, p.Lapsed)

	p = PeriodAt(ptr(now.Add(time.Minute)), now)
	assert.Equal(t, 1, *p.DaysLeft)
}

func TestPeriodAtReportsLapse(t *testing.T) {
	yesterday := now.Add(-day)
	p := PeriodAt(&yesterday, now)
	require.NotNil(t, p.DaysLeft)
	assert.Equal(t, -1, *p.DaysLeft)
	assert.True(t, p.Lapsed)

	p = PeriodAt(ptr(now), now)
	assert.True(t, p.Lapsed)
	assert.Equal(t, 0, *p.DaysLeft)

	p = PeriodAt(nil, now)
	assert.Nil(t, p.DaysLeft)
	assert.True(t, p.Lapsed)
}

func TestTierDays(t *testing.T) {
	days, err := TierDays("30_days")
	require.NoError(t, err)
	assert.Equal(t, 30, days)

	days, err = TierDays("90_days")
	require.NoError(t, err)
	assert.Equal(t, 90, days)

	_, err = TierDays("forever")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
