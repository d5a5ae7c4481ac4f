package service

import (
	"testing"
	"time"

	"weeklypay_go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHolidays = []string{"2025-12-25", "2026-01-01", "2026-01-19", "2026-02-16"}

func newTestClassifier(t *testing.T) *SessionClassifier {
	t.Helper()
	c, err := NewSessionClassifier("America/New_York", testHolidays)
	require.NoError(t, err)
	return c
}

func TestSessionClassifier_Bands(t *testing.T) {
	c := newTestClassifier(t)
	et := c.Location()

	// 2026-01-06 is an ordinary Tuesday.
	tests := []struct {
		hour, minute int
		want         domain.SessionKind
	}{
		{0, 0, domain.SessionDayMarket},
		{3, 59, domain.SessionDayMarket},
		{4, 0, domain.SessionPreMarket},
		{9, 29, domain.SessionPreMarket},
		{9, 30, domain.SessionRegular},
		{15, 59, domain.SessionRegular},
		{16, 0, domain.SessionAfterHours},
		{19, 59, domain.SessionAfterHours},
		{20, 0, domain.SessionDayMarket},
		{23, 59, domain.SessionDayMarket},
	}

	for _, tt := range tests {
		at := time.Date(2026, 1, 6, tt.hour, tt.minute, 0, 0, et)
		got := c.Classify(at)
		assert.Equal(t, tt.want, got.Kind, "at %s", at.Format("15:04"))
		assert.Equal(t, tt.want.Label(), got.Label)
	}
}

func TestSessionClassifier_Weekend(t *testing.T) {
	c := newTestClassifier(t)
	et := c.Location()

	// Saturday is closed all day, including the evening.
	assert.Equal(t, domain.SessionClosedWeekend, c.Classify(time.Date(2026, 1, 3, 21, 0, 0, 0, et)).Kind)
	assert.Equal(t, domain.SessionClosedWeekend, c.Classify(time.Date(2026, 1, 3, 10, 0, 0, 0, et)).Kind)

	// Sunday reopens at 20:00 for the day market.
	assert.Equal(t, domain.SessionClosedWeekend, c.Classify(time.Date(2026, 1, 4, 19, 59, 0, 0, et)).Kind)
	assert.Equal(t, domain.SessionDayMarket, c.Classify(time.Date(2026, 1, 4, 20, 0, 0, 0, et)).Kind)
	assert.Equal(t, domain.SessionDayMarket, c.Classify(time.Date(2026, 1, 4, 21, 0, 0, 0, et)).Kind)
}

func TestSessionClassifier_Holiday(t *testing.T) {
	c := newTestClassifier(t)
	et := c.Location()

	mlk := time.Date(2026, 1, 19, 13, 20, 0, 0, et)
	got := c.Classify(mlk)
	assert.Equal(t, domain.SessionClosedHoliday, got.Kind)
	assert.Equal(t, "⛔ Closed (Holiday)", got.Label)

	// After 20:00 the holiday no longer applies.
	assert.Equal(t, domain.SessionDayMarket, c.Classify(time.Date(2026, 1, 19, 20, 50, 0, 0, et)).Kind)

	// The following day is ordinary.
	assert.Equal(t, domain.SessionRegular, c.Classify(time.Date(2026, 1, 20, 13, 20, 0, 0, et)).Kind)
}

func TestSessionClassifier_WeekendBeatsHoliday(t *testing.T) {
	c, err := NewSessionClassifier("America/New_York", []string{"2026-01-03"})
	require.NoError(t, err)

	got := c.Classify(time.Date(2026, 1, 3, 10, 0, 0, 0, c.Location()))
	assert.Equal(t, domain.SessionClosedWeekend, got.Kind)
}

func TestSessionClassifier_UsesExchangeTime(t *testing.T) {
	c := newTestClassifier(t)

	// 14:35 UTC is 09:35 EST in January.
	winter := time.Date(2026, 1, 6, 14, 35, 0, 0, time.UTC)
	assert.Equal(t, domain.SessionRegular, c.Classify(winter).Kind)

	// 13:35 UTC is 09:35 EDT after the March change, 08:35 before it.
	assert.Equal(t, domain.SessionRegular, c.Classify(time.Date(2026, 3, 9, 13, 35, 0, 0, time.UTC)).Kind)
	assert.Equal(t, domain.SessionPreMarket, c.Classify(time.Date(2026, 3, 6, 13, 35, 0, 0, time.UTC)).Kind)

	// Monday 08:00 in Seoul is Sunday 18:00 in New York.
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionClosedWeekend, c.Classify(time.Date(2026, 1, 5, 8, 0, 0, 0, seoul)).Kind)
}

func TestSessionClassifier_Current(t *testing.T) {
	c := newTestClassifier(t)
	fixed := time.Date(2026, 1, 6, 17, 0, 0, 0, c.Location())
	c.WithClock(func() time.Time { return fixed })

	first := c.Current()
	second := c.Current()
	assert.Equal(t, domain.SessionAfterHours, first.Kind)
	assert.Equal(t, first, second)
	assert.Equal(t, "🌙 After-Hours", first.Label)
}

func TestSessionClassifier_IsHoliday(t *testing.T) {
	c := newTestClassifier(t)

	assert.True(t, c.IsHoliday(time.Date(2025, 12, 25, 12, 0, 0, 0, c.Location())))
	assert.False(t, c.IsHoliday(time.Date(2025, 12, 26, 12, 0, 0, 0, c.Location())))
	// 2026-01-02 03:00 UTC is still New Year's Day in New York.
	assert.True(t, c.IsHoliday(time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)))
}

func TestNewSessionClassifier_Errors(t *testing.T) {
	_, err := NewSessionClassifier("Mars/Olympus", nil)
	assert.Error(t, err)

	_, err = NewSessionClassifier("America/New_York", []string{"2026-13-01"})
	assert.Error(t, err)

	_, err = NewSessionClassifier("America/New_York", nil)
	assert.NoError(t, err)
}

func TestBandFor_OutOfRange(t *testing.T) {
	assert.Equal(t, domain.SessionClosedOther, bandFor(-1))
	assert.Equal(t, domain.SessionClosedOther, bandFor(minutesPerDay))
	assert.Equal(t, domain.SessionDayMarket, bandFor(minutesPerDay-1))
}
