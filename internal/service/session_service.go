package service

import (
	"fmt"
	"time"
	_ "time/tzdata" // exchange zones must resolve on hosts without zoneinfo

	"weeklypay_go/internal/domain"
)

// Minute-of-day boundaries in exchange local time. Bands are half-open [a, b).
const (
	minutePreMarketOpen  = 4 * 60
	minuteRegularOpen    = 9*60 + 30
	minuteRegularClose   = 16 * 60
	minuteDayMarketStart = 20 * 60 // after-hours end
	minutesPerDay        = 24 * 60
)

// SessionClassifier maps an instant to the US venue session it falls in.
type SessionClassifier struct {
	loc      *time.Location
	holidays map[string]struct{}
	now      func() time.Time
}

// NewSessionClassifier creates a classifier for the exchange timezone and
// its full-day holidays (YYYY-MM-DD, exchange local dates).
func NewSessionClassifier(timezone string, holidays []string) (*SessionClassifier, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange timezone %q: %w", timezone, err)
	}

	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		d, err := time.Parse(time.DateOnly, h)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", h, err)
		}
		set[d.Format(time.DateOnly)] = struct{}{}
	}

	return &SessionClassifier{
		loc:      loc,
		holidays: set,
		now:      time.Now,
	}, nil
}

// WithClock replaces the time source (for tests and replay).
func (c *SessionClassifier) WithClock(now func() time.Time) *SessionClassifier {
	c.now = now
	return c
}

// Current classifies the present instant.
func (c *SessionClassifier) Current() domain.SessionStatus {
	return c.Classify(c.now())
}

// Classify returns the session for t. Rules apply in order, first match wins:
// weekend, holiday, then time bands.
//
// A holiday only closes the venue until 20:00 local; from then on the
// overnight day market of the next session is considered open.
func (c *SessionClassifier) Classify(t time.Time) domain.SessionStatus {
	local := t.In(c.loc)
	minute := local.Hour()*60 + local.Minute()

	switch wd := local.Weekday(); {
	case wd == time.Saturday:
		return domain.NewSessionStatus(domain.SessionClosedWeekend)
	case wd == time.Sunday && minute < minuteDayMarketStart:
		return domain.NewSessionStatus(domain.SessionClosedWeekend)
	}

	if c.IsHoliday(local) && minute < minuteDayMarketStart {
		return domain.NewSessionStatus(domain.SessionClosedHoliday)
	}

	return domain.NewSessionStatus(bandFor(minute))
}

// IsHoliday reports whether t falls on a configured holiday in exchange time.
func (c *SessionClassifier) IsHoliday(t time.Time) bool {
	_, ok := c.holidays[t.In(c.loc).Format(time.DateOnly)]
	return ok
}

// Location returns the exchange timezone.
func (c *SessionClassifier) Location() *time.Location {
	return c.loc
}

func bandFor(minute int) domain.SessionKind {
	switch {
	case minute < 0 || minute >= minutesPerDay:
		return domain.SessionClosedOther
	case minute >= minutePreMarketOpen && minute < minuteRegularOpen:
		return domain.SessionPreMarket
	case minute >= minuteRegularOpen && minute < minuteRegularClose:
		return domain.SessionRegular
	case minute >= minuteRegularClose && minute < minuteDayMarketStart:
		return domain.SessionAfterHours
	default:
		return domain.SessionDayMarket
	}
}
