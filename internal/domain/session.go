package domain

// SessionKind is the discrete state of the US equity venue at a given instant.
type SessionKind int

const (
	SessionClosedOther SessionKind = iota
	SessionPreMarket
	SessionRegular
	SessionAfterHours
	SessionDayMarket
	SessionClosedWeekend
	SessionClosedHoliday
)

var sessionKindNames = map[SessionKind]string{
	SessionClosedOther:   "CLOSED_OTHER",
	SessionPreMarket:     "PRE_MARKET",
	SessionRegular:       "REGULAR",
	SessionAfterHours:    "AFTER_HOURS",
	SessionDayMarket:     "DAY_MARKET",
	SessionClosedWeekend: "CLOSED_WEEKEND",
	SessionClosedHoliday: "CLOSED_HOLIDAY",
}

var sessionLabels = map[SessionKind]string{
	SessionClosedOther:   "⛔ Closed",
	SessionPreMarket:     "🌅 Pre-Market",
	SessionRegular:       "🔥 Open",
	SessionAfterHours:    "🌙 After-Hours",
	SessionDayMarket:     "☀️ Day Market",
	SessionClosedWeekend: "⛔ Closed (Weekend)",
	SessionClosedHoliday: "⛔ Closed (Holiday)",
}

func (k SessionKind) String() string {
	if name, ok := sessionKindNames[k]; ok {
		return name
	}
	return sessionKindNames[SessionClosedOther]
}

// Label returns the display text for the kind.
func (k SessionKind) Label() string {
	if label, ok := sessionLabels[k]; ok {
		return label
	}
	return sessionLabels[SessionClosedOther]
}

// IsClosed reports whether no session of any kind is trading.
func (k SessionKind) IsClosed() bool {
	switch k {
	case SessionClosedWeekend, SessionClosedHoliday, SessionClosedOther:
		return true
	default:
		return false
	}
}

// MarshalText encodes the kind by name so JSON payloads stay readable.
func (k SessionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SessionStatus is the result of one classification.
type SessionStatus struct {
	Kind  SessionKind `json:"kind"`
	Label string      `json:"label"`
}

// NewSessionStatus pairs a kind with its label.
func NewSessionStatus(kind SessionKind) SessionStatus {
	return SessionStatus{Kind: kind, Label: kind.Label()}
}
