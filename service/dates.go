package services

import (
	"time"
)

const dateLayout = "2006-01-02"

// expiringSoonDays is the window counted by the "expiring soon" statistic.
const expiringSoonDays = 30

// ParseExpiry reads an ISO calendar date as local midnight in loc.
// Full RFC 3339 timestamps are accepted as well.
func ParseExpiry(expiry string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation(dateLayout, expiry, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, expiry); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// DaysUntil counts whole 24h periods from now until expiry, truncated toward zero.
// An expiry earlier today is day 0, yesterday is -1. ok is false for an unparseable date.
func DaysUntil(expiry string, now time.Time) (days int, ok bool) {
	t, ok := ParseExpiry(expiry, now.Location())
	if !ok {
		return 0, false
	}
	return int(t.Sub(now).Hours() / 24), true
}

// withinDays reports 0 <= DaysUntil(expiry) <= n. Past-due and unparseable dates are never within.
func withinDays(expiry string, now time.Time, n int) bool {
	days, ok := DaysUntil(expiry, now)
	return ok && days >= 0 && days <= n
}

// IsExpiringSoon reports whether expiry falls in the next 30 days.
func IsExpiringSoon(expiry string, now time.Time) bool {
	return withinDays(expiry, now, expiringSoonDays)
}

// FormatDisplayDate renders an ISO date as "Jan 02, 2006". Unparseable input is returned unchanged.
func FormatDisplayDate(expiry string) string {
	t, ok := ParseExpiry(expiry, time.UTC)
	if !ok {
		return expiry
	}
	return t.Format("Jan 02, 2006")
}
