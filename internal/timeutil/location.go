package timeutil

import (
	"fmt"
	"sync"
	"time"
)

// DefaultZone is the business time zone used when none is configured.
const DefaultZone = "America/Toronto"

var (
	mu  sync.RWMutex
	loc = mustLoad(DefaultZone)
)

func mustLoad(name string) *time.Location {
	l, err := time.LoadLocation(name)
	if err != nil {
		// Eastern standard time when the zone database is missing.
		return time.FixedZone("EST", -5*60*60)
	}
	return l
}

// SetLocation switches the business time zone to the named IANA zone.
func SetLocation(name string) error {
	l, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load time zone %q: %w", name, err)
	}
	mu.Lock()
	loc = l
	mu.Unlock()
	return nil
}

// Location returns the business time zone.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return loc
}

// Now returns the current time in the business time zone.
func Now() time.Time {
	return time.Now().In(Location())
}

// Local converts t to the business time zone.
func Local(t time.Time) time.Time {
	return t.In(Location())
}

// ParseDate parses a YYYY-MM-DD date at midnight in the business time zone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location())
}

const (
	DateLayout    = "2006-01-02"
	DisplayLayout = "02 Jan 2006, 03:04 PM"
)
