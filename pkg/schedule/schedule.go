// Package schedule reads the weekly airing schedule and finds the next episode to air.
package schedule

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Slot is one recurring weekly airing. Times are UTC.
type Slot struct {
	Day      time.Weekday `json:"day"`
	Hour     int          `json:"hour"`
	Minute   int          `json:"minute"`
	Title    string       `json:"title"`
	Page     string       `json:"page,omitempty"`
	ImageURL string       `json:"imageUrl,omitempty"`
}

// Clock is the slot time as HH:MM
func (s Slot) Clock() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// On returns the slot's time of day on the date of t in UTC
func (s Slot) On(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), s.Hour, s.Minute, 0, 0, time.UTC)
}

// Schedule holds slots ordered Monday to Sunday, keeping source order within a day
type Schedule struct {
	Slots []Slot `json:"slots"`
}

// Day returns the slots airing on d
func (s Schedule) Day(d time.Weekday) []Slot {
	var out []Slot
	for _, slot := range s.Slots {
		if slot.Day == d {
			out = append(out, slot)
		}
	}
	return out
}

// Airing is a concrete upcoming airing
type Airing struct {
	Slot Slot      `json:"slot"`
	At   time.Time `json:"at"`
}

// Until is the time left before the airing
func (a Airing) Until(now time.Time) time.Duration {
	return a.At.Sub(now)
}

// NextAiring projects every slot's time of day onto now's UTC date and returns the earliest one strictly
// after now. The slot weekday is not consulted, and ties keep source order. Nothing rolls over to the next day.
func NextAiring(s Schedule, now time.Time) (Airing, bool) {
	now = now.UTC()

	var next Airing
	found := false
	for _, slot := range s.Slots {
		at := slot.On(now)
		if !at.After(now) {
			continue
		}
		if !found || at.Before(next.At) {
			next = Airing{Slot: slot, At: at}
			found = true
		}
	}
	return next, found
}

// Render writes the week grouped by day with the next airing marked
func Render(w io.Writer, s Schedule, now time.Time) error {
	next, hasNext := NextAiring(s, now)

	var b strings.Builder
	for _, day := range weekdays {
		slots := s.Day(day)
		if len(slots) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n%s:\n", day)
		for _, slot := range slots {
			if hasNext && slot == next.Slot {
				fmt.Fprintf(&b, "  → %s UTC - %s (Next)\n", slot.Clock(), slot.Title)
				continue
			}
			fmt.Fprintf(&b, "  %s UTC - %s\n", slot.Clock(), slot.Title)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// weekdays in display order
var weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}
