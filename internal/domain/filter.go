package domain

import (
	"strings"
	"time"
)

// FilterState is a client-held predicate set applied to the last fetched
// collection. Applying it never touches the network.
type FilterState struct {
	Services  []string
	Amenities []string
	City      string
	State     string
	MinRating float64
	// OpenAt keeps only salons open at that instant; zero disables it.
	OpenAt time.Time
}

func (f FilterState) IsZero() bool {
	return len(f.Services) == 0 && len(f.Amenities) == 0 && f.City == "" &&
		f.State == "" && f.MinRating == 0 && f.OpenAt.IsZero()
}

// Apply returns the salons of src matching every predicate, in source order.
// src is not modified.
func (f FilterState) Apply(src []Salon) []Salon {
	out := make([]Salon, 0, len(src))
	for _, s := range src {
		if f.matches(s) {
			out = append(out, s)
		}
	}
	return out
}

func (f FilterState) matches(s Salon) bool {
	if !containsAllFold(s.Services, f.Services) || !containsAllFold(s.Amenities, f.Amenities) {
		return false
	}
	if f.City != "" && !strings.EqualFold(strings.TrimSpace(s.Location.City), strings.TrimSpace(f.City)) {
		return false
	}
	if f.State != "" && !strings.EqualFold(strings.TrimSpace(s.Location.State), strings.TrimSpace(f.State)) {
		return false
	}
	if s.Rating < f.MinRating {
		return false
	}
	if !f.OpenAt.IsZero() && !s.OpenAt(f.OpenAt) {
		return false
	}
	return true
}

func containsAllFold(have, want []string) bool {
	for _, w := range want {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		found := false
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(h), w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

var weekdays = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// OpenAt reports whether the salon is open at t. Salons without opening hours
// are treated as open; an empty WorkingDays list means every day.
func (s Salon) OpenAt(t time.Time) bool {
	if len(s.WorkingDays) > 0 {
		day := weekdays[t.Weekday()]
		ok := false
		for _, d := range s.WorkingDays {
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(d)), day) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	open, okOpen := minutesOfDay(s.OpeningTime)
	closing, okClose := minutesOfDay(s.ClosingTime)
	if !okOpen || !okClose {
		return true
	}
	now := t.Hour()*60 + t.Minute()
	if closing <= open { // past midnight
		return now >= open || now < closing
	}
	return now >= open && now < closing
}

func minutesOfDay(hhmm string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
