// Package temporal weights dated records by recency.
package temporal

import (
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultHalfLifeDays is the age at which a record counts half as much as today's
	DefaultHalfLifeDays = 21.0
	// UnknownDateWeight is used for dates that do not parse
	UnknownDateWeight = 0.5
)

// DateLayout is the layout of diary file stems
const DateLayout = "2006-01-02"

// Weight returns 2^(-daysAgo/halfLifeDays) for a YYYY-MM-DD date seen from ref.
// Future dates count as today. A non-positive half-life uses DefaultHalfLifeDays.
func Weight(date string, ref time.Time, halfLifeDays float64) float64 {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return UnknownDateWeight
	}
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}

	w := math.Exp2(-float64(DaysBetween(d, ref)) / halfLifeDays)
	if w == 0 {
		// keep very old records strictly positive
		w = math.SmallestNonzeroFloat64
	}
	return w
}

// DaysBetween counts whole calendar days from d to ref, clamped at zero
func DaysBetween(d, ref time.Time) int {
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// dateCacheSize bounds the memoized dates of one Weighter
const dateCacheSize = 4096

// Weighter binds a reference time and half-life and memoizes weights per date
type Weighter struct {
	ref      time.Time
	halfLife float64
	cache    *lru.Cache[string, float64]
}

// New creates a Weighter. A non-positive half-life uses DefaultHalfLifeDays.
func New(ref time.Time, halfLifeDays float64) *Weighter {
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	// only fails for a non-positive size
	cache, _ := lru.New[string, float64](dateCacheSize)
	return &Weighter{ref: ref, halfLife: halfLifeDays, cache: cache}
}

// HalfLifeDays is the effective half-life
func (w *Weighter) HalfLifeDays() float64 {
	return w.halfLife
}

// Weight weighs date against the bound reference time
func (w *Weighter) Weight(date string) float64 {
	if v, ok := w.cache.Get(date); ok {
		return v
	}
	v := Weight(date, w.ref, w.halfLife)
	w.cache.Add(date, v)
	return v
}
