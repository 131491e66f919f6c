package assetpack

import "time"

// epoch is the modification time reported for remote sources, whose
// freshness cannot be checked cheaply.
var epoch = time.Unix(0, 0).UTC()

type modState uint8

const (
	modNotComputed modState = iota
	modUnavailable
	modValue
)

// ModTime is a lazily computed modification time. The zero value is
// "not computed yet", which is distinct from "computed, but the variant has
// no timestamp" (Unavailable).
type ModTime struct {
	state modState
	t     time.Time
}

// Unavailable returns a ModTime that was computed and found to have no value.
func Unavailable() ModTime { return ModTime{state: modUnavailable} }

// At returns a ModTime holding t.
func At(t time.Time) ModTime { return ModTime{state: modValue, t: t} }

// Computed reports whether the value has been resolved.
func (m ModTime) Computed() bool { return m.state != modNotComputed }

// Get returns the timestamp and whether one is available.
func (m ModTime) Get() (time.Time, bool) {
	return m.t, m.state == modValue
}

func (m ModTime) String() string {
	switch m.state {
	case modNotComputed:
		return "not computed"
	case modUnavailable:
		return "unavailable"
	}
	return m.t.Format(time.RFC3339)
}

// memo returns the cached value in *m, computing it with fn on first use.
func (m *ModTime) memo(fn func() ModTime) ModTime {
	if !m.Computed() {
		*m = fn()
	}
	return *m
}

// dateToken renders t as the YYYYMMDD token used for cache busting. The
// epoch always renders as 19700101, whatever the location.
func dateToken(t time.Time, loc *time.Location) string {
	if t.Equal(epoch) {
		return "19700101"
	}
	return t.In(loc).Format("20060102")
}
