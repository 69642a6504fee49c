package tracking

import "time"

// KindCount is the number of events of one kind
type KindCount struct {
	Kind       string  `json:"kind"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SoundUsage aggregates the events recorded for one sound id
type SoundUsage struct {
	SoundID  int       `json:"sound_id"`
	Played   int       `json:"played"`
	Muted    int       `json:"muted"`
	Dropped  int       `json:"dropped"` // released or uninitialized engine
	Unknown  int       `json:"unknown"`
	LastSeen time.Time `json:"last_seen"`
}

// Total is every event recorded for the sound
func (u SoundUsage) Total() int {
	return u.Played + u.Muted + u.Dropped + u.Unknown
}

// Summary is the result of a stats query
type Summary struct {
	TotalEvents int          `json:"total_events"`
	Sessions    int          `json:"sessions"`
	Kinds       []KindCount  `json:"kinds"`
	Sounds      []SoundUsage `json:"sounds"`
}
