package domain

import (
	"strings"
	"time"
)

// Status is the temporal classification of a contest relative to "now".
type Status string

const (
	StatusUpcoming Status = "UPCOMING"
	StatusRunning  Status = "RUNNING"
	StatusPast     Status = "PAST"
)

// ParseStatus accepts the canonical names case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusUpcoming:
		return StatusUpcoming, true
	case StatusRunning:
		return StatusRunning, true
	case StatusPast:
		return StatusPast, true
	default:
		return "", false
	}
}

// Classify maps a schedule to a status at instant now (all Unix seconds).
//
// The start instant is RUNNING. The end instant (start+duration) is already
// PAST, except when it coincides with the start instant.
//
//	start=1000 duration=0   now=1000 -> RUNNING
//	start=1000 duration=0   now=1001 -> PAST
//	start=1000 duration=100 now=1100 -> PAST
func Classify(start, duration, now int64) Status {
	switch {
	case now < start:
		return StatusUpcoming
	case now == start, now < start+duration:
		return StatusRunning
	default:
		return StatusPast
	}
}

// Reclassify returns copies of contests with Status recomputed at now.
func Reclassify(contests []Contest, now time.Time) []Contest {
	nowSec := now.Unix()
	out := make([]Contest, len(contests))
	for i, c := range contests {
		c.Status = Classify(c.StartTimeSeconds, c.DurationSeconds, nowSec)
		out[i] = c
	}
	return out
}
