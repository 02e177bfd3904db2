package codechef

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/sources/shape"
)

const contestURLPrefix = "https://www.codechef.com/"

// trailingParenthetical matches one rating/division annotation at the end of
// a contest name, e.g. "Starters 140 (Rated till 6 Stars)".
var trailingParenthetical = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

// Adapter converts CodeChef contest list payloads to domain contests.
type Adapter struct{}

// New creates a new CodeChef adapter
func New() *Adapter {
	return &Adapter{}
}

// Name returns the source this adapter maps.
func (a *Adapter) Name() domain.SourceName {
	return domain.SourceCodeChef
}

// Adapt maps future, present and past contests, in that order.
func (a *Adapter) Adapt(raw []byte) []domain.Contest {
	payload, ok := guard(raw)
	if !ok {
		return nil
	}

	var contests []domain.Contest
	for _, list := range []json.RawMessage{payload.FutureContests, payload.PresentContests, payload.PastContests} {
		for _, entry := range shape.Decode[contest](list) {
			if c, ok := mapContest(entry); ok {
				contests = append(contests, c)
			}
		}
	}
	return contests
}

func mapContest(entry contest) (domain.Contest, bool) {
	code := strings.TrimSpace(entry.ContestCode)
	if code == "" {
		return domain.Contest{}, false
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(entry.StartDateISO))
	if err != nil {
		return domain.Contest{}, false
	}

	return domain.Contest{
		ID:               code,
		Source:           domain.SourceCodeChef,
		Name:             CleanName(entry.ContestName),
		URL:              contestURLPrefix + code,
		StartTimeSeconds: start.Unix(),
		DurationSeconds:  duration(entry, start),
	}, true
}

// duration prefers end-start; the minutes field is the fallback.
func duration(entry contest, start time.Time) int64 {
	if end, err := time.Parse(time.RFC3339, strings.TrimSpace(entry.EndDateISO)); err == nil && !end.Before(start) {
		return end.Unix() - start.Unix()
	}
	if minutes, ok := parseMinutes(entry.Duration); ok {
		return minutes * 60
	}
	return 0
}

// parseMinutes accepts both "180" and 180.
func parseMinutes(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		return n, err == nil && n >= 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil && n >= 0 {
		return n, true
	}
	return 0, false
}

// CleanName strips a single trailing parenthetical suffix. It is applied
// once: "A (x) (y)" becomes "A (x)".
func CleanName(name string) string {
	return strings.TrimSpace(trailingParenthetical.ReplaceAllString(strings.TrimSpace(name), ""))
}

// guard accepts the payload only when status is the success sentinel and
// future_contests is present as an array.
func guard(raw []byte) (response, bool) {
	var payload response
	if err := json.Unmarshal(raw, &payload); err != nil {
		return response{}, false
	}
	if payload.Status != statusSuccess || !shape.IsArray(payload.FutureContests) {
		return response{}, false
	}
	return payload, true
}
