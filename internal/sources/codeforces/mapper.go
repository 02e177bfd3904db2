package codeforces

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/sources/shape"
)

const contestURLPrefix = "https://codeforces.com/contests/"

// Adapter converts Codeforces contest.list payloads to domain contests.
type Adapter struct{}

// New creates a new Codeforces adapter
func New() *Adapter {
	return &Adapter{}
}

// Name returns the source this adapter maps.
func (a *Adapter) Name() domain.SourceName {
	return domain.SourceCodeforces
}

// Adapt maps a raw payload. A payload that fails the shape guard yields no
// contests.
func (a *Adapter) Adapt(raw []byte) []domain.Contest {
	payload, ok := guard(raw)
	if !ok {
		return nil
	}

	entries := shape.Decode[contest](payload.Result)
	contests := make([]domain.Contest, 0, len(entries))
	for _, entry := range entries {
		// Contests without a scheduled start cannot be classified
		if entry.StartTimeSeconds == nil || entry.ID == 0 {
			continue
		}

		id := strconv.FormatInt(entry.ID, 10)
		contests = append(contests, domain.Contest{
			ID:               id,
			Source:           domain.SourceCodeforces,
			Name:             strings.TrimSpace(entry.Name),
			URL:              contestURLPrefix + id,
			StartTimeSeconds: *entry.StartTimeSeconds,
			DurationSeconds:  max(entry.DurationSeconds, 0),
		})
	}
	return contests
}

// guard accepts the payload only when status is the success sentinel and
// result is an array.
func guard(raw []byte) (response, bool) {
	var payload response
	if err := json.Unmarshal(raw, &payload); err != nil {
		return response{}, false
	}
	if payload.Status != statusOK || !shape.IsArray(payload.Result) {
		return response{}, false
	}
	return payload, true
}
