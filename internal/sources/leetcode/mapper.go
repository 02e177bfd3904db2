package leetcode

import (
	"encoding/json"
	"strings"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/sources/shape"
)

const contestURLPrefix = "https://leetcode.com/contest/"

// Adapter converts LeetCode GraphQL payloads to domain contests.
type Adapter struct{}

// New creates a new LeetCode adapter
func New() *Adapter {
	return &Adapter{}
}

// Name returns the source this adapter maps.
func (a *Adapter) Name() domain.SourceName {
	return domain.SourceLeetCode
}

// Adapt merges the paginated listing and the top-N shortlist into one
// candidate list before mapping.
func (a *Adapter) Adapt(raw []byte) []domain.Contest {
	candidates, ok := guard(raw)
	if !ok {
		return nil
	}

	contests := make([]domain.Contest, 0, len(candidates))
	for _, entry := range candidates {
		slug := strings.TrimSpace(entry.TitleSlug)
		if slug == "" || entry.StartTime <= 0 {
			continue
		}
		contests = append(contests, domain.Contest{
			ID:               slug,
			Source:           domain.SourceLeetCode,
			Name:             strings.TrimSpace(entry.Title),
			URL:              contestURLPrefix + slug,
			StartTimeSeconds: entry.StartTime,
			DurationSeconds:  max(entry.Duration, 0),
		})
	}
	return contests
}

// guard returns the merged candidate list. It fails when the payload carries
// neither the listing nor the shortlist as an array.
func guard(raw []byte) ([]contest, bool) {
	var payload response
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Data == nil {
		return nil, false
	}

	var lists []json.RawMessage
	if past := payload.Data.PastContests; past != nil && shape.IsArray(past.Data) {
		lists = append(lists, past.Data)
	}
	if shape.IsArray(payload.Data.TopTwoContests) {
		lists = append(lists, payload.Data.TopTwoContests)
	}
	if len(lists) == 0 {
		return nil, false
	}

	var candidates []contest
	for _, list := range lists {
		candidates = append(candidates, shape.Decode[contest](list)...)
	}
	return candidates, true
}
