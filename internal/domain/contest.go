package domain

// SourceName identifies one external provider of contest listings.
type SourceName string

const (
	SourceCodeforces SourceName = "codeforces"
	SourceCodeChef   SourceName = "codechef"
	SourceLeetCode   SourceName = "leetcode"
)

// Contest represents one normalized contest listing.
//
// It is NOT tied to any upstream schema. Every source adapter maps its own
// payload into this structure. A Contest is uniquely identified by the pair
// (Source, ID); see Key.
//
// Contests are values: aggregation returns copies and nothing mutates a
// Contest once the aggregator has produced it.
type Contest struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is unique only within Source.
	// Integer upstream ids are rendered in base 10.
	ID string `json:"id"`

	// Source is the provider this contest was listed by.
	Source SourceName `json:"source"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	// Name is the display title with source-specific noise stripped.
	Name string `json:"name"`

	// URL is the canonical deep link into the source's own site.
	URL string `json:"url"`

	// ─────────────────────────────
	// Schedule
	// ─────────────────────────────

	// StartTimeSeconds is the Unix epoch start time.
	StartTimeSeconds int64 `json:"startTimeSeconds"`

	// DurationSeconds may be 0 when the source omits it.
	DurationSeconds int64 `json:"durationSeconds"`

	// Status is derived from the schedule and the classification instant.
	// It is not authoritative; see Reclassify.
	Status Status `json:"status"`
}

// Key returns the global identity of the contest.
func (c Contest) Key() string {
	return Key(c.Source, c.ID)
}

// EndTimeSeconds returns the Unix epoch end time.
func (c Contest) EndTimeSeconds() int64 {
	return c.StartTimeSeconds + c.DurationSeconds
}

// Key renders a (source, id) composite key.
// Example: Key("codeforces", "1984") -> "codeforces:1984"
func Key(source SourceName, id string) string {
	return string(source) + ":" + id
}
