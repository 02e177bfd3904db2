package codechef

import "encoding/json"

// statusSuccess is the success sentinel of the CodeChef contest list API.
const statusSuccess = "success"

// response is the envelope returned by /api/list/contests/all.
// future_contests is the field the shape guard requires; the other lists are
// mapped when present.
type response struct {
	Status          string          `json:"status"`
	Message         string          `json:"message,omitempty"`
	FutureContests  json.RawMessage `json:"future_contests"`
	PresentContests json.RawMessage `json:"present_contests"`
	PastContests    json.RawMessage `json:"past_contests"`
}

// contest is one entry of any of the contest lists.
type contest struct {
	ContestCode  string          `json:"contest_code"`
	ContestName  string          `json:"contest_name"`
	StartDateISO string          `json:"contest_start_date_iso"`
	EndDateISO   string          `json:"contest_end_date_iso"`
	Duration     json.RawMessage `json:"contest_duration"` // minutes, string or number
}
