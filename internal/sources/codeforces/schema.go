package codeforces

import "encoding/json"

// statusOK is the success sentinel of the Codeforces API envelope.
const statusOK = "OK"

// response is the envelope returned by /api/contest.list.
// Result stays raw until the shape guard has confirmed it is an array.
type response struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment,omitempty"`
	Result  json.RawMessage `json:"result"`
}

// contest is one entry of the result array.
type contest struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Phase            string `json:"phase"`
	DurationSeconds  int64  `json:"durationSeconds"`
	StartTimeSeconds *int64 `json:"startTimeSeconds"`
}
