package leetcode

import "encoding/json"

// response is the GraphQL envelope. A query selects either the paginated
// pastContests listing, the topTwoContests shortlist, or both.
type response struct {
	Data *struct {
		TopTwoContests json.RawMessage `json:"topTwoContests"`
		PastContests   *struct {
			PageNum     int             `json:"pageNum"`
			CurrentPage int             `json:"currentPage"`
			TotalNum    int             `json:"totalNum"`
			Data        json.RawMessage `json:"data"`
		} `json:"pastContests"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// contest is one entry of either list.
type contest struct {
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	StartTime int64  `json:"startTime"`
	Duration  int64  `json:"duration"`
}
