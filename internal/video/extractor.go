// Package video resolves an explanation video for a contest from a search
// results page.
package video

import (
	"encoding/json"
	"regexp"
)

// initialData captures the JSON object assigned to ytInitialData in an
// inline script. First occurrence, non-greedy.
var initialData = regexp.MustCompile(`(?s)var ytInitialData = (\{.*?\});</script>`)

// Payload is the part of ytInitialData the matcher navigates.
type Payload struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []section `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

type section struct {
	ItemSectionRenderer *struct {
		Contents []item `json:"contents"`
	} `json:"itemSectionRenderer"`
}

type item struct {
	VideoRenderer *videoRenderer `json:"videoRenderer"`
}

type videoRenderer struct {
	VideoID   string `json:"videoId"`
	Title     text   `json:"title"`
	OwnerText text   `json:"ownerText"`
}

type text struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

// Extract pulls the embedded results payload out of html. It reports false
// when the marker is missing or the captured text is not valid JSON.
func Extract(html string) (*Payload, bool) {
	m := initialData.FindStringSubmatch(html)
	if m == nil {
		return nil, false
	}

	var p Payload
	if err := json.Unmarshal([]byte(m[1]), &p); err != nil {
		return nil, false
	}
	return &p, true
}
