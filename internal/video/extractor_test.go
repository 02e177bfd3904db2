package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFindsPayload(t *testing.T) {
	page := searchPage(t, fixture{id: "abc123", title: "Weekly Contest 400", channel: "Someone"})

	p, ok := Extract(page)
	require.True(t, ok)

	cands := Candidates(p)
	require.Len(t, cands, 1)
	assert.Equal(t, "abc123", cands[0].VideoID)
	assert.Equal(t, "someone", cands[0].Channel)
}

func TestExtractNotFound(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "empty", html: ""},
		{name: "no marker", html: `<html><script>var somethingElse = {"a":1};</script></html>`},
		{name: "marker without script close", html: `var ytInitialData = {"contents":{}}`},
		{name: "malformed json", html: `<script>var ytInitialData = {"contents": {broken};</script>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Extract(tt.html)
			assert.False(t, ok)
			assert.Nil(t, p)
		})
	}
}

func TestCandidatesConcatenatesRunsAndDropsIncomplete(t *testing.T) {
	html := `<script>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[
		{"itemSectionRenderer":{"contents":[
			{"videoRenderer":{"videoId":"v1","title":{"runs":[{"text":"Codeforces "},{"text":"Round 950"}]},"ownerText":{"runs":[{"text":"TLE Eliminators - by Priyansh"},{"text":"ignored"}]}}},
			{"videoRenderer":{"title":{"runs":[{"text":"no id"}]}}},
			{"videoRenderer":{"videoId":"v3","title":{"runs":[]}}},
			{"videoRenderer":{"videoId":"v4","title":{"runs":[{"text":"no owner"}]}}}
		]}}
	]}}}}};</script>`

	p, ok := Extract(html)
	require.True(t, ok)

	cands := Candidates(p)
	require.Len(t, cands, 2)
	assert.Equal(t, Candidate{VideoID: "v1", Title: "Codeforces Round 950", Channel: "tle eliminators - by priyansh"}, cands[0])
	assert.Equal(t, "v4", cands[1].VideoID)
	assert.Empty(t, cands[1].Channel)
}

func TestCandidatesTrimChannel(t *testing.T) {
	html := `<script>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[
		{"itemSectionRenderer":{"contents":[
			{"videoRenderer":{"videoId":"v1","title":{"runs":[{"text":"Codeforces Round 950 TLE Eliminators"}]},"ownerText":{"runs":[{"text":"  TLE Eliminators - by Priyansh \n"}]}}}
		]}}
	]}}}}};</script>`

	p, ok := Extract(html)
	require.True(t, ok)

	cands := Candidates(p)
	require.Len(t, cands, 1)
	assert.Equal(t, "tle eliminators - by priyansh", cands[0].Channel)

	_, tier, ok := DefaultPolicy().Match("Codeforces Round 950 (Div. 3)", cands)
	require.True(t, ok)
	assert.Equal(t, TierSignatureAndExactChannel, tier)
}

func TestCandidatesNilPayload(t *testing.T) {
	assert.Nil(t, Candidates(nil))
}
