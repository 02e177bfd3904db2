package video

import (
	"encoding/json"
	"testing"
)

type fixture struct {
	id, title, channel string
}

// searchPage renders a minimal results page holding the given videos.
func searchPage(t *testing.T, videos ...fixture) string {
	t.Helper()

	items := make([]map[string]any, 0, len(videos)+1)
	items = append(items, map[string]any{"channelRenderer": map[string]any{"channelId": "UC123"}})
	for _, v := range videos {
		renderer := map[string]any{
			"videoId":   v.id,
			"title":     map[string]any{"runs": []map[string]string{{"text": v.title}}},
			"ownerText": map[string]any{"runs": []map[string]string{{"text": v.channel}}},
		}
		items = append(items, map[string]any{"videoRenderer": renderer})
	}

	data := map[string]any{
		"contents": map[string]any{
			"twoColumnSearchResultsRenderer": map[string]any{
				"primaryContents": map[string]any{
					"sectionListRenderer": map[string]any{
						"contents": []any{
							map[string]any{"itemSectionRenderer": map[string]any{"contents": items}},
							map[string]any{"continuationItemRenderer": map[string]any{}},
						},
					},
				},
			},
		},
	}

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return `<html><head><script nonce="x">var ytInitialData = ` + string(raw) +
		`;</script><script>var other = {"a":1};</script></head><body></body></html>`
}
