package video

import "strings"

// Candidate is one video result considered by the matcher.
type Candidate struct {
	VideoID string
	Title   string
	Channel string // lowercased, trimmed
}

// WatchURL is the canonical link for the candidate.
func (c Candidate) WatchURL() string {
	return watchURLPrefix + c.VideoID
}

const watchURLPrefix = "https://www.youtube.com/watch?v="

// Candidates flattens the payload's video results in page order, dropping
// entries without an id or title.
func Candidates(p *Payload) []Candidate {
	if p == nil {
		return nil
	}

	var out []Candidate
	for _, sec := range p.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents {
		if sec.ItemSectionRenderer == nil {
			continue
		}
		for _, it := range sec.ItemSectionRenderer.Contents {
			vr := it.VideoRenderer
			if vr == nil || vr.VideoID == "" || len(vr.Title.Runs) == 0 {
				continue
			}

			var title strings.Builder
			for _, r := range vr.Title.Runs {
				title.WriteString(r.Text)
			}

			channel := ""
			if len(vr.OwnerText.Runs) > 0 {
				channel = strings.ToLower(strings.TrimSpace(vr.OwnerText.Runs[0].Text))
			}

			out = append(out, Candidate{
				VideoID: vr.VideoID,
				Title:   title.String(),
				Channel: channel,
			})
		}
	}
	return out
}
