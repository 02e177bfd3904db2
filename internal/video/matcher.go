package video

import (
	"strings"
	"unicode"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// Tier is the matching rule that selected a candidate. Lower wins.
type Tier int

const (
	TierNone Tier = iota
	TierChannelAndName
	TierSignatureAndExactChannel
	TierOrderedWordsAndKeyword
)

func (t Tier) String() string {
	switch t {
	case TierChannelAndName:
		return "tier1"
	case TierSignatureAndExactChannel:
		return "tier2"
	case TierOrderedWordsAndKeyword:
		return "tier3"
	default:
		return "no_match"
	}
}

// Policy holds the fixed strings the tiers compare against.
// All values are expected lowercase.
type Policy struct {
	ChannelSignature string
	TitleSignature   string
	ExactChannel     string
	Keywords         []string
}

// DefaultPolicy targets the TLE Eliminators channel.
func DefaultPolicy() Policy {
	return Policy{
		ChannelSignature: "tle eliminators",
		TitleSignature:   "tle eliminators",
		ExactChannel:     "tle eliminators - by priyansh",
		Keywords: []string{
			"solution", "solutions", "editorial", "explanation",
			"explained", "discussion", "approach", "solve",
		},
	}
}

// Match picks the first candidate of the lowest tier that has any match.
func (p Policy) Match(contestName string, candidates []Candidate) (Candidate, Tier, bool) {
	full := domain.Normalize(contestName)
	base := domain.BaseName(contestName)
	if full == "" {
		return Candidate{}, TierNone, false
	}

	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = domain.Normalize(c.Title)
	}

	for _, tier := range []Tier{TierChannelAndName, TierSignatureAndExactChannel, TierOrderedWordsAndKeyword} {
		for i, c := range candidates {
			if p.matches(tier, c, titles[i], full, base) {
				return c, tier, true
			}
		}
	}
	return Candidate{}, TierNone, false
}

func (p Policy) matches(tier Tier, c Candidate, title, full, base string) bool {
	switch tier {
	case TierChannelAndName:
		return strings.Contains(c.Channel, p.ChannelSignature) &&
			strings.Contains(title, full)
	case TierSignatureAndExactChannel:
		return base != "" &&
			strings.Contains(title, base) &&
			strings.Contains(title, p.TitleSignature) &&
			c.Channel == p.ExactChannel
	case TierOrderedWordsAndKeyword:
		tokens := words(title)
		return containsInOrder(tokens, words(base)) && p.hasKeyword(tokens)
	}
	return false
}

// hasKeyword reports whether any keyword is one of the title tokens.
// "solve" does not match "unsolved".
func (p Policy) hasKeyword(tokens []string) bool {
	for _, tok := range tokens {
		for _, kw := range p.Keywords {
			if tok == kw {
				return true
			}
		}
	}
	return false
}

// words splits s on anything that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsInOrder reports whether want is a subsequence of have.
func containsInOrder(have, want []string) bool {
	if len(want) == 0 {
		return false
	}
	i := 0
	for _, w := range have {
		if w == want[i] {
			i++
			if i == len(want) {
				return true
			}
		}
	}
	return false
}

// ResolveVideo returns the watch URL of the best candidate on htmlPage for
// contestName under DefaultPolicy.
func ResolveVideo(contestName, htmlPage string) (string, bool) {
	c, _, ok := resolve(DefaultPolicy(), contestName, htmlPage)
	if !ok {
		return "", false
	}
	return c.WatchURL(), true
}

func resolve(p Policy, contestName, htmlPage string) (Candidate, Tier, bool) {
	payload, ok := Extract(htmlPage)
	if !ok {
		return Candidate{}, TierNone, false
	}
	return p.Match(contestName, Candidates(payload))
}
