package sources

import "github.com/MrSnakeDoc/contesthub/internal/domain"

const (
	leetcodeGraphQL = "https://leetcode.com/graphql"

	leetcodeTopTwoQuery = `{"query":"{ topTwoContests { title titleSlug startTime duration } }"}`
	leetcodePastQuery   = `{"query":"query pastContests($pageNo: Int) { pastContests(pageNo: $pageNo) { pageNum currentPage totalNum data { title titleSlug startTime duration } } }","variables":{"pageNo":1}}`
)

// Defaults returns the built-in source configuration used when no sources
// file is configured.
func Defaults() []domain.ContestSource {
	return []domain.ContestSource{
		{
			Name: domain.SourceCodeforces,
			Endpoints: []domain.Endpoint{
				{URL: "https://codeforces.com/api/contest.list?gym=false"},
			},
		},
		{
			Name: domain.SourceCodeChef,
			Endpoints: []domain.Endpoint{
				{URL: "https://www.codechef.com/api/list/contests/all?sort_by=START&sorting_order=asc&offset=0&mode=all"},
			},
		},
		{
			Name: domain.SourceLeetCode,
			Endpoints: []domain.Endpoint{
				{URL: leetcodeGraphQL, Body: leetcodeTopTwoQuery},
				{URL: leetcodeGraphQL, Body: leetcodePastQuery},
			},
		},
	}
}
