package changelog

import (
	"math"
	"sort"

	"github.com/redgit/redgit/internal/git"
)

// ContributorStats aggregates per-author commit counts and line totals,
// with each author's percentage share of total commits expressed to one
// decimal. Shares are apportioned so they always sum to exactly 100.0.
// Authors are sorted by commit count descending; ties keep a stable
// lexical order by name so output is deterministic.
func ContributorStats(commits []git.Commit) []ContributorStat {
	if len(commits) == 0 {
		return nil
	}

	byAuthor := make(map[string]*ContributorStat)
	for _, c := range commits {
		stat, ok := byAuthor[c.Author]
		if !ok {
			stat = &ContributorStat{Name: c.Author, Email: c.Email}
			byAuthor[c.Author] = stat
		}
		stat.Commits++
		stat.Additions += c.Insertions
		stat.Deletions += c.Deletions
	}

	stats := make([]ContributorStat, 0, len(byAuthor))
	for _, stat := range byAuthor {
		stats = append(stats, *stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Commits != stats[j].Commits {
			return stats[i].Commits > stats[j].Commits
		}
		return stats[i].Name < stats[j].Name
	})

	assignPercentages(stats, len(commits))

	return stats
}

// assignPercentages distributes percentage shares in tenths of a percent
// using largest-remainder apportionment. Rounding each share
// independently can drift the sum away from 100.0 (six equal authors
// would each round to 16.7, summing to 100.2); flooring every share and
// handing the leftover tenths to the largest fractional remainders keeps
// the total at exactly 100.0.
func assignPercentages(stats []ContributorStat, total int) {
	tenths := make([]int, len(stats))
	remainders := make([]float64, len(stats))
	assigned := 0
	for i, stat := range stats {
		exact := float64(stat.Commits) / float64(total) * 1000
		floor := math.Floor(exact)
		tenths[i] = int(floor)
		remainders[i] = exact - floor
		assigned += tenths[i]
	}

	order := make([]int, len(stats))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for i := 0; i < 1000-assigned && i < len(order); i++ {
		tenths[order[i]]++
	}

	for i := range stats {
		stats[i].Percentage = float64(tenths[i]) / 10
	}
}
