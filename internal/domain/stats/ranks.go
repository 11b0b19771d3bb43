package stats

import "github.com/okian/grindstone/internal/domain/types"

// Ability rank cutoffs, highest first. A total below every cutoff is F.
var abilityCutoffs = []struct {
	min  float64
	rank types.Rank
}{
	{190, types.RankSSS},
	{140, types.RankSS},
	{100, types.RankS},
	{70, types.RankA},
	{45, types.RankB},
	{25, types.RankC},
	{10, types.RankD},
}

// powerScale widens ability cutoffs for the power total, which sums the
// four abilities.
const powerScale = 4

// RankFor grades an ability total on the fixed letter scale.
func RankFor(total float64) types.Rank {
	for _, c := range abilityCutoffs {
		if total >= c.min {
			return c.rank
		}
	}
	return types.RankF
}

// PowerRankFor grades a power total.
func PowerRankFor(total float64) types.Rank {
	for _, c := range abilityCutoffs {
		if total >= c.min*powerScale {
			return c.rank
		}
	}
	return types.RankF
}
