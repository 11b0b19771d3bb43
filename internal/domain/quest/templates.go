package quest

import (
	"time"

	"github.com/okian/grindstone/internal/domain/model"
	"github.com/okian/grindstone/internal/domain/types"
)

// DefaultTemplates returns the built-in quest catalog. The push/pull/legs
// raid deliberately uses three exercise requirements so that completion
// demands all three movement patterns inside one week.
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:          "daily_show_up",
			Category:    types.QuestDaily,
			Name:        "Show Up",
			Description: "Complete one workout today",
			Requirements: []Requirement{
				{Metric: MetricWorkoutCount, Target: 1},
			},
			XP: 50,
		},
		{
			ID:          "daily_grinder",
			Category:    types.QuestDaily,
			Name:        "Grinder",
			Description: "Move 2,000 kg of total volume today",
			Requirements: []Requirement{
				{Metric: MetricVolume, Target: 2000},
			},
			XP: 75,
		},
		{
			ID:          "weekly_regular",
			Category:    types.QuestWeekly,
			Name:        "Regular",
			Description: "Train three times this week",
			Requirements: []Requirement{
				{Metric: MetricWorkoutCount, Target: 3},
			},
			XP: 200,
			Unlocks: []model.Reward{
				{Kind: model.RewardTemplate, Identifier: "tpl_upper_lower", Name: "Upper/Lower Split"},
			},
		},
		{
			ID:          "weekly_limit_breaker",
			Category:    types.QuestWeekly,
			Name:        "Limit Breaker",
			Description: "Log ten sets at RPE 8 or harder this week",
			Requirements: []Requirement{
				{Metric: MetricHighRPESets, Target: 10},
			},
			XP: 250,
		},
		{
			ID:          "raid_push_pull_legs",
			Category:    types.QuestRaid,
			Name:        "Triumvirate",
			Description: "Hit push, pull and legs in one week",
			Requirements: []Requirement{
				{Metric: MetricExercise, Exercise: "press", Target: 3},
				{Metric: MetricExercise, Exercise: "row", Target: 3},
				{Metric: MetricExercise, Exercise: "squat", Target: 3},
			},
			XP:       400,
			Lifetime: 7 * 24 * time.Hour,
			Unlocks: []model.Reward{
				{Kind: model.RewardAchievement, Identifier: "raid_triumvirate", Name: "Triumvirate"},
			},
		},
		{
			ID:          "raid_marathon_month",
			Category:    types.QuestRaid,
			Name:        "The Long Haul",
			Description: "Accumulate 50,000 kg of volume",
			Requirements: []Requirement{
				{Metric: MetricVolume, Target: 50000},
			},
			XP: 600,
			Unlocks: []model.Reward{
				{Kind: model.RewardTitle, Identifier: "title_hauler", Name: "Hauler"},
			},
		},
		{
			ID:          "boss_iron_tyrant",
			Category:    types.QuestBoss,
			Name:        "Iron Tyrant",
			Description: "Twenty heavy squat sets and 10,000 kg of volume in a week",
			Requirements: []Requirement{
				{Metric: MetricExercise, Exercise: "squat", Target: 20},
				{Metric: MetricVolume, Target: 10000},
			},
			XP:       1000,
			MinLevel: 10,
			Lifetime: 7 * 24 * time.Hour,
			Unlocks: []model.Reward{
				{Kind: model.RewardTitle, Identifier: "title_tyrant_slayer", Name: "Tyrant Slayer"},
				{Kind: model.RewardFeature, Identifier: "feat_boss_board", Name: "Boss Board"},
			},
		},
	}
}
