// Package types contains the result shapes returned across layer
// boundaries. The calling API layer serializes these; the engine itself
// attaches json tags only so that callers do not have to re-map fields.
package types

import (
	"time"

	"github.com/okian/grindstone/internal/domain/model"
)

// Rank is a letter grade derived from absolute thresholds on a total.
type Rank string

const (
	RankF   Rank = "F"
	RankD   Rank = "D"
	RankC   Rank = "C"
	RankB   Rank = "B"
	RankA   Rank = "A"
	RankS   Rank = "S"
	RankSS  Rank = "SS"
	RankSSS Rank = "SSS"
)

// Breakdown itemizes how an ability total was assembled. Totals are always
// recomputed from the event log, never incremented in place.
type Breakdown struct {
	Base            float64 `json:"base"`
	FromEvents      float64 `json:"from_events"`
	FromRecords     float64 `json:"from_records"`
	FromConsistency float64 `json:"from_consistency"`
	FromBonus       float64 `json:"from_bonus"`
	Total           float64 `json:"total"`
}

// AbilityScore pairs a breakdown with its letter rank.
type AbilityScore struct {
	Breakdown
	Rank Rank `json:"rank"`
}

// StatSheet is the full derived stat block for a user.
type StatSheet struct {
	Strength    AbilityScore `json:"strength"`
	Endurance   AbilityScore `json:"endurance"`
	Agility     AbilityScore `json:"agility"`
	Flexibility AbilityScore `json:"flexibility"`
	Power       float64      `json:"power"`
	PowerRank   Rank         `json:"power_rank"`
}

// Criterion describes one tier criterion and how close the user is to it.
type Criterion struct {
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
	Current   float64 `json:"current"`
}

// TierSnapshot is the derived tier classification. It is never persisted as
// authoritative state; it is recomputable from events plus the catalog.
type TierSnapshot struct {
	Current         string      `json:"current"`
	Next            string      `json:"next,omitempty"`
	ProgressPercent float64     `json:"progress_percent"`
	Unmet           []Criterion `json:"unmet,omitempty"`
}

// QuestCategory groups quest templates by reset behavior.
type QuestCategory string

const (
	QuestDaily  QuestCategory = "daily"
	QuestWeekly QuestCategory = "weekly"
	QuestRaid   QuestCategory = "raid"
	QuestBoss   QuestCategory = "boss"
)

// QuestStatus is the quest state machine position. Completed and failed
// are terminal.
type QuestStatus string

const (
	QuestAvailable QuestStatus = "available"
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
)

// QuestRequirement is one measurable requirement with live progress.
type QuestRequirement struct {
	Metric   string  `json:"metric"`
	Exercise string  `json:"exercise,omitempty"`
	Current  float64 `json:"current"`
	Target   float64 `json:"target"`
}

// Quest is a materialized quest instance. Identity is (TemplateID,
// WindowStart): daily and weekly quests are regenerated each boundary,
// never mutated across it.
type Quest struct {
	ID              string             `json:"id"`
	TemplateID      string             `json:"template_id"`
	Category        QuestCategory      `json:"category"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Requirements    []QuestRequirement `json:"requirements"`
	TargetValue     float64            `json:"target_value"`
	CurrentValue    float64            `json:"current_value"`
	ProgressPercent float64            `json:"progress_percent"`
	Status          QuestStatus        `json:"status"`
	XP              int                `json:"xp"`
	WindowStart     time.Time          `json:"window_start"`
	ExpiresAt       time.Time          `json:"expires_at,omitzero"`
}

// ClaimOutcome discriminates the result of a quest claim so callers can
// branch without catching errors for business outcomes.
type ClaimOutcome string

const (
	ClaimClaimed        ClaimOutcome = "claimed"
	ClaimAlreadyClaimed ClaimOutcome = "already_claimed"
	ClaimNotCompleted   ClaimOutcome = "not_completed"
	ClaimNotFound       ClaimOutcome = "not_found"
)

// ClaimResult reports a quest claim. XP and NewlyUnlocked are only set on
// the claimed outcome; a repeated claim reports the existing outcome with
// nothing re-granted.
type ClaimResult struct {
	Outcome       ClaimOutcome         `json:"outcome"`
	XP            int                  `json:"xp"`
	NewlyUnlocked []model.UnlockRecord `json:"newly_unlocked,omitempty"`
}

// RewardOutcome accumulates a reward batch: total xp plus only the items
// that were not already owned.
type RewardOutcome struct {
	XP            int                  `json:"xp"`
	NewlyUnlocked []model.UnlockRecord `json:"newly_unlocked,omitempty"`
}

// UnlockSet is the full ledger for a user partitioned by kind.
type UnlockSet struct {
	Achievements []model.UnlockRecord     `json:"achievements"`
	Templates    []model.UnlockRecord     `json:"templates"`
	Features     []model.UnlockRecord     `json:"features"`
	Titles       []model.UnlockRecord     `json:"titles"`
	Counts       map[model.UnlockKind]int `json:"counts"`
	Total        int                      `json:"total"`
}
