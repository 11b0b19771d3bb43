package model

import "time"

// RewardKind tags the reward variant carried by a Reward value.
type RewardKind string

const (
	RewardXP          RewardKind = "xp"
	RewardAchievement RewardKind = "achievement"
	RewardTemplate    RewardKind = "template"
	RewardFeature     RewardKind = "feature"
	RewardTitle       RewardKind = "title"
)

// Reward is a tagged union of the reward variants a quest or tier can pay
// out. Amount is meaningful for xp rewards; Identifier and Name for the
// unlockable kinds.
type Reward struct {
	Kind       RewardKind
	Amount     int
	Identifier string
	Name       string
}

// XP builds an xp reward.
func XP(amount int) Reward {
	return Reward{Kind: RewardXP, Amount: amount}
}

// Unlockable reports whether the reward is recorded in the unlock ledger.
// XP is additive and handled by the caller, not the ledger.
func (r Reward) Unlockable() bool {
	return r.Kind != RewardXP && r.Identifier != ""
}

// UnlockKind classifies ledger records. It mirrors the unlockable reward
// kinds plus nothing else: xp never reaches the ledger.
type UnlockKind string

const (
	UnlockAchievement UnlockKind = "achievement"
	UnlockTemplate    UnlockKind = "template"
	UnlockFeature     UnlockKind = "feature"
	UnlockTitle       UnlockKind = "title"
)

// UnlockKindFor maps a reward kind onto its ledger kind. The bool is false
// for xp and unknown kinds.
func UnlockKindFor(k RewardKind) (UnlockKind, bool) {
	switch k {
	case RewardAchievement:
		return UnlockAchievement, true
	case RewardTemplate:
		return UnlockTemplate, true
	case RewardFeature:
		return UnlockFeature, true
	case RewardTitle:
		return UnlockTitle, true
	default:
		return "", false
	}
}

// UnlockRecord is the permanent, create-once record of a grant. The tuple
// (UserID, Kind, Identifier) is unique: that uniqueness is the at-most-once
// contract the ledger enforces.
type UnlockRecord struct {
	ID         string
	UserID     string
	Kind       UnlockKind
	Identifier string
	GrantedAt  time.Time
	Source     string
}
