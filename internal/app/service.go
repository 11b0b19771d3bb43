// Package service provides the progression engine facade consumed by the
// API and presentation layers. Every derived value (stats, tier, quest
// progress) is recomputed from the event log on each call; the unlock
// ledger is the only component with write side effects.
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/okian/grindstone/internal/adapters/repository"
	"github.com/okian/grindstone/internal/domain/achievement"
	"github.com/okian/grindstone/internal/domain/model"
	"github.com/okian/grindstone/internal/domain/quest"
	"github.com/okian/grindstone/internal/domain/stats"
	"github.com/okian/grindstone/internal/domain/tier"
	"github.com/okian/grindstone/internal/domain/types"
	"github.com/okian/grindstone/pkg/logger"
	"github.com/okian/grindstone/pkg/metrics"
)

// achievementSource labels ledger records created by achievement sync.
const achievementSource = "achievement"

// Service implements the engine operations. Construct with New, then
// Start before use.
type Service struct {
	mu sync.RWMutex

	// Core components
	events     repository.EventSource
	ledger     repository.Ledger
	calculator *stats.Calculator
	classifier *tier.Classifier
	tracker    *quest.Tracker

	// Configuration
	statCfg      stats.Config
	catalog      []tier.Definition
	templates    []quest.Template
	loc          *time.Location
	bodyweightKG float64
	shardCount   int

	// State
	started bool
	clock   func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventSource sets the workout event source. Defaults to the
// in-memory store.
func WithEventSource(es repository.EventSource) Option {
	return func(s *Service) {
		if es != nil {
			s.events = es
		}
	}
}

// WithLedger sets the unlock ledger. Defaults to the in-memory ledger.
func WithLedger(l repository.Ledger) Option {
	return func(s *Service) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithStatConfig overrides the scoring tunables.
func WithStatConfig(cfg stats.Config) Option {
	return func(s *Service) {
		s.statCfg = cfg
	}
}

// WithTierCatalog overrides the tier catalog (ordered lowest to highest).
func WithTierCatalog(defs []tier.Definition) Option {
	return func(s *Service) {
		if len(defs) > 0 {
			s.catalog = defs
		}
	}
}

// WithQuestTemplates overrides the quest template set.
func WithQuestTemplates(templates []quest.Template) Option {
	return func(s *Service) {
		if len(templates) > 0 {
			s.templates = templates
		}
	}
}

// WithLocation sets the timezone for quest reset boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithBodyweight sets the bodyweight used for lift-ratio tier criteria
// when the profile subsystem supplies none.
func WithBodyweight(kg float64) Option {
	return func(s *Service) {
		if kg > 0 {
			s.bodyweightKG = kg
		}
	}
}

// WithEventShardCount configures the default in-memory event store.
func WithEventShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithClock overrides the time source. Tests use this to pin windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		statCfg:      stats.DefaultConfig(),
		catalog:      tier.DefaultCatalog(),
		templates:    quest.DefaultTemplates(),
		loc:          time.Local,
		bodyweightKG: 80,
		shardCount:   8,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the engine components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting progression engine...")

	if s.events == nil {
		s.events = repository.NewMemStore(repository.WithShardCount(s.shardCount))
		s.logger.Info(ctx, "using in-memory event store", logger.Int("shards", s.shardCount))
	}
	if s.ledger == nil {
		s.ledger = repository.NewMemLedger()
		s.logger.Info(ctx, "using in-memory unlock ledger")
	}
	s.calculator = stats.New(stats.WithConfig(s.statCfg))
	s.classifier = tier.New(tier.WithCatalog(s.catalog))
	s.tracker = quest.New(
		quest.WithTemplates(s.templates),
		quest.WithLocation(s.loc),
	)

	s.started = true
	s.logger.Info(ctx, "progression engine started",
		logger.Int("quest_templates", len(s.templates)),
		logger.Int("tier_definitions", len(s.catalog)),
	)
	return nil
}

// Stop releases held resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.ledger.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "progression engine stopped")
}

// RecordWorkout appends events to the log and synchronizes achievements
// for the affected user. Returns the freshly unlocked achievements so
// the caller can surface them.
func (s *Service) RecordWorkout(ctx context.Context, events ...model.WorkoutEvent) ([]model.UnlockRecord, error) {
	if len(events) == 0 {
		return nil, nil
	}
	if err := s.events.Append(ctx, events...); err != nil {
		return nil, fmt.Errorf("append events: %w", err)
	}
	if counter, ok := s.events.(interface{ Count(context.Context) int }); ok {
		metrics.UpdateEventsStored(counter.Count(ctx))
	}
	return s.SyncAchievements(ctx, events[0].UserID)
}

// Stats recomputes the user's stat sheet from the full event log.
func (s *Service) Stats(ctx context.Context, userID string, prestigeBonus float64) (types.StatSheet, error) {
	started := time.Now()
	now := s.clock()
	window := model.Window{End: now}
	events, err := s.events.Events(ctx, userID, window)
	if err != nil {
		return types.StatSheet{}, fmt.Errorf("load events: %w", err)
	}
	sheet := s.calculator.Compute(ctx, window, events, prestigeBonus)
	metrics.RecordStatComputation()
	metrics.RecordComputeLatency(float64(time.Since(started).Milliseconds()))
	return sheet, nil
}

// Tier classifies the user against the tier catalog.
func (s *Service) Tier(ctx context.Context, userID string) (types.TierSnapshot, error) {
	now := s.clock()
	events, err := s.events.Events(ctx, userID, model.Window{End: now})
	if err != nil {
		return types.TierSnapshot{}, fmt.Errorf("load events: %w", err)
	}
	in := tier.BuildInput(events, s.bodyweightKG, now)
	snap := s.classifier.Classify(ctx, in)
	metrics.RecordTierSnapshot()
	return snap, nil
}

// Quests materializes the quest list visible at userLevel with live
// progress.
func (s *Service) Quests(ctx context.Context, userID string, userLevel int) ([]types.Quest, error) {
	now := s.clock()
	events, err := s.events.Events(ctx, userID, model.Window{End: now})
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	quests := s.tracker.Evaluate(ctx, now, userLevel, events)
	metrics.RecordQuestEvaluation()
	return quests, nil
}

// ClaimQuest pays out a completed quest exactly once. Reward grants run
// first and are idempotent; the claim marker is granted last, so a crash
// mid-payout resumes safely and the marker decides which caller actually
// claimed. Business outcomes come back as the result discriminator, not
// as errors.
func (s *Service) ClaimQuest(ctx context.Context, userID, questID string) (types.ClaimResult, error) {
	now := s.clock()
	events, err := s.events.Events(ctx, userID, model.Window{End: now})
	if err != nil {
		return types.ClaimResult{}, fmt.Errorf("load events: %w", err)
	}

	// Level gating does not apply to claims: a quest that was completed is
	// claimable regardless of how the list was filtered.
	q, ok := s.tracker.Find(ctx, now, math.MaxInt, questID, events)
	if !ok {
		metrics.RecordQuestClaim(string(types.ClaimNotFound))
		return types.ClaimResult{Outcome: types.ClaimNotFound}, nil
	}
	if q.Status != types.QuestCompleted {
		metrics.RecordQuestClaim(string(types.ClaimNotCompleted))
		return types.ClaimResult{Outcome: types.ClaimNotCompleted}, nil
	}

	tpl, ok := s.templateByID(q.TemplateID)
	if !ok {
		metrics.RecordQuestClaim(string(types.ClaimNotFound))
		return types.ClaimResult{Outcome: types.ClaimNotFound}, nil
	}

	outcome, err := s.ProcessRewards(ctx, userID, tpl.Unlocks, "quest:"+q.ID)
	if err != nil {
		return types.ClaimResult{}, fmt.Errorf("post quest rewards: %w", err)
	}

	marker, err := s.grant(ctx, userID, model.UnlockFeature, "quest_claim:"+q.ID, "quest_claim")
	if err != nil {
		return types.ClaimResult{}, fmt.Errorf("mark quest claimed: %w", err)
	}
	if !marker.Granted {
		metrics.RecordQuestClaim(string(types.ClaimAlreadyClaimed))
		return types.ClaimResult{Outcome: types.ClaimAlreadyClaimed}, nil
	}

	metrics.RecordQuestClaim(string(types.ClaimClaimed))
	metrics.RecordXPAwarded(tpl.XP)
	s.logger.Info(ctx, "quest claimed",
		logger.String("user", userID),
		logger.String("quest", q.ID),
		logger.Int("xp", tpl.XP),
		logger.Int("unlocks", len(outcome.NewlyUnlocked)),
	)
	return types.ClaimResult{
		Outcome:       types.ClaimClaimed,
		XP:            tpl.XP,
		NewlyUnlocked: outcome.NewlyUnlocked,
	}, nil
}

// GrantReward posts a single reward to the ledger.
func (s *Service) GrantReward(ctx context.Context, userID string, r model.Reward, source string) (types.RewardOutcome, error) {
	return s.ProcessRewards(ctx, userID, []model.Reward{r}, source)
}

// ProcessRewards fans a heterogeneous reward list out to per-kind grants
// and accumulates total xp plus only the freshly unlocked items:
// already-owned items are excluded so callers can render "new" badges.
func (s *Service) ProcessRewards(ctx context.Context, userID string, rewards []model.Reward, source string) (types.RewardOutcome, error) {
	var out types.RewardOutcome
	for _, r := range rewards {
		if r.Kind == model.RewardXP {
			out.XP += r.Amount
			continue
		}
		kind, ok := model.UnlockKindFor(r.Kind)
		if !ok || r.Identifier == "" {
			return types.RewardOutcome{}, fmt.Errorf("%w: kind=%q identifier=%q", ErrMalformedReward, r.Kind, r.Identifier)
		}
		grant, err := s.grant(ctx, userID, kind, r.Identifier, source)
		if err != nil {
			return types.RewardOutcome{}, fmt.Errorf("grant %s/%s: %w", kind, r.Identifier, err)
		}
		if grant.Granted {
			out.NewlyUnlocked = append(out.NewlyUnlocked, grant.Record)
		}
	}
	if out.XP > 0 {
		metrics.RecordXPAwarded(out.XP)
	}
	return out, nil
}

// SyncAchievements evaluates the achievement registry against the user's
// history and grants whatever is newly earned. Grants are idempotent, so
// re-evaluating after every workout cannot double-award.
func (s *Service) SyncAchievements(ctx context.Context, userID string) ([]model.UnlockRecord, error) {
	now := s.clock()
	window := model.Window{End: now}
	events, err := s.events.Events(ctx, userID, window)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	sheet := s.calculator.Compute(ctx, window, events, 0)
	snap := achievement.BuildSnapshot(events, sheet.Power)

	var fresh []model.UnlockRecord
	for _, a := range achievement.Earned(snap) {
		grant, err := s.grant(ctx, userID, model.UnlockAchievement, a.ID, achievementSource)
		if err != nil {
			return fresh, fmt.Errorf("grant achievement %s: %w", a.ID, err)
		}
		if grant.Granted {
			fresh = append(fresh, grant.Record)
		}
	}
	return fresh, nil
}

// Unlocks returns the user's full ledger partitioned by kind.
func (s *Service) Unlocks(ctx context.Context, userID string) (types.UnlockSet, error) {
	records, err := s.ledger.Unlocks(ctx, userID)
	if err != nil {
		return types.UnlockSet{}, fmt.Errorf("load unlocks: %w", err)
	}
	set := types.UnlockSet{Counts: make(map[model.UnlockKind]int)}
	for _, rec := range records {
		switch rec.Kind {
		case model.UnlockAchievement:
			set.Achievements = append(set.Achievements, rec)
		case model.UnlockTemplate:
			set.Templates = append(set.Templates, rec)
		case model.UnlockFeature:
			set.Features = append(set.Features, rec)
		case model.UnlockTitle:
			set.Titles = append(set.Titles, rec)
		}
		set.Counts[rec.Kind]++
		set.Total++
	}
	return set, nil
}

// grant wraps the ledger with metrics and latency observation.
func (s *Service) grant(ctx context.Context, userID string, kind model.UnlockKind, identifier, source string) (repository.Grant, error) {
	started := time.Now()
	g, err := s.ledger.Grant(ctx, userID, kind, identifier, source)
	metrics.RecordLedgerLatency(float64(time.Since(started).Milliseconds()))
	if err != nil {
		metrics.RecordLedgerError()
		return repository.Grant{}, err
	}
	metrics.RecordGrant(g.Granted)
	return g, nil
}

func (s *Service) templateByID(id string) (quest.Template, bool) {
	for _, tpl := range s.tracker.Templates() {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return quest.Template{}, false
}
