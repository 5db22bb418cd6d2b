// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

package detection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/metrics"
	"github.com/tomtom215/horus/internal/models"
)

// Trigger identifies what started a pass.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerOnDemand  Trigger = "on_demand"
)

// OverlapPolicy decides what happens to a scheduled trigger that arrives
// while a pass is in flight.
type OverlapPolicy string

const (
	// OverlapQueue remembers one pending trigger and runs it as soon as
	// the current pass finishes. Further triggers coalesce into it.
	OverlapQueue OverlapPolicy = "queue"

	// OverlapDrop discards the trigger and logs it.
	OverlapDrop OverlapPolicy = "drop"
)

// RunnerConfig tunes the Runner.
type RunnerConfig struct {
	// MaxEventsPerPass caps one load from the event store. Larger backlogs
	// are split into sub-passes. Zero disables the cap.
	MaxEventsPerPass int

	// MaxPassDuration bounds one pass. Zero disables the deadline.
	MaxPassDuration time.Duration

	// SettleDelay is subtracted from "now" when a pass has no explicit end,
	// leaving late writers time to land events before they are analysed.
	SettleDelay time.Duration

	OverlapPolicy OverlapPolicy

	// CarryOpenWindows persists detector states between scheduled passes so
	// windows open at the end of one pass can close in the next.
	CarryOpenWindows bool
}

// DefaultRunnerConfig returns the production runner settings.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		MaxEventsPerPass: 50000,
		MaxPassDuration:  5 * time.Minute,
		OverlapPolicy:    OverlapQueue,
	}
}

// PassResult describes one completed pass.
type PassResult struct {
	PassID    string           `json:"pass_id"`
	Trigger   Trigger          `json:"trigger"`
	From      time.Time        `json:"from"`
	To        time.Time        `json:"to"`
	Events    int              `json:"events"`
	SubPasses int              `json:"sub_passes"`
	Anomalies []models.Anomaly `json:"anomalies"`
	Inserted  int              `json:"inserted"`
	Watermark *time.Time       `json:"watermark,omitempty"` // set when the pass advanced it
	Duration  time.Duration    `json:"duration_ns"`
}

// Runner executes analysis passes. It is safe for concurrent use; at most
// one pass runs at any time.
type Runner struct {
	store     PassStore
	detectors []Detector
	notifiers []Notifier
	cfg       RunnerConfig
	now       func() time.Time

	mu      sync.Mutex
	running bool
	pending bool
}

// NewRunner creates a runner over store. Detectors run in the given order.
func NewRunner(store PassStore, cfg RunnerConfig, detectors ...Detector) *Runner {
	if cfg.OverlapPolicy == "" {
		cfg.OverlapPolicy = OverlapQueue
	}
	return &Runner{
		store:     store,
		detectors: detectors,
		cfg:       cfg,
		now:       time.Now,
	}
}

// DefaultDetectors returns BruteForce, Flood and BotActivity in pass order.
func DefaultDetectors(bf BruteForceConfig, fl FloodConfig, bot BotConfig) []Detector {
	return []Detector{
		NewBruteForceDetector(bf),
		NewFloodDetector(fl),
		NewBotActivityDetector(bot),
	}
}

// AddNotifier registers a notifier for newly committed anomalies. It must
// be called before the first pass.
func (r *Runner) AddNotifier(n Notifier) {
	r.notifiers = append(r.notifiers, n)
	logging.Info().Str("notifier", n.Name()).Bool("enabled", n.Enabled()).Msg("registered anomaly notifier")
}

// SetClock replaces the clock used to resolve "now". Intended for tests.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Busy reports whether a pass is in flight.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Trigger runs a scheduled pass: from the watermark to now, advancing the
// watermark. When another pass is running the trigger is queued or dropped
// according to the overlap policy; a queued trigger returns (nil, nil).
func (r *Runner) Trigger(ctx context.Context) (*PassResult, error) {
	queue := r.cfg.OverlapPolicy == OverlapQueue
	acquired, queued := r.acquire(queue)
	if !acquired {
		if queued {
			metrics.AnalysisPassConflicts.WithLabelValues("queued").Inc()
			logging.Debug().Msg("analysis pass in progress, trigger queued")
			return nil, nil
		}
		metrics.AnalysisPassConflicts.WithLabelValues("dropped").Inc()
		logging.Warn().Msg("analysis pass in progress, trigger dropped")
		return nil, ErrPassInProgress
	}
	return r.drain(ctx)
}

// Run executes one pass over an explicit range. A nil from starts at the
// watermark and a nil to ends at now. Only a pass with neither bound
// advances the watermark. Run never waits: it returns ErrPassInProgress
// when another pass holds the guard.
func (r *Runner) Run(ctx context.Context, from, to *time.Time) (*PassResult, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange,
			from.Format(time.RFC3339Nano), to.Format(time.RFC3339Nano))
	}

	acquired, _ := r.acquire(false)
	if !acquired {
		metrics.AnalysisPassConflicts.WithLabelValues("rejected").Inc()
		return nil, ErrPassInProgress
	}

	trigger := TriggerOnDemand
	if from == nil && to == nil {
		trigger = TriggerScheduled
	}
	result, err := r.pass(ctx, from, to, trigger)

	if r.releaseOrContinue() {
		// A scheduled trigger queued behind this pass; serve it without
		// holding up the caller.
		go func() {
			if _, qerr := r.drainQueued(context.WithoutCancel(ctx)); qerr != nil {
				logging.Err(qerr).Msg("queued analysis pass failed")
			}
		}()
	}
	return result, err
}

// drain runs scheduled passes until no trigger is pending. The caller must
// hold the guard.
func (r *Runner) drain(ctx context.Context) (*PassResult, error) {
	var (
		result *PassResult
		err    error
	)
	for {
		result, err = r.pass(ctx, nil, nil, TriggerScheduled)
		if err != nil {
			logging.Err(err).Msg("scheduled analysis pass failed")
		}
		if !r.releaseOrContinue() {
			return result, err
		}
		if ctx.Err() != nil {
			r.release()
			return result, err
		}
	}
}

func (r *Runner) drainQueued(ctx context.Context) (*PassResult, error) {
	return r.drain(ctx)
}

// acquire takes the single-flight guard. When the guard is held and queue
// is true the trigger is recorded as pending.
func (r *Runner) acquire(queue bool) (acquired, queued bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		r.running = true
		return true, false
	}
	if queue {
		r.pending = true
		return false, true
	}
	return false, false
}

// releaseOrContinue releases the guard unless a trigger is pending, in which
// case the caller keeps the guard and must run the pending pass.
func (r *Runner) releaseOrContinue() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending {
		r.pending = false
		return true
	}
	r.running = false
	return false
}

func (r *Runner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.pending = false
}

// pass runs with the guard held.
func (r *Runner) pass(ctx context.Context, from, to *time.Time, trigger Trigger) (*PassResult, error) {
	start := r.now()
	passID := logging.GeneratePassID()
	ctx = logging.ContextWithPassID(ctx, passID)
	if r.cfg.MaxPassDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.MaxPassDuration)
		defer cancel()
	}

	result := &PassResult{PassID: passID, Trigger: trigger}
	outcome := "error"
	defer func() {
		result.Duration = r.now().Sub(start)
		metrics.RecordAnalysisPass(string(trigger), outcome, result.Duration)
	}()

	// Any caller-chosen bound makes this a re-analysis that must not move
	// the shared watermark.
	advance := from == nil && to == nil

	if from != nil {
		result.From = from.UTC()
	} else {
		wm, err := r.store.GetWatermark(ctx, models.WatermarkKey)
		if err != nil {
			return result, fmt.Errorf("%w: read watermark: %w", ErrStorageUnavailable, err)
		}
		result.From = models.Epoch
		if wm != nil {
			result.From = wm.Timestamp.UTC()
		}
	}
	if to != nil {
		result.To = to.UTC()
	} else {
		result.To = start.Add(-r.cfg.SettleDelay).UTC()
	}

	if !result.From.Before(result.To) {
		outcome = "noop"
		logging.Ctx(ctx).Debug().Time("from", result.From).Time("to", result.To).Msg("empty analysis range")
		return result, nil
	}

	carry := advance && r.cfg.CarryOpenWindows
	states, err := r.initialStates(ctx, carry)
	if err != nil {
		return result, err
	}

	cursor := result.From
	for {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("analysis pass %s: %w", passID, err)
		}

		batch, full, err := r.load(ctx, cursor, result.To)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			break
		}

		found, err := r.scan(states, batch)
		if err != nil {
			return result, err
		}

		maxTS := batch[len(batch)-1].Timestamp
		commit := &models.PassCommit{Anomalies: found}
		if advance {
			commit.Watermark = &models.Watermark{
				Key:       models.WatermarkKey,
				Timestamp: maxTS,
				UpdatedAt: r.now().UTC(),
			}
		}
		if carry {
			commit.DetectorStates = encodeStates(states)
		}

		inserted, err := r.store.CommitPass(ctx, commit)
		if err != nil {
			return result, fmt.Errorf("%w: commit pass: %w", ErrStorageUnavailable, err)
		}

		result.Events += len(batch)
		result.SubPasses++
		result.Anomalies = append(result.Anomalies, found...)
		result.Inserted += len(inserted)
		if advance {
			wm := maxTS
			result.Watermark = &wm
			metrics.SetWatermark(wm)
		}
		metrics.AnalysisEventsScanned.Add(float64(len(batch)))
		for i := range inserted {
			metrics.AnomaliesCommitted.WithLabelValues(string(inserted[i].Kind)).Inc()
		}
		if full {
			metrics.AnalysisSubPasses.Inc()
		}
		r.notify(ctx, inserted)

		if !full {
			break
		}
		cursor = maxTS
	}

	if result.Events == 0 {
		outcome = "noop"
		return result, nil
	}

	outcome = "success"
	logging.Ctx(ctx).Info().
		Str("trigger", string(trigger)).
		Time("from", result.From).
		Time("to", result.To).
		Int("events", result.Events).
		Int("sub_passes", result.SubPasses).
		Int("anomalies", len(result.Anomalies)).
		Int("inserted", result.Inserted).
		Msg("analysis pass complete")
	return result, nil
}

// load fetches the next batch after cursor. A batch that hit the cap is cut
// back to a timestamp boundary so events sharing the last timestamp are
// never split across sub-passes.
func (r *Runner) load(ctx context.Context, cursor, to time.Time) ([]models.Event, bool, error) {
	limit := r.cfg.MaxEventsPerPass
	batch, err := r.store.ListAfter(ctx, cursor, to, limit)
	if err != nil {
		return nil, false, fmt.Errorf("%w: load events: %w", ErrStorageUnavailable, err)
	}
	if limit <= 0 || len(batch) < limit {
		return batch, false, nil
	}

	last := batch[len(batch)-1].Timestamp
	cut := len(batch)
	for cut > 0 && batch[cut-1].Timestamp.Equal(last) {
		cut--
	}
	if cut > 0 {
		return batch[:cut], true, nil
	}

	// The whole batch shares one timestamp: load that instant completely.
	end := last.Add(time.Microsecond)
	if end.After(to) {
		end = to
	}
	batch, err = r.store.ListAfter(ctx, cursor, end, 0)
	if err != nil {
		return nil, false, fmt.Errorf("%w: load events: %w", ErrStorageUnavailable, err)
	}
	return batch, true, nil
}

// scan validates and orders one batch, then folds every detector over it.
// states is only updated when all detectors succeed.
func (r *Runner) scan(states map[models.AnomalyKind]WindowState, batch []models.Event) ([]models.Anomaly, error) {
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return nil, err
		}
	}
	slices.SortStableFunc(batch, func(a, b models.Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	next := make(map[models.AnomalyKind]WindowState, len(r.detectors))
	var found []models.Anomaly
	for _, d := range r.detectors {
		st, anomalies, err := d.Scan(states[d.Kind()], batch)
		if err != nil {
			return nil, fmt.Errorf("%s detector: %w", d.Kind(), err)
		}
		next[d.Kind()] = st
		for i := range anomalies {
			metrics.AnomaliesDetected.WithLabelValues(string(anomalies[i].Kind)).Inc()
		}
		found = append(found, anomalies...)
	}
	for k, st := range next {
		states[k] = st
	}
	return found, nil
}

func (r *Runner) initialStates(ctx context.Context, carry bool) (map[models.AnomalyKind]WindowState, error) {
	states := make(map[models.AnomalyKind]WindowState, len(r.detectors))
	if !carry {
		return states, nil
	}

	raw, err := r.store.LoadDetectorStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load detector states: %w", ErrStorageUnavailable, err)
	}
	for kind, data := range raw {
		var st WindowState
		if err := json.Unmarshal(data, &st); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("detector", string(kind)).Msg("discarding unreadable detector state")
			continue
		}
		states[kind] = st
	}
	return states, nil
}

func encodeStates(states map[models.AnomalyKind]WindowState) map[models.AnomalyKind][]byte {
	out := make(map[models.AnomalyKind][]byte, len(states))
	for kind, st := range states {
		data, err := json.Marshal(st)
		if err != nil {
			logging.Warn().Err(err).Str("detector", string(kind)).Msg("detector state not persisted")
			continue
		}
		out[kind] = data
	}
	return out
}

// notify is best effort: a failing notifier never fails the pass.
func (r *Runner) notify(ctx context.Context, anomalies []models.Anomaly) {
	if len(anomalies) == 0 {
		return
	}
	for _, n := range r.notifiers {
		if !n.Enabled() {
			continue
		}
		if err := n.Notify(ctx, anomalies); err != nil {
			metrics.NotificationsSent.WithLabelValues(n.Name(), "error").Inc()
			if !errors.Is(err, context.Canceled) {
				logging.Ctx(ctx).Warn().Err(err).Str("notifier", n.Name()).Msg("anomaly notification failed")
			}
			continue
		}
		metrics.NotificationsSent.WithLabelValues(n.Name(), "sent").Inc()
	}
}
