package monitor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mapwatch/internal/config"
	"mapwatch/internal/fileutil"
	"mapwatch/internal/history"
	"mapwatch/internal/logging"
	"mapwatch/internal/match"
	"mapwatch/internal/notifications"
	"mapwatch/internal/period"
	"mapwatch/internal/resolve"
	"mapwatch/internal/roster"
	"mapwatch/internal/state"
	"mapwatch/internal/store"
)

// Coordinator owns one collection period: the inbox watch, identity
// resolution, the satisfaction grid, and the ledger. A coordinator is
// built per period and discarded after Run returns.
type Coordinator struct {
	cfg       *config.Config
	logger    *slog.Logger
	roster    *roster.Roster
	resolver  *resolve.Resolver
	search    *history.Search
	tracker   *state.Tracker
	ledger    *store.Store
	notifier  notifications.Service
	sessionID string
	now       func() time.Time
	started   time.Time

	// handled names are skipped by the periodic sweep; watcher events
	// always reprocess so a re-uploaded file refreshes its entry. Only
	// the dispatch goroutine touches it.
	handled map[string]struct{}
}

// New wires a coordinator from configuration. The ledger may be nil in
// tests; every ledger write is then skipped.
func New(cfg *config.Config, logger *slog.Logger, r *roster.Roster, ledger *store.Store, notifier notifications.Service) (*Coordinator, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService("", 0)
	}

	resolver, err := resolve.New(r, resolve.Options{
		Threshold:   cfg.Matching.FuzzyThreshold,
		PrefixBias:  cfg.Matching.PrefixBias,
		Extensions:  cfg.Matching.Extensions,
		ForwardDays: cfg.Matching.ForwardDays,
		Categories:  categoriesFromConfig(cfg),
	})
	if err != nil {
		return nil, err
	}

	var units []string
	for _, unit := range r.Units() {
		units = append(units, unit.Name)
	}
	var categories []string
	for _, cat := range resolver.Categories() {
		categories = append(categories, cat.Name)
	}

	return &Coordinator{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "monitor"),
		roster:    r,
		resolver:  resolver,
		search:    history.New(cfg.Paths.WorkspaceDir, resolver, cfg.Matching.LookbackDays, cfg.Matching.SearchWorkers, logger),
		tracker:   state.NewTracker(units, categories),
		ledger:    ledger,
		notifier:  notifier,
		sessionID: uuid.NewString(),
		now:       time.Now,
		handled:   make(map[string]struct{}),
	}, nil
}

func categoriesFromConfig(cfg *config.Config) []resolve.Category {
	out := make([]resolve.Category, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		out = append(out, resolve.Category{
			Name:        cat.Name,
			Keywords:    cat.Keywords,
			Suffix:      cat.Suffix,
			DirName:     cat.DirName,
			FutureDated: cat.FutureDated,
		})
	}
	return out
}

// Tracker exposes the satisfaction grid for the status surface.
func (c *Coordinator) Tracker() *state.Tracker { return c.tracker }

// SessionID returns the identifier stamped on every ledger row this
// coordinator writes.
func (c *Coordinator) SessionID() string { return c.sessionID }

// Run watches until every unit is satisfied or the deadline passes. It
// returns the context error on cancellation; per-file failures are
// logged and never abort the run.
func (c *Coordinator) Run(ctx context.Context) error {
	c.started = c.now()
	today := period.Day(c.started)
	periodStamp := period.FormatDay(today)

	var dirNames []string
	for _, cat := range c.resolver.Categories() {
		dirNames = append(dirNames, cat.DirName)
	}
	if err := fileutil.EnsureDayDirs(c.cfg.Paths.WorkspaceDir, today, dirNames); err != nil {
		return err
	}

	c.logger.Info("monitoring started",
		logging.String(logging.FieldEventType, "monitor_started"),
		logging.String(logging.FieldSessionID, c.sessionID),
		logging.String("period", periodStamp),
		logging.Int("units", c.roster.Len()),
	)
	if err := c.notifier.NotifyMonitorStarted(ctx, periodStamp, c.roster.Len()); err != nil {
		c.warnNotify(err)
	}

	watcher := newInboxWatcher(c.cfg.Paths.InboxDir, c.cfg.Monitor.EventBuffer, c.logger)
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	// Files already sitting in the inbox predate the watcher.
	c.sweepInbox(ctx)
	if c.tracker.AllSatisfied() {
		return c.finishComplete(ctx, periodStamp)
	}

	statusTicker := time.NewTicker(c.cfg.StatusInterval())
	defer statusTicker.Stop()
	reminderTicker := time.NewTicker(c.cfg.ReminderInterval())
	defer reminderTicker.Stop()

	deadlineWait := time.Until(c.cfg.DeadlineFor(c.now()))
	if deadlineWait < 0 {
		deadlineWait = 0
	}
	deadline := time.NewTimer(deadlineWait)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path := <-watcher.Events():
			c.handleFile(ctx, path)
			if c.tracker.AllSatisfied() {
				return c.finishComplete(ctx, periodStamp)
			}

		case <-statusTicker.C:
			c.sweepInbox(ctx)
			if c.tracker.AllSatisfied() {
				return c.finishComplete(ctx, periodStamp)
			}
			c.logStatus(ctx, periodStamp)

		case <-reminderTicker.C:
			c.maybeRemind(ctx)

		case <-deadline.C:
			return c.finishDeadline(ctx, periodStamp)
		}
	}
}

// sweepInbox processes every file currently in the drop folder. The
// watcher can miss files created before Start or dropped from a full
// buffer, so the sweep also runs on every status tick.
func (c *Coordinator) sweepInbox(ctx context.Context) {
	paths, err := fileutil.ListFiles(c.cfg.Paths.InboxDir)
	if err != nil {
		logging.WarnWithContext(c.logger, "inbox sweep failed", "inbox_sweep_failed",
			logging.Error(err))
		return
	}
	for _, path := range paths {
		if _, done := c.handled[filepath.Base(path)]; done {
			continue
		}
		c.handleFile(ctx, path)
	}
}

func (c *Coordinator) handleFile(ctx context.Context, path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}

	if err := fileutil.WaitStable(path, c.cfg.StabilizeInterval(), c.cfg.Monitor.StabilizeChecks); err != nil {
		// Gone again or still transferring; a later event or sweep
		// retries it.
		c.logger.Debug("skipping unstable file",
			logging.String(logging.FieldFilename, name),
			logging.Error(err),
		)
		return
	}

	c.handled[name] = struct{}{}

	now := c.now()
	res, rej := c.resolver.Resolve(name, now)
	if rej != nil {
		c.recordRejection(ctx, *rej, now)
		return
	}

	canonical := c.resolver.CanonicalName(res.Unit, res.Category, res.Date)
	target := filepath.Join(fileutil.DayDir(c.cfg.Paths.WorkspaceDir, res.Date, res.Category.DirName), canonical)
	if err := fileutil.CopyVerified(path, target); err != nil {
		logging.ErrorWithContext(c.logger, "archive copy failed", "archive_copy_failed",
			logging.String(logging.FieldFilename, name),
			logging.Error(err),
		)
		if nerr := c.notifier.NotifyError(ctx, err, "inbox"); nerr != nil {
			c.warnNotify(nerr)
		}
		return
	}

	// The inbox copy served its purpose; keep the drop folder clean so
	// surveyors see only files still awaiting processing.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.WarnWithContext(c.logger, "inbox cleanup failed", "inbox_cleanup_failed",
			logging.String(logging.FieldFilename, name),
			logging.Error(err))
	}

	newlySatisfied, status, err := c.tracker.Satisfy(res.Unit.Name, res.Category.Name, canonical, now, state.SourceLive)
	if err != nil {
		logging.ErrorWithContext(c.logger, "satisfaction update failed", "satisfy_failed",
			logging.String(logging.FieldUnit, res.Unit.Name),
			logging.Error(err),
		)
		return
	}

	c.recordSubmission(ctx, res, canonical, target, now, state.SourceLive)

	c.logger.Info("file accepted",
		logging.String(logging.FieldEventType, "file_accepted"),
		logging.String(logging.FieldFilename, name),
		logging.String(logging.FieldUnit, res.Unit.Name),
		logging.String(logging.FieldCategory, res.Category.Name),
		logging.String(logging.FieldStrategy, string(res.Strategy)),
		logging.Float64(logging.FieldScore, res.Score),
		logging.Bool("duplicate", !newlySatisfied),
	)

	if err := c.notifier.NotifyFileAccepted(ctx, res.Unit.Name, res.Category.Name, name); err != nil {
		c.warnNotify(err)
	}
	if newlySatisfied && status == state.StatusSatisfied {
		if err := c.notifier.NotifyUnitSatisfied(ctx, res.Unit.Name); err != nil {
			c.warnNotify(err)
		}
	}
}

func (c *Coordinator) recordRejection(ctx context.Context, rej resolve.Rejection, now time.Time) {
	c.logger.Info("file rejected",
		logging.String(logging.FieldEventType, "file_rejected"),
		logging.String(logging.FieldFilename, rej.Filename),
		logging.String("reason", string(rej.Reason)),
		logging.Float64("best_score", rej.BestScore),
		logging.String("detail", rej.Detail),
	)
	if c.ledger == nil {
		return
	}
	_, err := c.ledger.RecordRejection(ctx, store.Rejection{
		SessionID:  c.sessionID,
		Period:     period.FormatDay(now),
		Filename:   rej.Filename,
		Reason:     string(rej.Reason),
		BestScore:  rej.BestScore,
		Detail:     rej.Detail,
		ReceivedAt: now,
	})
	if err != nil {
		logging.WarnWithContext(c.logger, "ledger rejection write failed", "ledger_write_failed",
			logging.Error(err))
	}
}

func (c *Coordinator) recordSubmission(ctx context.Context, res resolve.Resolution, canonical, target string, now time.Time, source state.Source) {
	if c.ledger == nil {
		return
	}
	_, err := c.ledger.RecordSubmission(ctx, store.Submission{
		SessionID:   c.sessionID,
		Period:      period.FormatDay(res.Period),
		Unit:        res.Unit.Name,
		Category:    res.Category.Name,
		Filename:    res.Filename,
		StoredPath:  target,
		StampedDate: period.FormatDay(res.Date),
		Strategy:    string(res.Strategy),
		Score:       res.Score,
		Source:      string(source),
		ReceivedAt:  now,
	})
	if err != nil {
		logging.WarnWithContext(c.logger, "ledger submission write failed", "ledger_write_failed",
			logging.Error(err))
	}
}

func (c *Coordinator) logStatus(ctx context.Context, periodStamp string) {
	pending, partial, satisfied := c.tracker.Counts()
	c.logger.Info("collection status",
		logging.String(logging.FieldEventType, "status_tick"),
		logging.String("period", periodStamp),
		logging.Int("pending", pending),
		logging.Int("partial", partial),
		logging.Int("satisfied", satisfied),
	)
	c.recordSnapshot(ctx, periodStamp)
}

func (c *Coordinator) recordSnapshot(ctx context.Context, periodStamp string) {
	if c.ledger == nil {
		return
	}
	pending, partial, satisfied := c.tracker.Counts()
	_, err := c.ledger.RecordSnapshot(ctx, store.Snapshot{
		SessionID: c.sessionID,
		Period:    periodStamp,
		Pending:   pending,
		Partial:   partial,
		Satisfied: satisfied,
		Payload:   c.tracker.Snapshot(),
	})
	if err != nil {
		logging.WarnWithContext(c.logger, "ledger snapshot write failed", "ledger_write_failed",
			logging.Error(err))
	}
}

// maybeRemind sends an urgent reminder once the configured evening
// cutoff passes or only a handful of units remain.
func (c *Coordinator) maybeRemind(ctx context.Context) {
	remaining := c.tracker.Remaining()
	if remaining == 0 {
		return
	}
	now := c.now()
	urgent := now.After(c.cfg.UrgentAfterFor(now)) || remaining <= c.cfg.Monitor.UrgentRemaining
	if !urgent {
		return
	}

	var outstanding []string
	for _, snap := range c.tracker.Snapshot() {
		if snap.Status != state.StatusSatisfied {
			outstanding = append(outstanding, snap.Unit)
		}
	}
	c.logger.Warn("urgent reminder",
		logging.String(logging.FieldEventType, "urgent_reminder"),
		logging.Int("remaining", remaining),
	)
	if err := c.notifier.NotifyUrgentReminder(ctx, remaining, outstanding); err != nil {
		c.warnNotify(err)
	}
}

func (c *Coordinator) finishComplete(ctx context.Context, periodStamp string) error {
	c.recordSnapshot(ctx, periodStamp)
	elapsed := c.now().Sub(c.started)
	c.logger.Info("period complete",
		logging.String(logging.FieldEventType, "period_complete"),
		logging.String("period", periodStamp),
		logging.Duration("elapsed", elapsed),
	)
	if err := c.notifier.NotifyPeriodComplete(ctx, periodStamp, elapsed); err != nil {
		c.warnNotify(err)
	}
	return nil
}

// finishDeadline runs one historical lookup per unsatisfied pair, then
// writes the final snapshot.
func (c *Coordinator) finishDeadline(ctx context.Context, periodStamp string) error {
	c.backfill(ctx)

	pending, partial, satisfied := c.tracker.Counts()
	c.recordSnapshot(ctx, periodStamp)
	c.logger.Info("deadline reached",
		logging.String(logging.FieldEventType, "deadline_reached"),
		logging.String("period", periodStamp),
		logging.Int("pending", pending),
		logging.Int("partial", partial),
		logging.Int("satisfied", satisfied),
	)
	if err := c.notifier.NotifyDeadlineReached(ctx, periodStamp, pending, partial, satisfied); err != nil {
		c.warnNotify(err)
	}
	return nil
}

// backfill records the most recent earlier delivery for every pair that
// stayed unsatisfied, so the period report can show when each silent
// unit was last heard from. Backfills never satisfy the current period.
func (c *Coordinator) backfill(ctx context.Context) {
	requirements := c.tracker.Unsatisfied()
	state.SortRequirements(requirements)

	categories := make(map[string]resolve.Category)
	for _, cat := range c.resolver.Categories() {
		categories[cat.Name] = cat
	}
	upTo := period.Day(c.now()).AddDate(0, 0, -1)

	for _, req := range requirements {
		if err := ctx.Err(); err != nil {
			return
		}
		unit, ok := c.roster.UnitByName(req.Unit)
		if !ok {
			continue
		}
		cat, ok := categories[req.Category]
		if !ok {
			continue
		}

		result, err := c.search.FindLastSatisfying(ctx, unit, cat, upTo)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logging.WarnWithContext(c.logger, "backfill lookup failed", "backfill_failed",
				logging.String(logging.FieldUnit, req.Unit),
				logging.String(logging.FieldCategory, req.Category),
				logging.Error(err))
			continue
		}
		if result.Strategy == match.StrategyNone {
			continue
		}

		c.logger.Info("backfill found",
			logging.String(logging.FieldEventType, "backfill_found"),
			logging.String(logging.FieldUnit, req.Unit),
			logging.String(logging.FieldCategory, req.Category),
			logging.String(logging.FieldStrategy, string(result.Strategy)),
			logging.String("effective_date", period.FormatDay(result.EffectiveDate)),
		)
		if c.ledger == nil {
			continue
		}
		_, err = c.ledger.RecordSubmission(ctx, store.Submission{
			SessionID:   c.sessionID,
			Period:      period.FormatDay(c.now()),
			Unit:        req.Unit,
			Category:    req.Category,
			Filename:    filepath.Base(result.Path),
			StoredPath:  result.Path,
			StampedDate: period.FormatDay(result.EffectiveDate),
			Strategy:    string(result.Strategy),
			Source:      string(state.SourceBackfill),
			ReceivedAt:  c.now(),
		})
		if err != nil {
			logging.WarnWithContext(c.logger, "ledger backfill write failed", "ledger_write_failed",
				logging.Error(err))
		}
	}
}

func (c *Coordinator) warnNotify(err error) {
	logging.WarnWithContext(c.logger, "notification failed", "notify_failed",
		logging.Error(err))
}
