package poller

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"telemetry-service/internal/alerting"
	"telemetry-service/internal/config"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
	"telemetry-service/internal/store"
)

// Reconciler is the consumer-side loop that turns the history store into
// live application state. Each tick it fetches recent readings, expands them
// into per-channel entries, merges them into a deduplicated timestamp-sorted
// window, and feeds only the newly merged entries to the alert ledger.
type Reconciler struct {
	store      store.Store
	channels   []models.ChannelConfig
	byLocation map[string][]models.ChannelConfig
	ledger     *alerting.Ledger
	logger     *logging.Logger

	interval     time.Duration
	fetchLimit   int
	retention    int
	offline      time.Duration
	connectedCut time.Duration
	storeTimeout time.Duration

	mu        sync.RWMutex
	entries   []models.ChannelReading
	seen      map[models.EntryKey]struct{}
	connected bool

	inFlight atomic.Bool
}

// ChannelState is the presentable state of one channel: liveness plus the
// latest value when the channel is online. Offline channels carry no value
// so stale numbers are never rendered.
type ChannelState struct {
	Channel   models.ChannelConfig `json:"channel"`
	Status    models.Status        `json:"status"`
	Value     *float64             `json:"value,omitempty"`
	Timestamp *int64               `json:"timestamp,omitempty"`
	Fault     string               `json:"fault,omitempty"`
}

// Snapshot is the reconciler's read view for consumers.
type Snapshot struct {
	Connected bool           `json:"connected"`
	Channels  []ChannelState `json:"channels"`
}

// New constructs a Reconciler over st for the given channel table.
func New(st store.Store, channels []models.ChannelConfig, ledger *alerting.Ledger, logger *logging.Logger, cfg config.Config) *Reconciler {
	byLocation := make(map[string][]models.ChannelConfig)
	for _, ch := range channels {
		byLocation[ch.Location] = append(byLocation[ch.Location], ch)
	}
	return &Reconciler{
		store:        st,
		channels:     channels,
		byLocation:   byLocation,
		ledger:       ledger,
		logger:       logger,
		interval:     cfg.Poll.Interval,
		fetchLimit:   cfg.Poll.FetchLimit,
		retention:    cfg.Poll.HistoryLimit * len(channels),
		offline:      cfg.Liveness.OfflineThreshold,
		connectedCut: cfg.Liveness.ConnectedThreshold,
		storeTimeout: cfg.Store.Timeout,
		seen:         make(map[models.EntryKey]struct{}),
	}
}

// Start launches the polling loop.
func (r *Reconciler) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.logger.Infof("Reconciler started: interval=%s fetch_limit=%d", r.interval, r.fetchLimit)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		r.Tick(ctx, time.Now())
		for {
			select {
			case <-ctx.Done():
				r.logger.Infof("Reconciler stopped")
				return
			case <-ticker.C:
				r.Tick(ctx, time.Now())
			}
		}
	}()
}

// Tick runs one reconcile pass. If a previous pass is still in flight the
// tick is skipped rather than overlapped. A fetch failure keeps all prior
// state but flips the connected flag false.
func (r *Reconciler) Tick(ctx context.Context, now time.Time) {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.Debugf("Tick skipped: previous fetch still in flight")
		return
	}
	defer r.inFlight.Store(false)

	fetchCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	readings, err := r.store.Query(fetchCtx, store.Filter{Limit: r.fetchLimit})
	if err != nil {
		r.logger.Errorf("Fetch failed, no update this tick: %v", err)
		r.mu.Lock()
		r.connected = false
		r.mu.Unlock()
		return
	}

	r.mu.Lock()
	fresh := r.merge(readings)
	latest := r.latestTimestamp()
	r.connected = latest > 0 && now.UnixMilli()-latest <= r.connectedCut.Milliseconds()
	r.mu.Unlock()

	for _, e := range fresh {
		// Stale entries surface as OFFLINE, never as alerts.
		if now.UnixMilli()-e.Timestamp > r.offline.Milliseconds() {
			continue
		}
		cfg, ok := r.channelConfig(e.ChannelID)
		if !ok {
			continue
		}
		if res := alerting.Evaluate(e, cfg); res != nil {
			r.ledger.Record(e.ChannelID, res.Severity, res.Message, now)
		}
	}
}

// merge expands raw readings into per-channel entries, drops duplicates by
// (channel, timestamp), re-sorts, and truncates to the retention window.
// Returns the entries that were actually new. Caller holds the lock.
func (r *Reconciler) merge(readings []models.Reading) []models.ChannelReading {
	var fresh []models.ChannelReading
	for _, rd := range readings {
		configs, ok := r.byLocation[rd.Location]
		if !ok {
			continue
		}
		for _, ch := range configs {
			e := models.ChannelReading{
				ChannelID: ch.ID,
				Location:  rd.Location,
				Type:      ch.Type,
				Value:     rd.ValueFor(ch.Type),
				Timestamp: rd.Timestamp,
				Fault:     rd.Error,
			}
			if _, dup := r.seen[e.Key()]; dup {
				continue
			}
			r.seen[e.Key()] = struct{}{}
			r.entries = append(r.entries, e)
			fresh = append(fresh, e)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].Timestamp < r.entries[j].Timestamp
	})
	if len(r.entries) > r.retention {
		dropped := r.entries[:len(r.entries)-r.retention]
		for _, e := range dropped {
			delete(r.seen, e.Key())
		}
		r.entries = r.entries[len(r.entries)-r.retention:]
	}
	return fresh
}

func (r *Reconciler) latestTimestamp() int64 {
	if len(r.entries) == 0 {
		return 0
	}
	return r.entries[len(r.entries)-1].Timestamp
}

func (r *Reconciler) channelConfig(id string) (models.ChannelConfig, bool) {
	for _, ch := range r.channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return models.ChannelConfig{}, false
}

// Snapshot classifies every configured channel against now and reports the
// aggregate connected flag.
func (r *Reconciler) Snapshot(now time.Time) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{Connected: r.connected}
	for _, ch := range r.channels {
		var latest *models.ChannelReading
		for i := len(r.entries) - 1; i >= 0; i-- {
			if r.entries[i].ChannelID == ch.ID {
				e := r.entries[i]
				latest = &e
				break
			}
		}

		state := ChannelState{Channel: ch, Status: alerting.Classify(latest, now, r.offline)}
		switch state.Status {
		case models.StatusOnline:
			state.Value = &latest.Value
			state.Timestamp = &latest.Timestamp
		case models.StatusError:
			state.Fault = latest.Fault
			state.Timestamp = &latest.Timestamp
		}
		snap.Channels = append(snap.Channels, state)
	}
	return snap
}

// Entries returns a copy of the merged per-channel window, oldest first.
func (r *Reconciler) Entries() []models.ChannelReading {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ChannelReading, len(r.entries))
	copy(out, r.entries)
	return out
}
