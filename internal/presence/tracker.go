// Package presence tracks which consoles are looking at which case.
//
// The view server records a beat for every open event stream when it
// connects and on each keepalive, and calls Leave when the stream closes.
// A background reaper marks viewers whose streams went silent without a
// clean close (a laptop lid shut, a dropped proxy) and later evicts them.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry is a snapshot of one viewer.
type Entry struct {
	Viewer     string    `json:"viewer"`
	CaseID     string    `json:"case_id,omitempty"` // empty for dashboard viewers
	Remote     string    `json:"remote,omitempty"`  // client address as seen by the server
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	IdleSecs   float64   `json:"idle_secs"`
	Beats      int64     `json:"beats"`
	Reaped     bool      `json:"reaped,omitempty"`
	ReapedAt   time.Time `json:"reaped_at,omitempty"`
	OpenedSecs float64   `json:"opened_secs"`
}

// Beat is one sign of life from a viewer.
type Beat struct {
	Viewer string
	CaseID string
	Remote string
}

// ReaperConfig configures the background idle-viewer reaper.
type ReaperConfig struct {
	// IdleThreshold is how long a viewer may go without a beat before it is
	// marked gone. Default: 1 minute (four missed keepalives).
	IdleThreshold time.Duration

	// EvictAfter is how long a reaped viewer stays in the roster.
	// Default: 5 minutes.
	EvictAfter time.Duration

	// SweepInterval is how often the reaper scans. Default: 30 seconds.
	SweepInterval time.Duration

	// OnGone is called outside the lock for each viewer newly reaped.
	OnGone func(viewer, caseID string)
}

// Tracker holds the live viewer roster. Safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	viewers map[string]*viewerState

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type viewerState struct {
	caseID    string
	remote    string
	firstSeen time.Time
	lastSeen  time.Time
	beats     int64
	reaped    bool
	reapedAt  time.Time
}

func New() *Tracker {
	return &Tracker{viewers: make(map[string]*viewerState)}
}

// RecordBeat marks b.Viewer as alive. A viewer that moves to another case
// is moved with it.
func (t *Tracker) RecordBeat(b Beat) {
	if b.Viewer == "" {
		return
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.viewers[b.Viewer]
	if !ok {
		st = &viewerState{firstSeen: now}
		t.viewers[b.Viewer] = st
	}
	if st.reaped {
		slog.Debug("presence: viewer back", "viewer", b.Viewer, "case", b.CaseID)
		st.reaped = false
		st.reapedAt = time.Time{}
	}
	st.caseID = b.CaseID
	if b.Remote != "" {
		st.remote = b.Remote
	}
	st.lastSeen = now
	st.beats++
}

// Leave removes a viewer whose stream closed.
func (t *Tracker) Leave(viewer string) {
	t.mu.Lock()
	delete(t.viewers, viewer)
	t.mu.Unlock()
}

// Roster returns every tracked viewer, most recently seen first. When caseID
// is non-empty only viewers of that case are returned. Reaped viewers are
// included so that the roster shows who dropped.
func (t *Tracker) Roster(caseID string) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.viewers))
	for viewer, st := range t.viewers {
		if caseID != "" && st.caseID != caseID {
			continue
		}
		entries = append(entries, Entry{
			Viewer:     viewer,
			CaseID:     st.caseID,
			Remote:     st.remote,
			FirstSeen:  st.firstSeen,
			LastSeen:   st.lastSeen,
			IdleSecs:   now.Sub(st.lastSeen).Seconds(),
			Beats:      st.beats,
			Reaped:     st.reaped,
			ReapedAt:   st.reapedAt,
			OpenedSecs: now.Sub(st.firstSeen).Seconds(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].LastSeen.Equal(entries[j].LastSeen) {
			return entries[i].LastSeen.After(entries[j].LastSeen)
		}
		return entries[i].Viewer < entries[j].Viewer
	})
	return entries
}

// Watching counts the live (not reaped) viewers of caseID.
func (t *Tracker) Watching(caseID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, st := range t.viewers {
		if st.caseID == caseID && !st.reaped {
			n++
		}
	}
	return n
}

// StartReaper launches the reaper goroutine. Call Stop to shut it down.
func (t *Tracker) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.IdleThreshold == 0 {
		cfg.IdleThreshold = time.Minute
	}
	if cfg.EvictAfter == 0 {
		cfg.EvictAfter = 5 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 30 * time.Second
	}

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})

	go t.reapLoop(cfg)
	slog.Info("presence: reaper started",
		"idle_threshold", cfg.IdleThreshold,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (t *Tracker) Stop() {
	if t.reaperStop != nil {
		close(t.reaperStop)
		<-t.reaperDone
		t.reaperStop = nil
		t.reaperDone = nil
	}
}

func (t *Tracker) reapLoop(cfg *ReaperConfig) {
	defer close(t.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg, time.Now())
		}
	}
}

func (t *Tracker) sweep(cfg *ReaperConfig, now time.Time) {
	type goneViewer struct {
		viewer string
		caseID string
	}
	var gone []goneViewer

	t.mu.Lock()
	for viewer, st := range t.viewers {
		if st.reaped {
			if now.Sub(st.reapedAt) > cfg.EvictAfter {
				delete(t.viewers, viewer)
			}
			continue
		}
		if now.Sub(st.lastSeen) > cfg.IdleThreshold {
			st.reaped = true
			st.reapedAt = now
			gone = append(gone, goneViewer{viewer: viewer, caseID: st.caseID})
		}
	}
	t.mu.Unlock()

	for _, g := range gone {
		slog.Info("presence: viewer gone", "viewer", g.viewer, "case", g.caseID, "threshold", cfg.IdleThreshold)
		if cfg.OnGone != nil {
			cfg.OnGone(g.viewer, g.caseID)
		}
	}
}
