// Package updater keeps a bounded, live price series for one coin at a time.
//
// An activation loads the last hour of history once, then polls the current
// price on a fixed interval and appends every usable answer. Activating
// another coin, or deactivating, cancels the poll and drops the series.
// Results that belong to a superseded activation are discarded.
package updater

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mehrbod2002/coinboard/internal/history"
	"github.com/mehrbod2002/coinboard/internal/metrics"
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/mehrbod2002/coinboard/internal/poller"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	DefaultInterval      = 5 * time.Second
	DefaultUpdatedLayout = "03:04:05 PM"

	historyErrorMessage = "Failed to load price history data"
)

// Source provides the data of an activation.
type Source interface {
	// History returns the normalized recent price history of a coin.
	History(ctx context.Context, coinID string) ([]models.PricePoint, error)
	// Price returns the current price as a decimal string. An empty string
	// means the source had no price to report.
	Price(ctx context.Context, coinID string) (string, error)
}

// Renderer receives every state change. Views arrive one at a time with
// increasing versions. Render must not call back into the Updater
// synchronously.
type Renderer interface {
	Render(View)
}

type RenderFunc func(View)

func (f RenderFunc) Render(v View) { f(v) }

type Config struct {
	Interval      time.Duration
	MaxRetained   int
	Labeler       history.Labeler
	UpdatedLayout string
	Now           func() time.Time
	Ticker        poller.TickerFunc
	Metrics       *metrics.Prometheus
}

func DefaultConfig() Config {
	return Config{
		Interval:      DefaultInterval,
		MaxRetained:   DefaultMaxRetained,
		Labeler:       history.NewLabeler(time.UTC),
		UpdatedLayout: DefaultUpdatedLayout,
		Now:           time.Now,
	}
}

// Session is the polling state of a live activation.
type Session struct {
	Active      bool
	LastUpdated string
}

// View is an immutable snapshot of the updater.
type View struct {
	Version     uint64              `json:"version"`
	CoinID      string              `json:"coin_id"`
	State       State               `json:"state"`
	Points      []models.PricePoint `json:"points"`
	Active      bool                `json:"active"`
	LastUpdated string              `json:"last_updated,omitempty"`
	Error       string              `json:"error,omitempty"`
	NotFound    bool                `json:"not_found,omitempty"`
	Range       Range               `json:"range"`
}

type Updater struct {
	cfg      Config
	source   Source
	renderer Renderer

	mu       sync.Mutex
	gen      uint64
	version  uint64
	coinID   string
	state    State
	series   *Series
	session  *Session
	loadedAt time.Time
	errMsg   string
	notFound bool
	cancel   context.CancelFunc
	task     *poller.Handle

	renderMu sync.Mutex
	rendered uint64
}

func New(source Source, renderer Renderer, cfg Config) *Updater {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxRetained <= 0 {
		cfg.MaxRetained = def.MaxRetained
	}
	if cfg.UpdatedLayout == "" {
		cfg.UpdatedLayout = def.UpdatedLayout
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	return &Updater{
		cfg:      cfg,
		source:   source,
		renderer: renderer,
		state:    StateIdle,
		series:   NewSeries(cfg.MaxRetained),
	}
}

// Activate starts a new activation for coinID, replacing any current one.
// An empty coinID deactivates.
func (u *Updater) Activate(coinID string) {
	coinID = strings.TrimSpace(coinID)
	if coinID == "" {
		u.Deactivate()
		return
	}

	u.mu.Lock()
	u.resetLocked()
	gen := u.gen
	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.coinID = coinID
	u.state = StateLoadingHistory
	v := u.changedLocked()
	u.mu.Unlock()

	u.publish(v)
	go u.loadHistory(ctx, gen, coinID)
}

// Retry reactivates the current coin, typically after a failed load.
func (u *Updater) Retry() {
	u.mu.Lock()
	coinID := u.coinID
	u.mu.Unlock()
	if coinID != "" {
		u.Activate(coinID)
	}
}

// Deactivate cancels the current activation and returns to idle. It is safe
// to call at any time.
func (u *Updater) Deactivate() {
	u.mu.Lock()
	if u.state == StateIdle && u.coinID == "" {
		u.mu.Unlock()
		return
	}
	u.resetLocked()
	v := u.changedLocked()
	u.mu.Unlock()

	u.publish(v)
}

// Snapshot returns the current view.
func (u *Updater) Snapshot() View {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.viewLocked()
}

// LoadedAt reports when the history of the current activation arrived.
func (u *Updater) LoadedAt() time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.loadedAt
}

// resetLocked cancels the timer and any pending request, then discards the
// series and session. Bumping gen invalidates results still in flight.
func (u *Updater) resetLocked() {
	u.task.Cancel()
	u.task = nil
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
	u.gen++
	u.coinID = ""
	u.state = StateIdle
	u.series = NewSeries(u.cfg.MaxRetained)
	u.session = nil
	u.loadedAt = time.Time{}
	u.errMsg = ""
	u.notFound = false
}

func (u *Updater) loadHistory(ctx context.Context, gen uint64, coinID string) {
	points, err := u.source.History(ctx, coinID)

	u.mu.Lock()
	if gen != u.gen {
		u.mu.Unlock()
		return
	}

	if err != nil {
		u.state = StateFailed
		u.notFound = models.IsNotFound(err)
		if u.notFound {
			u.errMsg = fmt.Sprintf("Cryptocurrency with ID '%s' not found", coinID)
		} else {
			u.errMsg = historyErrorMessage
		}
		v := u.changedLocked()
		u.mu.Unlock()

		log.Warn().Err(err).Str("coin", coinID).Msg("price history load failed")
		u.publish(v)
		return
	}

	now := u.cfg.Now()
	u.series.Reset(points)
	u.loadedAt = now
	u.session = &Session{Active: true, LastUpdated: now.In(u.location()).Format(u.cfg.UpdatedLayout)}
	u.state = StateLive

	opts := []poller.Option{poller.WithTicker(u.cfg.Ticker)}
	u.task = poller.Start(ctx, u.cfg.Interval, func(tickCtx context.Context) {
		u.tick(tickCtx, gen, coinID)
	}, opts...)

	v := u.changedLocked()
	u.mu.Unlock()

	log.Debug().Str("coin", coinID).Int("points", len(points)).Msg("price history loaded")
	u.publish(v)
}

func (u *Updater) tick(ctx context.Context, gen uint64, coinID string) {
	price, err := u.source.Price(ctx, coinID)
	if err != nil {
		if ctx.Err() == nil {
			log.Debug().Err(err).Str("coin", coinID).Msg("live price poll failed")
		}
		u.cfg.Metrics.Tick("error")
		return
	}
	if !usablePrice(price) {
		u.cfg.Metrics.Tick("skipped")
		return
	}

	u.mu.Lock()
	if gen != u.gen || u.state != StateLive {
		u.mu.Unlock()
		u.cfg.Metrics.Tick("stale")
		return
	}
	now := u.cfg.Now()
	ms := now.UnixMilli()
	u.series.Append(models.PricePoint{
		Time:     ms,
		PriceUsd: strings.TrimSpace(price),
		Date:     u.cfg.Labeler.Label(ms),
	})
	u.session.LastUpdated = now.In(u.location()).Format(u.cfg.UpdatedLayout)
	v := u.changedLocked()
	u.mu.Unlock()

	u.cfg.Metrics.Tick("appended")
	u.publish(v)
}

func (u *Updater) location() *time.Location {
	if u.cfg.Labeler.Location != nil {
		return u.cfg.Labeler.Location
	}
	return time.UTC
}

func (u *Updater) changedLocked() View {
	u.version++
	return u.viewLocked()
}

func (u *Updater) viewLocked() View {
	points := u.series.Points()
	v := View{
		Version:  u.version,
		CoinID:   u.coinID,
		State:    u.state,
		Points:   points,
		Error:    u.errMsg,
		NotFound: u.notFound,
		Range:    DisplayRange(points),
	}
	if u.session != nil {
		v.Active = u.session.Active
		v.LastUpdated = u.session.LastUpdated
	}
	return v
}

// publish hands v to the renderer unless a newer view was already rendered.
func (u *Updater) publish(v View) {
	u.renderMu.Lock()
	defer u.renderMu.Unlock()
	if v.Version <= u.rendered {
		return
	}
	u.rendered = v.Version
	if u.renderer != nil {
		u.renderer.Render(v)
	}
}

func usablePrice(price string) bool {
	price = strings.TrimSpace(price)
	if price == "" {
		return false
	}
	_, err := decimal.NewFromString(price)
	return err == nil
}
