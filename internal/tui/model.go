// Package tui is a terminal dashboard over the coinboard proxy: a sortable
// top list and a per-coin live chart.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/mehrbod2002/coinboard/internal/service"
	"github.com/mehrbod2002/coinboard/internal/updater"
)

const (
	DefaultLimit = 20

	viewBuffer  = 16
	listTimeout = 15 * time.Second
)

type Screen int

const (
	ScreenList Screen = iota
	ScreenCoin
)

// Market loads the top assets and single coin snapshots.
type Market interface {
	ListAssets(ctx context.Context, limit int, sort service.SortConfig) ([]models.Asset, error)
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
}

type assetsMsg struct {
	assets []models.Asset
	err    error
}

type assetMsg struct {
	asset *models.Asset
	err   error
}

type viewMsg updater.View

// viewRelay hands updater views to the program. When the program falls
// behind the oldest queued view is dropped; every view is a full snapshot.
type viewRelay chan updater.View

func (r viewRelay) Render(v updater.View) {
	for {
		select {
		case r <- v:
			return
		default:
		}
		select {
		case <-r:
		default:
		}
	}
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	market  Market
	updater *updater.Updater
	views   viewRelay

	sort    service.SortConfig
	limit   int
	assets  []models.Asset
	cursor  int
	listErr error
	loading bool

	screen Screen
	coin   models.Asset
	view   updater.View

	width  int
	height int
}

// NewModel builds the dashboard. The chart updater is created here so that
// its views flow back into the program.
func NewModel(market Market, source updater.Source, cfg updater.Config) *Model {
	views := make(viewRelay, viewBuffer)
	return &Model{
		market:  market,
		updater: updater.New(source, views, cfg),
		views:   views,
		sort:    service.DefaultSortConfig(),
		limit:   DefaultLimit,
		loading: true,
		width:   80,
		height:  24,
	}
}

// Updater exposes the chart updater so callers can stop it on exit.
func (m *Model) Updater() *updater.Updater {
	return m.updater
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadAssets(), m.waitForView())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case assetsMsg:
		m.loading = false
		m.listErr = msg.err
		if msg.err == nil {
			m.assets = service.SortAssets(msg.assets, m.sort)
			if m.cursor >= len(m.assets) {
				m.cursor = 0
			}
		}

	case assetMsg:
		if msg.err == nil && msg.asset != nil && msg.asset.ID == m.coin.ID {
			m.coin = *msg.asset
		}

	case viewMsg:
		m.view = updater.View(msg)
		return m, m.waitForView()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return tea.Quit
	}

	if m.screen == ScreenCoin {
		switch key {
		case "esc", "backspace":
			m.screen = ScreenList
			return m.deactivate()
		case "r":
			if m.view.State == updater.StateFailed {
				return tea.Batch(m.retry(), m.loadCoin(m.coin.ID))
			}
		}
		return nil
	}

	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.assets)-1 {
			m.cursor++
		}
	case "r":
		m.applySort(m.sort.WithSortBy(service.SortByRank))
	case "p":
		m.applySort(m.sort.WithSortBy(service.SortByPrice))
	case "c":
		m.applySort(m.sort.WithSortBy(service.SortByChange))
	case "o":
		m.applySort(m.sort.ToggleOrder())
	case "g":
		m.loading = true
		return m.loadAssets()
	case "enter":
		if len(m.assets) == 0 {
			return nil
		}
		m.coin = m.assets[m.cursor]
		m.screen = ScreenCoin
		return tea.Batch(m.activate(m.coin.ID), m.loadCoin(m.coin.ID))
	}
	return nil
}

func (m *Model) applySort(cfg service.SortConfig) {
	var selected string
	if m.cursor < len(m.assets) {
		selected = m.assets[m.cursor].ID
	}
	m.sort = cfg
	m.assets = service.SortAssets(m.assets, cfg)
	for i, a := range m.assets {
		if a.ID == selected {
			m.cursor = i
			break
		}
	}
}

func (m *Model) loadAssets() tea.Cmd {
	market, limit, sort := m.market, m.limit, m.sort
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()
		assets, err := market.ListAssets(ctx, limit, sort)
		return assetsMsg{assets: assets, err: err}
	}
}

// loadCoin refreshes the snapshot shown next to the chart; the list entry
// may be minutes old.
func (m *Model) loadCoin(id string) tea.Cmd {
	market := m.market
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()
		asset, err := market.GetAsset(ctx, id)
		return assetMsg{asset: asset, err: err}
	}
}

func (m *Model) waitForView() tea.Cmd {
	views := m.views
	return func() tea.Msg {
		return viewMsg(<-views)
	}
}

// The updater renders synchronously into the relay, so it is driven from
// commands rather than from Update.
func (m *Model) activate(id string) tea.Cmd {
	u := m.updater
	return func() tea.Msg {
		u.Activate(id)
		return nil
	}
}

func (m *Model) deactivate() tea.Cmd {
	u := m.updater
	return func() tea.Msg {
		u.Deactivate()
		return nil
	}
}

func (m *Model) retry() tea.Cmd {
	u := m.updater
	return func() tea.Msg {
		u.Retry()
		return nil
	}
}

func (m *Model) View() string {
	var body string
	if m.screen == ScreenCoin {
		body = m.coinView()
	} else {
		body = m.listView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar())
}

func (m *Model) listView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Top Cryptocurrencies"))
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  sorted by %s (%s)", m.sort.SortBy, m.sort.SortOrder)))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.assets) == 0:
		b.WriteString(MutedStyle.Render("Loading..."))
		return PanelStyle.Render(b.String())
	case m.listErr != nil:
		b.WriteString(ErrorStyle.Render("Failed to fetch cryptocurrencies"))
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render(m.listErr.Error()))
		return PanelStyle.Render(b.String())
	}

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%-5s %-8s %-22s %16s %10s", "#", "SYMBOL", "NAME", "PRICE", "24H")))
	b.WriteString("\n")
	for i, a := range m.assets {
		row := fmt.Sprintf("%-5s %-8s %s %16s ", a.Rank, truncate(a.Symbol, 8), truncate(a.Name, 22), USD(a.PriceUsd))
		change := ChangeStyle(positive(a.ChangePercent24Hr)).Render(fmt.Sprintf("%10s", Percent(a.ChangePercent24Hr)))
		if i == m.cursor {
			b.WriteString(SelectedRowStyle.Render(row) + change)
		} else {
			b.WriteString(RowStyle.Render(row) + change)
		}
		b.WriteString("\n")
	}
	return PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) coinView() string {
	var b strings.Builder
	title := m.coin.ID
	if m.coin.Name != "" {
		title = fmt.Sprintf("%s (%s)", m.coin.Name, m.coin.Symbol)
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	v := m.view
	if v.CoinID != "" && v.CoinID != m.coin.ID {
		b.WriteString(MutedStyle.Render("Loading price history..."))
		return PanelStyle.Render(b.String())
	}

	switch v.State {
	case updater.StateFailed:
		b.WriteString(ErrorStyle.Render(v.Error))
		if !v.NotFound {
			b.WriteString("\n")
			b.WriteString(MutedStyle.Render("press r to retry"))
		}
	case updater.StateLive:
		last := models.Numeric("")
		if n := len(v.Points); n > 0 {
			last = models.Numeric(v.Points[n-1].PriceUsd)
		}
		b.WriteString(fmt.Sprintf("%s  ", USD(last)))
		b.WriteString(ChangeStyle(positive(m.coin.ChangePercent24Hr)).Render(Percent(m.coin.ChangePercent24Hr)))
		b.WriteString("\n\n")

		width := m.width - 6
		if width < 10 {
			width = 10
		}
		b.WriteString(ChartStyle.Render(Sparkline(v.Points, v.Range, width)))
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render(fmt.Sprintf("range %s - %s  points %d",
			USD(models.Numeric(fmt.Sprintf("%f", v.Range.Min))),
			USD(models.Numeric(fmt.Sprintf("%f", v.Range.Max))),
			len(v.Points))))
		b.WriteString("\n")
		if v.Active {
			b.WriteString(UpStyle.Render("● Live"))
		}
		b.WriteString(MutedStyle.Render("  Last updated: " + v.LastUpdated))
		b.WriteString("\n\n")
		b.WriteString(m.marketData())
	default:
		b.WriteString(MutedStyle.Render("Loading price history..."))
	}
	return PanelStyle.Render(b.String())
}

func (m *Model) marketData() string {
	c := m.coin
	rows := [][2]string{
		{"Rank", "#" + c.Rank.String()},
		{"Market Cap", USD(c.MarketCapUsd)},
		{"Volume 24h", USD(c.VolumeUsd24Hr)},
		{"VWAP 24h", USD(c.Vwap24Hr)},
		{"Supply", Grouped(c.Supply) + " " + c.Symbol},
		{"Max Supply", MaxSupply(c.MaxSupply, c.Symbol)},
		{"% of Max", SupplyRatio(c.Supply, c.MaxSupply)},
	}
	if c.Explorer != "" {
		rows = append(rows, [2]string{"Explorer", c.Explorer})
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = HeaderStyle.Render(fmt.Sprintf("%-11s ", r[0])) + r[1]
	}
	return strings.Join(lines, "\n")
}

// truncate pads or cuts s to width runes.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}

func (m *Model) statusBar() string {
	var help []string
	if m.screen == ScreenCoin {
		help = []string{
			StatusBarKeyStyle.Render("esc") + " back",
			StatusBarKeyStyle.Render("q") + " quit",
		}
	} else {
		help = []string{
			StatusBarKeyStyle.Render("↑↓") + " select",
			StatusBarKeyStyle.Render("enter") + " chart",
			StatusBarKeyStyle.Render("r/p/c") + " sort",
			StatusBarKeyStyle.Render("o") + " order",
			StatusBarKeyStyle.Render("g") + " reload",
			StatusBarKeyStyle.Render("q") + " quit",
		}
	}
	return StatusBarStyle.Render(strings.Join(help, " │ "))
}
