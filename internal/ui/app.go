// Package ui provides terminal user interface components.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hyperinsider/dashboard/internal/metrics"
	"github.com/hyperinsider/dashboard/internal/store"
	"github.com/hyperinsider/dashboard/internal/views"
	"github.com/hyperinsider/dashboard/internal/wallets"
)

const (
	pageMain      = "main"
	pageModal     = "modal"
	drillTimeout  = 15 * time.Second
	defaultUIRate = 500 * time.Millisecond
)

const helpText = " [yellow]1-4/Tab[-] view  [yellow]space[-] select  [yellow]a[-] all  [yellow]d[-] none  " +
	"[yellow]r[-] refresh  [yellow]p[-] auto  [yellow]s[-] sort  [yellow]f[-] filter  [yellow]w[-] window  " +
	"[yellow]o[-] coin  [yellow]l[-] side  [yellow]enter[-] positions  [yellow]e[-] export  " +
	"[yellow]c[-] copy pool  [yellow]y[-] copy row  [yellow]g[-] pool focus  [yellow]u[-] unpool  " +
	"[yellow]x[-] clear pool  [yellow]q[-] quit"

// Views are the controllers the application displays, one page each.
type Views struct {
	Leaderboard *views.Leaderboard
	Whales      *views.Whales
	Stats       *views.Stats
	Live        *views.Live
}

// App is the main TUI application.
type App struct {
	app    *tview.Application
	root   *tview.Pages
	pages  *tview.Pages
	tabs   *tview.TextView
	layout *tview.Flex

	// Views
	views   Views
	panels  []panel
	pool    *WalletPoolView
	status  *StatusView
	current int

	aggregator     *wallets.Aggregator
	metricsTracker *metrics.MetricsTracker
	refreshRate    time.Duration
	copyText       func(string) error

	// State below is only touched on the UI goroutine
	message     string
	modalOpen   bool
	poolFocused bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates a new TUI application. refreshRate is the redraw period.
func NewApp(ctx context.Context, v Views, aggregator *wallets.Aggregator, tracker *metrics.MetricsTracker, refreshRate time.Duration) *App {
	ctx, cancel := context.WithCancel(ctx)
	if refreshRate <= 0 {
		refreshRate = defaultUIRate
	}

	app := &App{
		app:            tview.NewApplication(),
		views:          v,
		current:        -1,
		aggregator:     aggregator,
		metricsTracker: tracker,
		refreshRate:    refreshRate,
		copyText:       clipboard.WriteAll,
		ctx:            ctx,
		cancel:         cancel,
	}

	// Initialize views
	app.panels = []panel{
		NewLeaderboardPanel(v.Leaderboard),
		NewWhalesPanel(v.Whales),
		NewStatsPanel(v.Stats),
		NewLivePanel(v.Live),
	}
	app.pool = NewWalletPoolView()
	app.status = NewStatusView()
	for _, p := range app.panels {
		p.Controller().OnChange(app.redraw)
	}

	// Setup layout
	app.setupLayout()

	// Setup keyboard shortcuts
	app.setupKeyboard()

	return app
}

// setupLayout creates the tab bar, the view pages and the bottom row.
func (a *App) setupLayout() {
	a.tabs = tview.NewTextView().SetDynamicColors(true)

	a.pages = tview.NewPages()
	for _, p := range a.panels {
		a.pages.AddPage(p.Controller().Name(), p.Widget(), true, false)
	}

	// Bottom row: Wallet Pool (left) | Status (right)
	bottomRow := tview.NewFlex().
		AddItem(a.pool.Widget(), 0, 1, false).
		AddItem(a.status.Widget(), 0, 2, false)

	help := tview.NewTextView().SetDynamicColors(true).SetText(helpText)

	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.tabs, 1, 0, false).
		AddItem(a.pages, 0, 3, true).
		AddItem(bottomRow, 10, 0, false).
		AddItem(help, 1, 0, false)

	a.root = tview.NewPages().AddPage(pageMain, a.layout, true, true)
	a.app.SetRoot(a.root, true)
}

// setupKeyboard configures keyboard shortcuts.
func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			a.Stop()
			return nil
		}
		if a.modalOpen {
			return event
		}

		switch event.Key() {
		case tcell.KeyTab:
			a.show((a.current + 1) % len(a.panels))
			return nil
		case tcell.KeyBacktab:
			a.show((a.current + len(a.panels) - 1) % len(a.panels))
			return nil
		case tcell.KeyEnter:
			if a.panels[a.current].Controller().Name() == views.NameWhales {
				a.drillDown()
				return nil
			}
			return event
		case tcell.KeyRune:
			if a.handleRune(event.Rune()) {
				a.render()
				return nil
			}
		}
		return event
	})
}

// handleRune runs the action bound to r and reports whether one exists.
func (a *App) handleRune(r rune) bool {
	p := a.panels[a.current]
	ctrl := p.Controller()

	switch r {
	case 'q', 'Q':
		a.Stop()
	case '1', '2', '3', '4':
		a.show(int(r - '1'))
	case ' ':
		addr := p.SelectedAddress()
		if addr == "" {
			return true
		}
		if ctrl.ToggleRow(addr) {
			a.flash("selected %s", addr)
		} else {
			a.flash("deselected %s", addr)
		}
	case 'a':
		n := ctrl.SelectAllVisible()
		a.flash("selected %d visible wallets", n)
	case 'd':
		ctrl.DeselectAll()
		a.flash("cleared %s selection", ctrl.Name())
	case 'r', 'R':
		ctrl.Refresh()
	case 'p':
		if ctrl.Name() != views.NameLive {
			a.flash("auto-refresh is only available on the live view")
			return true
		}
		if a.views.Live.ToggleAuto() {
			a.flash("auto-refresh on")
		} else {
			a.flash("auto-refresh paused")
		}
	case 's':
		ctrl.CycleSort()
	case 'f':
		ctrl.CycleFilter()
	case 'w':
		if ctrl.Name() == views.NameLeaderboard {
			a.views.Leaderboard.CycleWindow()
		}
	case 'o':
		if ctrl.Name() == views.NameStats {
			a.views.Stats.CycleCoin()
		}
	case 'l':
		switch ctrl.Name() {
		case views.NameStats:
			a.views.Stats.CycleSide()
		case views.NameLive:
			a.views.Live.CycleSide()
		}
	case 'e':
		a.showExport()
	case 'c':
		a.copyPool()
	case 'y':
		if addr := p.SelectedAddress(); addr != "" {
			a.copy(addr, "copied "+addr)
		}
	case 'g':
		a.poolFocused = !a.poolFocused
		if a.poolFocused {
			a.app.SetFocus(a.pool.Widget())
		} else {
			a.app.SetFocus(p.Focus())
		}
	case 'u':
		addr := p.SelectedAddress()
		if a.poolFocused {
			addr = a.pool.SelectedAddress()
		}
		if addr != "" {
			a.unpool(addr)
		}
	case 'x':
		// Selections are cleared too, so no view shows a mark for a wallet
		// that is no longer pooled.
		a.aggregator.Clear()
		for _, p := range a.panels {
			p.Controller().DeselectAll()
		}
		a.metricsTracker.SetWalletsPooled(0)
		a.flash("wallet pool cleared")
	default:
		return false
	}
	return true
}

// unpool drops addr from the wallet pool and unmarks it in every view.
func (a *App) unpool(addr string) {
	if !a.aggregator.Remove(addr) {
		a.flash("%s is not pooled", addr)
		return
	}
	for _, p := range a.panels {
		if ctrl := p.Controller(); ctrl.IsSelected(addr) {
			ctrl.ToggleRow(addr)
		}
	}
	a.metricsTracker.SetWalletsPooled(a.aggregator.Len())
	a.flash("removed %s from the pool", addr)
}

// Run starts the TUI application (blocking).
func (a *App) Run() error {
	a.show(0)

	go a.updateLoop()

	// Run the TUI (blocking)
	err := a.app.Run()
	if a.current >= 0 {
		a.panels[a.current].Controller().Deactivate()
	}
	a.cancel()
	if err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// show switches to the view at index i, deactivating the previous one.
func (a *App) show(i int) {
	if i == a.current || i < 0 || i >= len(a.panels) {
		return
	}
	if a.current >= 0 {
		a.panels[a.current].Controller().Deactivate()
	}
	a.current = i
	a.poolFocused = false

	p := a.panels[i]
	a.pages.SwitchToPage(p.Controller().Name())
	a.app.SetFocus(p.Focus())
	p.Controller().Activate()
	a.render()
}

// redraw queues a render from a new goroutine. Scheduler transitions also
// fire on the UI goroutine, where queueing directly could block.
func (a *App) redraw() {
	if a.ctx.Err() != nil {
		return
	}
	go a.app.QueueUpdateDraw(a.render)
}

// updateLoop periodically redraws the active view from controller state.
func (a *App) updateLoop() {
	ticker := time.NewTicker(a.refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.app.QueueUpdateDraw(a.render)
		}
	}
}

// render redraws every visible component. Call on the UI goroutine.
func (a *App) render() {
	if a.current < 0 {
		return
	}
	p := a.panels[a.current]
	p.Update()
	a.pool.Update(a.aggregator.Entries())
	a.status.Update(p.Controller(), a.metricsTracker.Snapshot(), a.message)
	a.tabs.SetText(a.tabText())
}

func (a *App) tabText() string {
	var b strings.Builder
	for i, p := range a.panels {
		ctrl := p.Controller()
		label := fmt.Sprintf("%d %s (%d)", i+1, ctrl.Title(), ctrl.SelectedCount())
		if i == a.current {
			fmt.Fprintf(&b, " [black:yellow] %s [-:-]", label)
		} else {
			fmt.Fprintf(&b, "  %s ", label)
		}
	}
	return b.String()
}

func (a *App) flash(format string, args ...any) {
	a.message = time.Now().Format("15:04:05") + " " + fmt.Sprintf(format, args...)
}

// showExport asks for a format and exports the wallet pool.
func (a *App) showExport() {
	n := a.aggregator.Len()
	if n == 0 {
		return
	}

	modal := tview.NewModal().
		SetText(fmt.Sprintf("Export %d wallets as", n)).
		AddButtons([]string{string(wallets.FormatTXT), string(wallets.FormatCSV), string(wallets.FormatJSON), "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			a.closeModal()
			format, err := wallets.ParseFormat(label)
			if err != nil {
				return
			}
			a.export(format)
		})
	a.openModal(modal)
}

func (a *App) export(format wallets.Format) {
	name, err := a.aggregator.Export(format)
	switch {
	case err != nil:
		slog.Error("export_failed", "format", string(format), "error", err)
		a.flash("[red]export failed: %s[-]", tview.Escape(err.Error()))
	case name != "":
		a.flash("exported %s", name)
	}
	a.render()
}

// copyPool copies every pooled address, one per line.
func (a *App) copyPool() {
	entries := a.aggregator.Entries()
	if len(entries) == 0 {
		a.flash("wallet pool is empty, nothing to copy")
		return
	}
	addrs := make([]string, len(entries))
	for i, e := range entries {
		addrs[i] = e.Address
	}
	a.copy(strings.Join(addrs, "\n"), fmt.Sprintf("copied %d addresses", len(addrs)))
}

func (a *App) copy(text, success string) {
	if err := a.copyText(text); err != nil {
		slog.Warn("clipboard_write_failed", "error", err)
		a.flash("[red]clipboard unavailable: %s[-]", tview.Escape(err.Error()))
		return
	}
	a.flash("%s", success)
}

// drillDown loads the open positions of the highlighted whale.
func (a *App) drillDown() {
	addr := a.panels[a.current].SelectedAddress()
	if addr == "" {
		return
	}
	a.flash("loading positions of %s", addr)
	a.render()

	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, drillTimeout)
		defer cancel()

		positions, err := a.views.Whales.Positions(ctx, addr)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				slog.Warn("positions_fetch_failed", "address", addr, "error", err)
				a.flash("[red]positions of %s: %s[-]", addr, tview.Escape(err.Error()))
				a.render()
				return
			}
			a.message = ""
			a.showPositions(addr, positions)
		})
	}()
}

func (a *App) showPositions(addr string, positions []store.Position) {
	table := tview.NewTable().SetBorders(false).SetFixed(1, 0).SetSelectable(true, false)
	table.SetTitle(fmt.Sprintf(" %s: %d positions (esc to close) ", addr, len(positions))).SetBorder(true)

	for col, header := range []string{"Coin", "Side", "Size", "Entry", "Value", "uPnL", "ROE", "Lev", "Liq"} {
		table.SetCell(0, col, tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetSelectable(false).
			SetExpansion(1))
	}
	for i, pos := range positions {
		row := i + 1
		liq := "-"
		if pos.LiquidationPrice > 0 {
			liq = formatPrice(pos.LiquidationPrice)
		}
		table.SetCell(row, 0, textCell(pos.Coin))
		table.SetCell(row, 1, textCell(pos.Side))
		table.SetCell(row, 2, numCell(fmt.Sprintf("%.4g", pos.Size), colorNeutral))
		table.SetCell(row, 3, numCell(formatPrice(pos.EntryPrice), colorNeutral))
		table.SetCell(row, 4, numCell(formatUSD(pos.PositionValue), colorNeutral))
		table.SetCell(row, 5, numCell(formatSignedUSD(pos.UnrealizedPnL), signColor(pos.UnrealizedPnL)))
		table.SetCell(row, 6, numCell(formatPct(pos.ReturnOnEquity), signColor(pos.ReturnOnEquity)))
		table.SetCell(row, 7, numCell(fmt.Sprintf("%dx", pos.Leverage), colorNeutral))
		table.SetCell(row, 8, numCell(liq, colorNeutral))
	}
	if len(positions) == 0 {
		table.SetCell(1, 0, tview.NewTableCell("No open positions").SetSelectable(false))
	}

	table.SetDoneFunc(func(tcell.Key) { a.closeModal() })
	a.openModal(center(table, 110, len(positions)+4))
}

func (a *App) openModal(p tview.Primitive) {
	a.modalOpen = true
	a.root.AddPage(pageModal, p, true, true)
	a.app.SetFocus(p)
}

func (a *App) closeModal() {
	a.modalOpen = false
	a.poolFocused = false
	a.root.RemovePage(pageModal)
	a.app.SetFocus(a.panels[a.current].Focus())
}

// center places p in the middle of the screen at the given size.
func center(p tview.Primitive, width, height int) tview.Primitive {
	if height > 30 {
		height = 30
	}
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
