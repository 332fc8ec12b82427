package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hyperinsider/dashboard/internal/views"
)

// StatsPanel shows per-wallet trade statistics with a totals line.
type StatsPanel struct {
	*tablePanel
	view   *views.Stats
	totals *tview.TextView
	layout *tview.Flex
}

// NewStatsPanel creates the statistics table.
func NewStatsPanel(view *views.Stats) *StatsPanel {
	p := &StatsPanel{
		tablePanel: newTablePanel(view, []string{"Sel", "Wallet", "Label", "Trades", "Win %", "PnL", "Volume", "Fees", "Best", "Worst", "Last"}),
		view:       view,
		totals:     tview.NewTextView().SetDynamicColors(true),
	}
	p.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.table, 0, 1, true).
		AddItem(p.totals, 1, 0, false)
	return p
}

// Widget returns the table with its totals line.
func (p *StatsPanel) Widget() tview.Primitive {
	return p.layout
}

// Update refreshes the table and totals.
func (p *StatsPanel) Update() {
	prev := p.begin()

	for _, st := range p.view.Rows() {
		p.addRow(st.Address,
			p.markCell(st.Address),
			textCell(truncateAddress(st.Address)),
			textCell(p.view.Label(st.Address)),
			numCell(fmt.Sprintf("%d", st.TotalTrades), colorNeutral),
			numCell(fmt.Sprintf("%.1f", st.WinRate), colorNeutral),
			numCell(formatSignedUSD(st.TotalPnL), signColor(st.TotalPnL)),
			numCell(formatUSD(st.Volume), colorNeutral),
			numCell(formatUSD(st.Fees), colorNeutral),
			numCell(formatSignedUSD(st.LargestWin), tcell.ColorGreen),
			numCell(formatSignedUSD(st.LargestLoss), tcell.ColorRed),
			textCell(formatTimeAgo(st.LastTrade)),
		)
	}

	p.finish(prev)

	t := p.view.Totals()
	p.totals.SetText(fmt.Sprintf(
		" [yellow]Total:[-] %d wallets | %d trades | win %.1f%% | PnL %s | volume %s | fees %s",
		t.Wallets, t.Trades, t.WinRate, formatSignedUSD(t.PnL), formatUSD(t.Volume), formatUSD(t.Fees)))
}
