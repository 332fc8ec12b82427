package ui

import (
	"fmt"

	"github.com/hyperinsider/dashboard/internal/views"
)

// LeaderboardPanel shows the ranked traders for the selected window.
type LeaderboardPanel struct {
	*tablePanel
	view *views.Leaderboard
}

// NewLeaderboardPanel creates the leaderboard table.
func NewLeaderboardPanel(view *views.Leaderboard) *LeaderboardPanel {
	return &LeaderboardPanel{
		tablePanel: newTablePanel(view, []string{"Sel", "#", "Trader", "Name", "Account", "PnL", "ROI", "Volume"}),
		view:       view,
	}
}

// Update refreshes the table with the current rows.
func (p *LeaderboardPanel) Update() {
	prev := p.begin()
	window := p.view.Params().Window

	for _, t := range p.view.Rows() {
		perf := t.Perf(window)
		p.addRow(t.Address,
			p.markCell(t.Address),
			textCell(fmt.Sprintf("%d", t.Rank)),
			textCell(truncateAddress(t.Address)),
			textCell(t.DisplayName),
			numCell(formatUSD(t.AccountValue), colorNeutral),
			numCell(formatSignedUSD(perf.PnL), signColor(perf.PnL)),
			numCell(formatPct(perf.ROI), signColor(perf.ROI)),
			numCell(formatUSD(perf.Volume), colorNeutral),
		)
	}

	p.finish(prev)
}
