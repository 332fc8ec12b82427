package ui

import (
	"fmt"

	"github.com/hyperinsider/dashboard/internal/views"
)

// WhalesPanel lists accounts above the balance threshold.
type WhalesPanel struct {
	*tablePanel
	view *views.Whales
}

// NewWhalesPanel creates the whale table.
func NewWhalesPanel(view *views.Whales) *WhalesPanel {
	return &WhalesPanel{
		tablePanel: newTablePanel(view, []string{"Sel", "Wallet", "Name", "Balance", "PnL", "ROI", "Volume", "Positions"}),
		view:       view,
	}
}

// Update refreshes the table with the current rows.
func (p *WhalesPanel) Update() {
	prev := p.begin()

	for _, w := range p.view.Rows() {
		positions := "-"
		if w.OpenPositions > 0 {
			positions = fmt.Sprintf("%d", w.OpenPositions)
		}
		p.addRow(w.Address,
			p.markCell(w.Address),
			textCell(truncateAddress(w.Address)),
			textCell(w.DisplayName),
			numCell(formatUSD(w.Balance), colorNeutral),
			numCell(formatSignedUSD(w.PnL), signColor(w.PnL)),
			numCell(formatPct(w.ROI), signColor(w.ROI)),
			numCell(formatUSD(w.Volume), colorNeutral),
			numCell(positions, colorNeutral),
		)
	}

	p.finish(prev)
}
