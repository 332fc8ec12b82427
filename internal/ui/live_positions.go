package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hyperinsider/dashboard/internal/store"
	"github.com/hyperinsider/dashboard/internal/views"
)

// LivePanel shows the tracked positions next to per-wallet exposure.
type LivePanel struct {
	*tablePanel
	view     *views.Live
	exposure *tview.Table
	layout   *tview.Flex
}

// NewLivePanel creates the live position table and exposure summary.
func NewLivePanel(view *views.Live) *LivePanel {
	exposure := tview.NewTable().SetBorders(false).SetFixed(1, 0)
	exposure.SetTitle(" Exposure ").SetBorder(true)

	p := &LivePanel{
		tablePanel: newTablePanel(view, []string{"Sel", "Wallet", "Coin", "Side", "Size", "Entry", "Mark", "Value", "uPnL", "Lev", "Liq", "Status", "Updated"}),
		view:       view,
		exposure:   exposure,
	}
	p.layout = tview.NewFlex().
		AddItem(p.table, 0, 3, true).
		AddItem(p.exposure, 0, 1, false)
	return p
}

// Widget returns the positions table with the exposure summary.
func (p *LivePanel) Widget() tview.Primitive {
	return p.layout
}

// Update refreshes both tables.
func (p *LivePanel) Update() {
	prev := p.begin()

	for _, lp := range p.view.Rows() {
		statusColor := tcell.ColorGreen
		if lp.Status == store.StatusClosed {
			statusColor = tcell.ColorGray
		}
		sideColor := tcell.ColorGreen
		if lp.Side == store.SideShort {
			sideColor = tcell.ColorRed
		}
		liq := "-"
		if lp.LiquidationPrice > 0 {
			liq = formatPrice(lp.LiquidationPrice)
		}

		p.addRow(lp.Address,
			p.markCell(lp.Address),
			textCell(walletLabel(lp.Address, p.view.Label(lp.Address))),
			textCell(lp.Coin),
			textCell(lp.Side).SetTextColor(sideColor),
			numCell(fmt.Sprintf("%.4g", lp.Size), colorNeutral),
			numCell(formatPrice(lp.EntryPrice), colorNeutral),
			numCell(formatPrice(lp.MarkPrice()), colorNeutral),
			numCell(formatUSD(lp.PositionValue), colorNeutral),
			numCell(formatSignedUSD(lp.UnrealizedPnL), signColor(lp.UnrealizedPnL)),
			numCell(fmt.Sprintf("%dx", lp.Leverage), colorNeutral),
			numCell(liq, colorNeutral),
			textCell(lp.Status).SetTextColor(statusColor),
			textCell(formatTimeAgo(lp.UpdatedAt)),
		)
	}

	p.finish(prev)
	p.updateExposure()
}

func (p *LivePanel) updateExposure() {
	p.exposure.Clear()
	for col, header := range []string{"Wallet", "Net", "Gross", "uPnL"} {
		p.exposure.SetCell(0, col, tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetSelectable(false).
			SetExpansion(1))
	}

	for i, e := range p.view.Exposure() {
		row := i + 1
		p.exposure.SetCell(row, 0, textCell(walletLabel(e.Address, p.view.Label(e.Address))))
		p.exposure.SetCell(row, 1, numCell(formatSignedUSD(e.Net()), signColor(e.Net())))
		p.exposure.SetCell(row, 2, numCell(formatUSD(e.Gross()), colorNeutral))
		p.exposure.SetCell(row, 3, numCell(formatSignedUSD(e.UnrealizedPnL), signColor(e.UnrealizedPnL)))
	}
}

// walletLabel prefers a watchlist label over the shortened address.
func walletLabel(address, label string) string {
	if label != "" {
		return label
	}
	return truncateAddress(address)
}
