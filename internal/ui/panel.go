package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hyperinsider/dashboard/internal/views"
)

// panel is one switchable dashboard page.
type panel interface {
	Widget() tview.Primitive
	Focus() tview.Primitive
	Controller() views.Controller
	// Update re-renders from the controller. Call on the UI goroutine.
	Update()
	// SelectedAddress is the wallet of the row under the cursor, or "".
	SelectedAddress() string
}

// tablePanel is a bordered, row-selectable table bound to a controller.
type tablePanel struct {
	table   *tview.Table
	ctrl    views.Controller
	headers []string
	rowAddr []string // wallet per data row, index 0 = table row 1
}

func newTablePanel(ctrl views.Controller, headers []string) *tablePanel {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0).
		SetSelectable(true, false)

	table.SetTitle(fmt.Sprintf(" %s ", ctrl.Title())).SetBorder(true)

	p := &tablePanel{
		table:   table,
		ctrl:    ctrl,
		headers: headers,
	}
	p.setHeader()
	return p
}

func (p *tablePanel) Widget() tview.Primitive      { return p.table }
func (p *tablePanel) Focus() tview.Primitive       { return p.table }
func (p *tablePanel) Controller() views.Controller { return p.ctrl }

func (p *tablePanel) SelectedAddress() string {
	row, _ := p.table.GetSelection()
	if row < 1 || row > len(p.rowAddr) {
		return ""
	}
	return p.rowAddr[row-1]
}

func (p *tablePanel) setHeader() {
	for col, header := range p.headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false).
			SetExpansion(1)
		p.table.SetCell(0, col, cell)
	}
}

// begin clears the table and re-adds the header, returning the selected row
// so that finish can restore it.
func (p *tablePanel) begin() int {
	row, _ := p.table.GetSelection()
	p.table.Clear()
	p.setHeader()
	p.rowAddr = p.rowAddr[:0]
	return row
}

// addRow appends a data row for address.
func (p *tablePanel) addRow(address string, cells ...*tview.TableCell) {
	row := len(p.rowAddr) + 1
	p.rowAddr = append(p.rowAddr, address)
	for col, cell := range cells {
		p.table.SetCell(row, col, cell)
	}
}

// finish writes the placeholder for empty/loading/error states, restores
// the cursor and updates the title.
func (p *tablePanel) finish(prevRow int) {
	st := p.ctrl.Status()
	if len(p.rowAddr) == 0 {
		msg := "No data"
		switch {
		case st.Err != "" && !st.HasData:
			msg = "[red]" + tview.Escape(st.Err) + "[-]"
		case st.Loading && !st.HasData:
			msg = "Loading..."
		}
		p.table.SetCell(1, 0, tview.NewTableCell(msg).
			SetAlign(tview.AlignLeft).
			SetSelectable(false).
			SetExpansion(1))
	} else {
		if prevRow < 1 {
			prevRow = 1
		}
		if prevRow > len(p.rowAddr) {
			prevRow = len(p.rowAddr)
		}
		p.table.Select(prevRow, 0)
	}

	title := fmt.Sprintf(" %s (%d) | sort: %s | filter: %s | selected: %d ",
		p.ctrl.Title(), len(p.rowAddr), p.ctrl.SortLabel(), p.ctrl.FilterLabel(), p.ctrl.SelectedCount())
	if st.Loading {
		title += "| loading "
	}
	p.table.SetTitle(title)
}

// markCell renders the selection checkbox of address.
func (p *tablePanel) markCell(address string) *tview.TableCell {
	if p.ctrl.IsSelected(address) {
		return tview.NewTableCell("[x]").SetTextColor(tcell.ColorYellow)
	}
	return tview.NewTableCell("[ ]")
}

func textCell(text string) *tview.TableCell {
	return tview.NewTableCell(tview.Escape(text)).SetAlign(tview.AlignLeft)
}

func numCell(text string, color tcell.Color) *tview.TableCell {
	return tview.NewTableCell(text).
		SetAlign(tview.AlignRight).
		SetTextColor(color)
}
