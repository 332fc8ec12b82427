package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hyperinsider/dashboard/internal/store"
)

// WalletPoolView lists the wallets collected across all views.
type WalletPoolView struct {
	list    *tview.List
	entries []store.SelectedWallet
}

// NewWalletPoolView creates the wallet pool list.
func NewWalletPoolView() *WalletPoolView {
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetSelectedBackgroundColor(tcell.ColorDarkSlateGray)

	list.SetTitle(" Wallet Pool (0) ").SetBorder(true)

	return &WalletPoolView{list: list}
}

// Widget returns the tview primitive.
func (v *WalletPoolView) Widget() tview.Primitive {
	return v.list
}

// SelectedAddress is the wallet under the list cursor, or "".
func (v *WalletPoolView) SelectedAddress() string {
	i := v.list.GetCurrentItem()
	if i < 0 || i >= len(v.entries) {
		return ""
	}
	return v.entries[i].Address
}

// Update replaces the list with entries, newest at the bottom.
func (v *WalletPoolView) Update(entries []store.SelectedWallet) {
	current := v.list.GetCurrentItem()
	v.list.Clear()
	v.entries = entries

	for _, e := range entries {
		text := fmt.Sprintf("%s [gray]%s[-]", tview.Escape(e.Address), e.Source)
		v.list.AddItem(text, "", 0, nil)
	}
	if current < v.list.GetItemCount() {
		v.list.SetCurrentItem(current)
	}

	v.list.SetTitle(fmt.Sprintf(" Wallet Pool (%d) ", len(entries)))
}
