package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/hyperinsider/dashboard/internal/metrics"
	"github.com/hyperinsider/dashboard/internal/views"
)

// StatusView displays the active view's refresh state and the session metrics.
type StatusView struct {
	textView *tview.TextView
}

// NewStatusView creates a new status view.
func NewStatusView() *StatusView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Status ").SetBorder(true)

	return &StatusView{
		textView: textView,
	}
}

// Widget returns the tview primitive.
func (v *StatusView) Widget() tview.Primitive {
	return v.textView
}

// Update refreshes the status display.
func (v *StatusView) Update(ctrl views.Controller, snapshot metrics.MetricsSnapshot, message string) {
	v.textView.Clear()

	st := ctrl.Status()

	state := "[green]idle[-]"
	switch {
	case st.Loading:
		state = "[yellow]loading[-]"
	case st.Err != "":
		state = "[red]error[-]"
	}

	auto := "off"
	if st.Auto {
		auto = "every " + formatDuration(st.AutoInterval)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]%s[-]: %s | updated %s | auto %s\n",
		ctrl.Title(), state, formatTimeAgo(st.LastUpdate), auto)
	if st.Err != "" {
		fmt.Fprintf(&b, "[red]%s[-]\n", tview.Escape(st.Err))
	}

	fmt.Fprintf(&b, "Uptime: %s | Fetch failures: %.1f%% | Selections: %d | Exports: %d\n",
		formatDuration(snapshot.Uptime), snapshot.FailureRate()*100, snapshot.Selections, snapshot.Exports)
	if snapshot.LastExport != "" {
		fmt.Fprintf(&b, "Last export: %s (%s)\n", tview.Escape(snapshot.LastExport), formatTimeAgo(snapshot.LastExportAt))
	}
	for _, vs := range snapshot.Views {
		fmt.Fprintf(&b, "[gray]%s: %d fetches, %d failed, last %s[-]\n",
			vs.View, vs.Fetches, vs.Failures, vs.LastLatency.Round(time.Millisecond))
	}
	if message != "" {
		fmt.Fprintf(&b, "\n%s", message)
	}

	fmt.Fprint(v.textView, b.String())
}
