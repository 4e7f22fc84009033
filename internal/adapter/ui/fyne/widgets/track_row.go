package widgets

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// Ensure TrackRow implements the Tappable interface
var _ fyneapp.Tappable = (*TrackRow)(nil)

// RowState is the playback marker shown in front of a row.
type RowState int

const (
	RowIdle RowState = iota
	RowPaused
	RowPlaying
)

// TrackRow is a label that triggers its track when tapped.
// Rows are recycled by widget.List, so the index is reassigned on update.
type TrackRow struct {
	widget.Label
	tapped func(index int)
	index  int
}

// NewTrackRow creates a row invoking tapped with the row index.
func NewTrackRow(tapped func(index int)) *TrackRow {
	row := &TrackRow{
		tapped: tapped,
		index:  -1,
	}
	row.Truncation = fyneapp.TextTruncateEllipsis
	row.ExtendBaseWidget(row)
	return row
}

// Tapped implements fyne.Tappable.
func (r *TrackRow) Tapped(*fyneapp.PointEvent) {
	if r.tapped != nil && r.index >= 0 {
		r.tapped(r.index)
	}
}

// Update rebinds the row to a track.
func (r *TrackRow) Update(index int, text string, state RowState) {
	r.index = index
	r.TextStyle = fyneapp.TextStyle{Bold: state != RowIdle}
	r.SetText(marker(state) + text)
}

// Index returns the row's track index.
func (r *TrackRow) Index() int {
	return r.index
}

func marker(state RowState) string {
	switch state {
	case RowPlaying:
		return "▶ "
	case RowPaused:
		return "❚❚ "
	default:
		return ""
	}
}
