// Package widgets provides custom Fyne widgets for the xamp player surfaces.
package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// TappableStack is a container that wraps content and responds to primary
// and secondary (right-click) taps. The floating shortcut uses it so that
// tapping anywhere on it reopens the player.
type TappableStack struct {
	widget.BaseWidget

	content        fyne.CanvasObject
	onTap          func(*fyne.PointEvent)
	onSecondaryTap func(*fyne.PointEvent)
}

// NewTappableStack creates a new tappable stack with the given content.
func NewTappableStack(content fyne.CanvasObject, onTap, onSecondaryTap func(*fyne.PointEvent)) *TappableStack {
	t := &TappableStack{
		content:        content,
		onTap:          onTap,
		onSecondaryTap: onSecondaryTap,
	}
	t.ExtendBaseWidget(t)
	return t
}

// CreateRenderer implements fyne.Widget.
func (t *TappableStack) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

// SetOnTapped replaces the primary tap callback.
func (t *TappableStack) SetOnTapped(f func(*fyne.PointEvent)) {
	t.onTap = f
}

// SetOnSecondaryTapped replaces the secondary tap callback.
func (t *TappableStack) SetOnSecondaryTapped(f func(*fyne.PointEvent)) {
	t.onSecondaryTap = f
}

// Tapped implements fyne.Tappable (primary tap - left click).
func (t *TappableStack) Tapped(pe *fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap(pe)
	}
}

// TappedSecondary implements fyne.SecondaryTappable (right-click).
func (t *TappableStack) TappedSecondary(pe *fyne.PointEvent) {
	if t.onSecondaryTap != nil {
		t.onSecondaryTap(pe)
	}
}

// MouseIn implements desktop.Hoverable.
func (t *TappableStack) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (t *TappableStack) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (t *TappableStack) MouseOut() {}

// SetContent updates the content of the stack.
func (t *TappableStack) SetContent(content fyne.CanvasObject) {
	t.content = content
	t.Refresh()
}

// Ensure TappableStack implements the required interfaces
var _ fyne.Tappable = (*TappableStack)(nil)
var _ fyne.SecondaryTappable = (*TappableStack)(nil)
var _ desktop.Hoverable = (*TappableStack)(nil)
