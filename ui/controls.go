package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Toggle is a boolean control bound to viewer state.
type Toggle struct {
	Name     string
	KeyLabel string
	Get      func() bool
	Set      func(bool)
}

// Label returns the button text for the toggle's current state.
func (t Toggle) Label() string {
	state := "off"
	if t.Get() {
		state = "on"
	}
	if t.KeyLabel == "" {
		return fmt.Sprintf("%s: %s", t.Name, state)
	}
	return fmt.Sprintf("%s: %s [%s]", t.Name, state, t.KeyLabel)
}

// Slider is a numeric control bound to viewer state.
type Slider struct {
	Name     string
	Min, Max float32
	Format   string
	Get      func() float32
	Set      func(float32)
}

// Action is a one-shot button.
type Action struct {
	Name string
	Do   func()
}

const (
	buttonHeight = 24
	sliderHeight = 18
	rowGap       = 6
)

// ControlsPanel renders the clickable control panel.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	Toggles []Toggle
	Sliders []Slider
	Actions []Action
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x, c.y = x, y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Height returns the panel height for its current content.
func (c *ControlsPanel) Height() int32 {
	t := c.renderer.Theme
	h := t.Padding*2 + t.LineHeight + 4
	h += int32(len(c.Toggles)+len(c.Actions)) * (buttonHeight + rowGap)
	h += int32(len(c.Sliders)) * (t.LineHeight + sliderHeight + rowGap)
	return h
}

// Draw renders the controls panel and applies any clicks. It returns the Y
// below the panel.
func (c *ControlsPanel) Draw() int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	height := c.Height()
	r.DrawPanel(c.x, c.y, c.width, height)

	x := float32(c.x + padding)
	w := float32(c.width - padding*2)
	y := c.y + padding

	rl.DrawText("Controls", c.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, t := range c.Toggles {
		if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: buttonHeight}, t.Label()) {
			t.Set(!t.Get())
		}
		y += buttonHeight + rowGap
	}

	for _, s := range c.Sliders {
		value := s.Get()
		rl.DrawText(fmt.Sprintf("%s: "+s.Format, s.Name, value), c.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
		next := gui.SliderBar(
			rl.Rectangle{X: x + 30, Y: float32(y), Width: w - 60, Height: sliderHeight},
			fmt.Sprintf(s.Format, s.Min), fmt.Sprintf(s.Format, s.Max),
			value, s.Min, s.Max,
		)
		if next != value {
			s.Set(next)
		}
		y += sliderHeight + rowGap
	}

	for _, a := range c.Actions {
		if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: buttonHeight}, a.Name) {
			a.Do()
		}
		y += buttonHeight + rowGap
	}

	return c.y + height
}
