package render

import "github.com/vedantwpatil/cursor-reveal/internal/shape"

// Mode is the compositor's drawing state.
type Mode uint8

const (
	ModeFullVideo Mode = iota
	ModeMaskedReveal
)

func (m Mode) String() string {
	if m == ModeFullVideo {
		return "full_video"
	}
	return "masked_reveal"
}

// Modes holds the user-selected shape and whether the mask is on. UI
// controls write it; the tracker and compositor read it every event/frame.
type Modes struct {
	shape       shape.Kind
	maskEnabled bool
}

func NewModes(kind shape.Kind, maskEnabled bool) *Modes {
	return &Modes{shape: kind, maskEnabled: maskEnabled}
}

func (m *Modes) Shape() shape.Kind { return m.shape }

func (m *Modes) SetShape(k shape.Kind) { m.shape = k }

func (m *Modes) MaskEnabled() bool { return m.maskEnabled }

func (m *Modes) SetMaskEnabled(on bool) { m.maskEnabled = on }

// ToggleMask flips the mask and returns the new setting.
func (m *Modes) ToggleMask() bool {
	m.maskEnabled = !m.maskEnabled
	return m.maskEnabled
}

// Mode maps the mask flag to a drawing state.
func (m *Modes) Mode() Mode {
	if m.maskEnabled {
		return ModeMaskedReveal
	}
	return ModeFullVideo
}
