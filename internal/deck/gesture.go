// Package deck implements the swipe-deck discovery engine: the ordered
// card stack, the gesture interpreter, and the state machine that turns
// pointer movement into irreversible save/pass decisions.
package deck

// Gesture interpretation constants. Displacement interpolation ranges are
// expressed as fractions of the viewport width.
const (
	// DefaultVelocityThreshold is the horizontal release velocity (px/s)
	// beyond which a gesture commits regardless of displacement.
	DefaultVelocityThreshold = 800.0

	// maxRotationDeg is the card rotation at half-viewport displacement.
	maxRotationDeg = 15.0

	// minOpacity is the card opacity at half-viewport displacement.
	minOpacity = 0.7

	// minScale is the card scale at half-viewport displacement.
	minScale = 0.95

	// verticalDrag damps vertical displacement while dragging.
	verticalDrag = 0.1

	// EdgeZoneFraction is the width fraction of each edge tap zone used
	// for image cycling.
	EdgeZoneFraction = 0.10

	// ExpandScrollThreshold is the downward scroll offset past which the
	// card expands into its detail sub-state.
	ExpandScrollThreshold = 50.0
)

// Decision is the outcome of evaluating a gesture release.
type Decision int

// Release outcomes. DecisionNone means the card animates back to neutral.
const (
	DecisionNone Decision = iota
	DecisionPass
	DecisionSave
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionPass:
		return "pass"
	case DecisionSave:
		return "save"
	default:
		return "none"
	}
}

// GestureState holds the transient per-frame presentation values for the
// top card. It exists only while a pointer is active and is reset to
// Neutral whenever the card is not being dragged.
type GestureState struct {
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	Rotation   float64 `json:"rotation"`
	Opacity    float64 `json:"opacity"`
	Scale      float64 `json:"scale"`
}

// NeutralGesture is the at-rest gesture state.
func NeutralGesture() GestureState {
	return GestureState{Opacity: 1, Scale: 1}
}

// Interpreter turns displacement/velocity samples into presentation values
// and commit decisions. It is pure: no state, no clock, no I/O, so the
// deck's commit behavior is testable without any rendering system.
type Interpreter struct {
	// ViewportWidth is the width of the gesture surface in px.
	ViewportWidth float64

	// VelocityThreshold is the commit speed in px/s.
	VelocityThreshold float64
}

// NewInterpreter creates an Interpreter for the given viewport width with
// the default velocity threshold.
func NewInterpreter(viewportWidth float64) Interpreter {
	return Interpreter{
		ViewportWidth:     viewportWidth,
		VelocityThreshold: DefaultVelocityThreshold,
	}
}

// Track maps an in-progress drag displacement to presentation values:
// rotation interpolates linearly to ±15° at ±half the viewport width,
// opacity falls toward 0.7 and scale toward 0.95 as absolute displacement
// grows, all clamped beyond the half-viewport range.
func (in Interpreter) Track(dx, dy float64) GestureState {
	half := in.ViewportWidth / 2

	return GestureState{
		TranslateX: dx,
		TranslateY: dy * verticalDrag,
		Rotation:   lerpClamped(dx, -half, half, -maxRotationDeg, maxRotationDeg),
		Opacity:    lerpClamped(abs(dx), 0, half, 1, minOpacity),
		Scale:      lerpClamped(abs(dx), 0, half, 1, minScale),
	}
}

// Evaluate decides the outcome of a gesture release. The gesture commits
// when horizontal displacement exceeds a quarter of the viewport width or
// horizontal velocity exceeds the speed threshold; leftward crossings pass,
// rightward crossings save. Evaluation happens only at release, never
// mid-drag.
func (in Interpreter) Evaluate(dx, vx float64) Decision {
	threshold := in.ViewportWidth / 4

	switch {
	case dx < -threshold || vx < -in.VelocityThreshold:
		return DecisionPass
	case dx > threshold || vx > in.VelocityThreshold:
		return DecisionSave
	default:
		return DecisionNone
	}
}

// lerpClamped linearly interpolates v from [inLow, inHigh] to
// [outLow, outHigh], clamping outside the input range.
func lerpClamped(v, inLow, inHigh, outLow, outHigh float64) float64 {
	if inHigh == inLow {
		return outLow
	}
	t := (v - inLow) / (inHigh - inLow)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return outLow + t*(outHigh-outLow)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
