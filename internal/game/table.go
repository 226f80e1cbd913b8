package game

import "math"

// Table geometry and physics constants for 8-ball pool.
// These MUST match the canvas constants on the frontend exactly, or the
// client-side replay will drift from the authoritative server result.
const (
	TableWidth   = 800.0
	TableHeight  = 400.0
	BallRadius   = 12.0
	PocketRadius = 20.0

	Friction      = 0.98
	MaxVelocity   = 15.0 // table units per step at power 100
	StopThreshold = 0.1
	MaxSteps      = 100

	NumBalls = 16 // 0=cue, 1-7=solids, 8=eight, 9-15=stripes

	rackRadius = 30.0
)

// BallType classifies a ball by its role in the game.
type BallType string

const (
	TypeCue    BallType = "cue"
	TypeEight  BallType = "8ball"
	TypeSolid  BallType = "solid"
	TypeStripe BallType = "stripe"
)

// Ball is the physics and display state of a single ball.
type Ball struct {
	ID      int      `json:"id"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	VX      float64  `json:"vx"`
	VY      float64  `json:"vy"`
	Color   string   `json:"color"`
	Type    BallType `json:"type"`
	Potted  bool     `json:"potted"`
	Visible bool     `json:"visible"`
}

// pockets are the six capture points: four corners plus the two side midpoints.
var pockets = [6]struct{ X, Y float64 }{
	{0, 0},
	{TableWidth / 2, 0},
	{TableWidth, 0},
	{0, TableHeight},
	{TableWidth / 2, TableHeight},
	{TableWidth, TableHeight},
}

// ballColors is the shared palette for solids (1-7) and stripes (9-15).
var ballColors = [7]string{"#FFD700", "#0066CC", "#FF0000", "#800080", "#FF8C00", "#006400", "#800000"}

// InitialLayout builds the fixed starting rack of all 16 balls: cue ball on
// the left quarter line, eight-ball at the foot spot, and the two groups on
// interleaved circles around it. No randomness; repeated calls produce
// identical layouts, which keeps online replays deterministic.
func InitialLayout() []Ball {
	balls := make([]Ball, 0, NumBalls)

	balls = append(balls, Ball{
		ID:      0,
		X:       TableWidth * 0.25,
		Y:       TableHeight * 0.5,
		Color:   "#FFFFFF",
		Type:    TypeCue,
		Visible: true,
	})

	footX := TableWidth * 0.75
	footY := TableHeight * 0.5

	balls = append(balls, Ball{
		ID:      8,
		X:       footX,
		Y:       footY,
		Color:   "#000000",
		Type:    TypeEight,
		Visible: true,
	})

	for i := 1; i <= 7; i++ {
		angle := float64(i-1) * (2 * math.Pi / 14)
		balls = append(balls, Ball{
			ID:      i,
			X:       footX + math.Cos(angle)*rackRadius,
			Y:       footY + math.Sin(angle)*rackRadius,
			Color:   ballColors[i-1],
			Type:    TypeSolid,
			Visible: true,
		})
	}

	for i := 9; i <= 15; i++ {
		angle := float64(i-9)*(2*math.Pi/14) + math.Pi/14
		balls = append(balls, Ball{
			ID:      i,
			X:       footX + math.Cos(angle)*rackRadius,
			Y:       footY + math.Sin(angle)*rackRadius,
			Color:   ballColors[i-9],
			Type:    TypeStripe,
			Visible: true,
		})
	}

	return balls
}
