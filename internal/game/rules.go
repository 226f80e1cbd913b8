package game

// ShotResult is the rules outcome derived from comparing the layouts before
// and after a shot.
type ShotResult struct {
	PottedBalls  []Ball `json:"pottedBalls"`
	Foul         bool   `json:"foul"`
	ContinueTurn bool   `json:"continueTurn"`
}

// Evaluate derives foul and turn-continuation outcomes from the layouts
// before and after a shot. A ball counts as potted when its flag flipped
// false to true between the two layouts; balls are matched by id, not by
// slice position. Neither input is mutated.
//
// A foul is a scratch (cue ball potted) or the eight-ball going down
// together with any other ball in the same shot. The shooter keeps the turn
// iff at least one non-cue ball was potted and no foul occurred.
func Evaluate(before, after []Ball) ShotResult {
	prev := make(map[int]bool, len(before))
	for _, b := range before {
		prev[b.ID] = b.Potted
	}

	var potted []Ball
	cuePotted := false
	eightPotted := false
	for _, b := range after {
		if b.Potted && !prev[b.ID] {
			potted = append(potted, b)
			switch b.Type {
			case TypeCue:
				cuePotted = true
			case TypeEight:
				eightPotted = true
			}
		}
	}

	foul := cuePotted || (eightPotted && len(potted) > 1)
	continueTurn := len(potted) > 0 && !foul && !cuePotted

	return ShotResult{
		PottedBalls:  potted,
		Foul:         foul,
		ContinueTurn: continueTurn,
	}
}

// EightBallVisible reports whether the eight-ball is still on the table.
// Once it goes down the match is over.
func EightBallVisible(balls []Ball) bool {
	for _, b := range balls {
		if b.Type == TypeEight {
			return b.Visible
		}
	}
	return false
}

// RemainingOfType counts the balls of a group still on the table.
func RemainingOfType(balls []Ball, t BallType) int {
	n := 0
	for _, b := range balls {
		if b.Type == t && b.Visible {
			n++
		}
	}
	return n
}
