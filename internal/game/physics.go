package game

import "math"

// Simulate resolves a shot: it seeds the cue ball with a velocity derived
// from power and angle, then runs fixed-step integration until every ball is
// at rest or MaxSteps elapse. The input slice is never mutated; the returned
// slice is a fresh copy holding the settled layout.
//
// Simulate is pure and deterministic: identical inputs yield bit-identical
// output. It performs no input validation: callers must reject power outside
// [0,100] and non-finite angles before invoking it.
func Simulate(balls []Ball, power, angle float64) []Ball {
	updated := make([]Ball, len(balls))
	copy(updated, balls)

	for i := range updated {
		if updated[i].Type == TypeCue {
			velocity := (power / 100) * MaxVelocity
			updated[i].VX = math.Cos(angle) * velocity
			updated[i].VY = math.Sin(angle) * velocity
			break
		}
	}

	for step := 0; step < MaxSteps; step++ {
		moveBalls(updated)
		resolveCollisions(updated)
		capturePocketed(updated)

		if allStationary(updated) {
			break
		}
	}

	return updated
}

// moveBalls applies friction, the zero-snap cutoff, position integration and
// wall reflection to every live ball.
func moveBalls(balls []Ball) {
	for i := range balls {
		b := &balls[i]
		if b.Potted {
			continue
		}

		b.VX *= Friction
		b.VY *= Friction

		// Snap slow creep to zero so the loop terminates instead of
		// decaying asymptotically.
		if math.Abs(b.VX) < StopThreshold && math.Abs(b.VY) < StopThreshold {
			b.VX = 0
			b.VY = 0
		}

		if b.VX == 0 && b.VY == 0 {
			continue
		}

		b.X += b.VX
		b.Y += b.VY

		// Cushions are perfectly elastic and axis-aligned: invert the
		// offending component and clamp back inside the playable area.
		if b.X <= BallRadius || b.X >= TableWidth-BallRadius {
			b.VX = -b.VX
			b.X = math.Max(BallRadius, math.Min(TableWidth-BallRadius, b.X))
		}
		if b.Y <= BallRadius || b.Y >= TableHeight-BallRadius {
			b.VY = -b.VY
			b.Y = math.Max(BallRadius, math.Min(TableHeight-BallRadius, b.Y))
		}
	}
}

// resolveCollisions applies a soft penalty response to every overlapping
// pair: a positional correction along the line of centers, fed back into the
// velocities of both balls. Not an exact impulse model; the soft response
// trades physical exactness for stability at this step size.
func resolveCollisions(balls []Ball) {
	for i := 0; i < len(balls); i++ {
		for j := i + 1; j < len(balls); j++ {
			b1 := &balls[i]
			b2 := &balls[j]

			if b1.Potted || b2.Potted {
				continue
			}

			dx := b2.X - b1.X
			dy := b2.Y - b1.Y
			distance := math.Sqrt(dx*dx + dy*dy)

			if distance >= BallRadius*2 {
				continue
			}

			angle := math.Atan2(dy, dx)
			targetX := b1.X + math.Cos(angle)*(BallRadius*2)
			targetY := b1.Y + math.Sin(angle)*(BallRadius*2)

			ax := (targetX - b2.X) * 0.05
			ay := (targetY - b2.Y) * 0.05

			b1.VX -= ax
			b1.VY -= ay
			b2.VX += ax
			b2.VY += ay
		}
	}
}

// capturePocketed marks any live ball within the pocket radius of one of the
// six pockets as potted. Potted is terminal: the ball is hidden, stopped and
// never touched again by movement, collision or capture checks.
func capturePocketed(balls []Ball) {
	for i := range balls {
		b := &balls[i]
		if b.Potted {
			continue
		}

		for _, p := range pockets {
			dx := b.X - p.X
			dy := b.Y - p.Y
			if math.Sqrt(dx*dx+dy*dy) < PocketRadius {
				b.Potted = true
				b.Visible = false
				b.VX = 0
				b.VY = 0
				break
			}
		}
	}
}

func allStationary(balls []Ball) bool {
	for i := range balls {
		if balls[i].Potted {
			continue
		}
		if balls[i].VX != 0 || balls[i].VY != 0 {
			return false
		}
	}
	return true
}
