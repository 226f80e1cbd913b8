package game

import (
	"math"
	"testing"
)

func TestInitialLayoutIsDeterministic(t *testing.T) {
	a := InitialLayout()
	b := InitialLayout()

	if len(a) != NumBalls || len(b) != NumBalls {
		t.Fatalf("expected %d balls, got %d and %d", NumBalls, len(a), len(b))
	}

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("ball %d differs between calls: %+v vs %+v", a[i].ID, a[i], b[i])
		}
	}
}

func TestInitialLayoutComposition(t *testing.T) {
	balls := InitialLayout()

	counts := map[BallType]int{}
	seen := map[int]bool{}
	for _, b := range balls {
		counts[b.Type]++
		if seen[b.ID] {
			t.Errorf("duplicate ball id %d", b.ID)
		}
		seen[b.ID] = true
		if b.Potted || !b.Visible {
			t.Errorf("ball %d should start on the table", b.ID)
		}
	}

	if counts[TypeCue] != 1 || counts[TypeEight] != 1 || counts[TypeSolid] != 7 || counts[TypeStripe] != 7 {
		t.Errorf("unexpected composition: %v", counts)
	}

	cue := findBall(t, balls, 0)
	if cue.X != TableWidth*0.25 || cue.Y != TableHeight*0.5 {
		t.Errorf("cue ball at (%.1f, %.1f), want (%.1f, %.1f)", cue.X, cue.Y, TableWidth*0.25, TableHeight*0.5)
	}
	eight := findBall(t, balls, 8)
	if eight.X != TableWidth*0.75 || eight.Y != TableHeight*0.5 {
		t.Errorf("eight-ball at (%.1f, %.1f), want foot spot", eight.X, eight.Y)
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	run := func() []Ball {
		return Simulate(InitialLayout(), 80, 0.3)
	}

	r1 := run()
	r2 := run()

	for i := range r1 {
		if r1[i] != r2[i] {
			t.Errorf("non-deterministic result for ball %d: %+v vs %+v", r1[i].ID, r1[i], r2[i])
		}
	}
}

func TestSimulateDoesNotMutateInput(t *testing.T) {
	original := InitialLayout()
	snapshot := make([]Ball, len(original))
	copy(snapshot, original)

	Simulate(original, 100, math.Pi/4)

	for i := range original {
		if original[i] != snapshot[i] {
			t.Fatalf("input ball %d mutated: %+v vs %+v", original[i].ID, original[i], snapshot[i])
		}
	}
}

func TestSimulateKeepsBallsInBounds(t *testing.T) {
	result := Simulate(InitialLayout(), 50, 0)

	if len(result) != NumBalls {
		t.Fatalf("expected %d balls back, got %d", NumBalls, len(result))
	}
	for _, b := range result {
		if b.Potted {
			continue
		}
		if b.X < BallRadius || b.X > TableWidth-BallRadius || b.Y < BallRadius || b.Y > TableHeight-BallRadius {
			t.Errorf("ball %d out of bounds at (%.2f, %.2f)", b.ID, b.X, b.Y)
		}
	}
}

func TestSimulateStopsGentleShot(t *testing.T) {
	// At power 4 friction alone brings the ball under the stop threshold
	// well inside the step cap, so the snap-to-zero must have fired.
	balls := []Ball{{ID: 0, X: 400, Y: 200, Color: "#FFFFFF", Type: TypeCue, Visible: true}}

	result := Simulate(balls, 4, math.Pi/3)

	if result[0].VX != 0 || result[0].VY != 0 {
		t.Errorf("lone cue ball should stop: v=(%.4f, %.4f)", result[0].VX, result[0].VY)
	}
	if result[0].X == 400 && result[0].Y == 200 {
		t.Error("cue ball should have moved before stopping")
	}
}

func TestFrictionDecaysSpeed(t *testing.T) {
	balls := []Ball{{ID: 0, X: 400, Y: 200, Color: "#FFFFFF", Type: TypeCue, Visible: true}}

	result := Simulate(balls, 100, 0)

	speed := math.Hypot(result[0].VX, result[0].VY)
	if speed >= MaxVelocity {
		t.Errorf("speed did not decay: %.4f", speed)
	}
}

func TestPocketCapture(t *testing.T) {
	// A stationary cue ball sitting on the corner pocket is captured on the
	// first step and stays down.
	balls := []Ball{{ID: 0, X: 0, Y: 0, Color: "#FFFFFF", Type: TypeCue, Visible: true}}

	result := Simulate(balls, 0, 0)

	cue := result[0]
	if !cue.Potted {
		t.Fatal("cue ball on pocket coordinate should be potted")
	}
	if cue.Visible {
		t.Error("potted ball should not be visible")
	}
	if cue.VX != 0 || cue.VY != 0 {
		t.Error("potted ball should have zero velocity")
	}
}

func TestPottedBallIsExcludedFromMotion(t *testing.T) {
	balls := []Ball{
		{ID: 1, X: 5, Y: 5, Potted: true, Type: TypeSolid},
		{ID: 0, X: 400, Y: 200, Type: TypeCue, Visible: true},
	}

	result := Simulate(balls, 60, math.Pi)

	if result[0].X != 5 || result[0].Y != 5 {
		t.Errorf("potted ball moved to (%.2f, %.2f)", result[0].X, result[0].Y)
	}
	if !result[0].Potted {
		t.Error("potted flag must never flip back")
	}
}

func TestShotIntoRackScattersBalls(t *testing.T) {
	before := InitialLayout()
	after := Simulate(before, 100, 0)

	moved := 0
	for i := range after {
		if after[i].ID == 0 {
			continue
		}
		dx := after[i].X - before[i].X
		dy := after[i].Y - before[i].Y
		if math.Sqrt(dx*dx+dy*dy) > 1 {
			moved++
		}
	}
	if moved < 3 {
		t.Errorf("expected a full-power break to move at least 3 object balls, got %d", moved)
	}
}

func findBall(t *testing.T, balls []Ball, id int) Ball {
	t.Helper()
	for _, b := range balls {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("ball %d not found", id)
	return Ball{}
}
