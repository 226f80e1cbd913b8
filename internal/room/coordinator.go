package room

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/breakshot/backend/internal/game"
	"github.com/breakshot/backend/internal/metrics"
	"github.com/breakshot/backend/internal/models"
	"github.com/breakshot/backend/internal/store"
)

var (
	ErrInvalidShot   = errors.New("shot power must be in [0,100] and angle finite")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrShotInFlight  = errors.New("a shot is already being resolved for this room")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomNotActive = errors.New("room is not active")
)

// Publisher delivers an event to every subscriber of a room.
type Publisher interface {
	Publish(roomID string, event models.Event)
}

// Archiver persists finished shots and matches for later review.
type Archiver interface {
	RecordShot(ctx context.Context, rec ShotRecord) error
	RecordMatch(ctx context.Context, rec MatchRecord) error
}

// ShotRecord is one resolved shot.
type ShotRecord struct {
	RoomID   string
	PlayerID string
	Power    float64
	Angle    float64
	Outcome  string // pot, miss, foul
	Potted   int
}

// MatchRecord is one finished match.
type MatchRecord struct {
	RoomID   string
	WinnerID string
	Reason   string // eightBall, forfeit
}

// Coordinator owns every room-state mutation. All writes for a room happen
// under that room's lock, and events are published while the lock is held,
// so subscribers observe mutations in the order they were applied.
type Coordinator struct {
	store    store.Store
	pub      Publisher
	archive  Archiver // nil disables archiving
	turnTime int      // seconds

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(st store.Store, pub Publisher, archive Archiver, turnTimeSeconds int) *Coordinator {
	if turnTimeSeconds <= 0 {
		turnTimeSeconds = store.InitialTurnTime
	}
	return &Coordinator{
		store:    st,
		pub:      pub,
		archive:  archive,
		turnTime: turnTimeSeconds,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) roomLock(roomID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[roomID] = l
	}
	return l
}

// CreateRoom creates a waiting two-player room with a racked table.
func (c *Coordinator) CreateRoom(ctx context.Context, name string) (*models.GameRoom, error) {
	room := &models.GameRoom{
		ID:         uuid.NewString(),
		Name:       name,
		Status:     models.RoomWaiting,
		MaxPlayers: 2,
	}
	if err := c.store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	if _, err := c.store.CreateGameState(ctx, room.ID, game.InitialLayout()); err != nil {
		return nil, err
	}
	return room, nil
}

// Join seats a user in a room. The first player to join gets the opening
// turn; the second join activates the room. Joining a room the user is
// already seated in returns the existing seat.
func (c *Coordinator) Join(ctx context.Context, roomID, userID string) (*models.Player, error) {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == models.RoomFinished {
		return nil, ErrRoomNotActive
	}

	players, err := c.store.GetPlayersByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	for i := range players {
		if players[i].UserID == userID {
			return &players[i], nil
		}
	}
	if len(players) >= room.MaxPlayers {
		return nil, ErrRoomFull
	}

	player := &models.Player{
		ID:        uuid.NewString(),
		UserID:    userID,
		RoomID:    roomID,
		BallsLeft: 7,
	}
	if err := c.store.AddPlayer(ctx, player); err != nil {
		return nil, err
	}
	if len(players) == 0 {
		if err := c.store.SetCurrentPlayer(ctx, roomID, player.ID); err != nil {
			return nil, err
		}
		player.IsCurrentPlayer = true
	}

	c.pub.Publish(roomID, models.NewPlayerJoin(models.PlayerJoinPayload{Player: *player}))

	if len(players)+1 == room.MaxPlayers {
		if err := c.store.UpdateRoomStatus(ctx, roomID, models.RoomActive); err != nil {
			return nil, err
		}
		c.pub.Publish(roomID, models.NewTurnChange(models.TurnChangePayload{
			CurrentPlayerID: currentPlayerID(append(players, *player)),
			TimeLeft:        c.turnTime,
		}))
	}
	return player, nil
}

// Leave removes a player's seat. Leaving an active match forfeits it to the
// remaining player.
func (c *Coordinator) Leave(ctx context.Context, roomID, playerID string) error {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	player, err := c.store.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	if player.RoomID != roomID {
		return store.ErrPlayerNotFound
	}

	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	if err := c.store.RemovePlayer(ctx, playerID); err != nil {
		return err
	}
	c.pub.Publish(roomID, models.NewPlayerLeave(models.PlayerLeavePayload{PlayerID: playerID}))

	if room.Status != models.RoomActive {
		return nil
	}

	if err := c.store.UpdateRoomStatus(ctx, roomID, models.RoomFinished); err != nil {
		return err
	}
	remaining, err := c.store.GetPlayersByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	winnerID := ""
	if len(remaining) > 0 {
		winnerID = remaining[0].ID
	}
	c.pub.Publish(roomID, models.NewGameEnd(models.GameEndPayload{
		RoomID:   roomID,
		WinnerID: winnerID,
		Reason:   "forfeit",
	}))
	c.recordMatch(ctx, MatchRecord{RoomID: roomID, WinnerID: winnerID, Reason: "forfeit"})
	return nil
}

// Shoot resolves one shot: validate, simulate, evaluate, persist, then
// broadcast. A second shot arriving while one is resolving is rejected, not
// queued.
func (c *Coordinator) Shoot(ctx context.Context, roomID, playerID string, power, angle float64) (*game.ShotResult, error) {
	if power < 0 || power > 100 || !isFinite(power) || !isFinite(angle) {
		return nil, ErrInvalidShot
	}

	lock := c.roomLock(roomID)
	if !lock.TryLock() {
		return nil, ErrShotInFlight
	}
	defer lock.Unlock()

	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomActive {
		return nil, ErrRoomNotActive
	}

	player, err := c.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.RoomID != roomID {
		return nil, store.ErrPlayerNotFound
	}
	if !player.IsCurrentPlayer {
		return nil, ErrNotYourTurn
	}

	state, err := c.store.GetGameState(ctx, roomID)
	if err != nil {
		return nil, err
	}

	after := game.Simulate(state.Balls, power, angle)
	result := game.Evaluate(state.Balls, after)
	metrics.ShotsSimulated.Inc()

	outcome := "miss"
	switch {
	case result.Foul:
		outcome = "foul"
	case len(result.PottedBalls) > 0:
		outcome = "pot"
	}

	shotPower := 0
	timeLeft := c.turnTime
	phase := models.PhaseWaiting
	if err := c.store.UpdateGameState(ctx, roomID, store.GameStateUpdate{
		Balls:          after,
		ClearCue:       true,
		ShotPower:      &shotPower,
		TimeLeft:       &timeLeft,
		GamePhase:      &phase,
		LastShotResult: &outcome,
	}); err != nil {
		return nil, err
	}

	players, err := c.store.GetPlayersByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	players, err = c.assignGroups(ctx, players, playerID, &result)
	if err != nil {
		return nil, err
	}
	if err := c.recountBalls(ctx, players, after); err != nil {
		return nil, err
	}

	ended := !game.EightBallVisible(after)

	nextPlayerID := ""
	if !result.ContinueTurn && !ended {
		if nextPlayerID = opponentOf(players, playerID); nextPlayerID != "" {
			if err := c.store.SetCurrentPlayer(ctx, roomID, nextPlayerID); err != nil {
				return nil, err
			}
		}
	}

	updated, err := c.store.GetGameState(ctx, roomID)
	if err != nil {
		return nil, err
	}
	c.pub.Publish(roomID, models.NewGameUpdate(models.GameUpdatePayload{
		GameState:  updated,
		ShotResult: &result,
	}))
	if nextPlayerID != "" {
		c.pub.Publish(roomID, models.NewTurnChange(models.TurnChangePayload{
			CurrentPlayerID: nextPlayerID,
			TimeLeft:        c.turnTime,
		}))
	}

	if ended {
		if err := c.store.UpdateRoomStatus(ctx, roomID, models.RoomFinished); err != nil {
			return nil, err
		}
		winnerID := decideWinner(playerID, opponentOf(players, playerID), &result)
		c.pub.Publish(roomID, models.NewGameEnd(models.GameEndPayload{
			RoomID:   roomID,
			WinnerID: winnerID,
			Reason:   "eightBall",
		}))
		c.recordMatch(ctx, MatchRecord{RoomID: roomID, WinnerID: winnerID, Reason: "eightBall"})
	}

	c.recordShot(ctx, ShotRecord{
		RoomID:   roomID,
		PlayerID: playerID,
		Power:    power,
		Angle:    angle,
		Outcome:  outcome,
		Potted:   len(result.PottedBalls),
	})
	return &result, nil
}

// Aim stores and rebroadcasts a cue preview. Last write wins; taking the
// room lock keeps previews from racing an in-flight shot's state write.
func (c *Coordinator) Aim(ctx context.Context, roomID string, cue models.CuePosition) error {
	if !isFinite(cue.X) || !isFinite(cue.Y) || !isFinite(cue.Angle) {
		return ErrInvalidShot
	}

	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	pos := cue
	phase := models.PhaseAiming
	if err := c.store.UpdateGameState(ctx, roomID, store.GameStateUpdate{
		CuePosition: &pos,
		GamePhase:   &phase,
	}); err != nil {
		return err
	}
	c.pub.Publish(roomID, models.NewGameUpdate(models.GameUpdatePayload{CuePosition: &pos}))
	return nil
}

// PowerPreview stores and rebroadcasts a shot power preview.
func (c *Coordinator) PowerPreview(ctx context.Context, roomID string, power int) error {
	if power < 0 || power > 100 {
		return ErrInvalidShot
	}

	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	p := power
	if err := c.store.UpdateGameState(ctx, roomID, store.GameStateUpdate{ShotPower: &p}); err != nil {
		return err
	}
	c.pub.Publish(roomID, models.NewGameUpdate(models.GameUpdatePayload{ShotPower: &p}))
	return nil
}

// SetMuted flips a player's voice-mute flag and notifies the room.
func (c *Coordinator) SetMuted(ctx context.Context, roomID, playerID string, muted bool) error {
	if err := c.store.SetPlayerMuted(ctx, playerID, muted); err != nil {
		return err
	}
	c.pub.Publish(roomID, models.NewVoiceUpdate(models.VoiceUpdatePayload{
		PlayerID: playerID,
		Muted:    muted,
	}))
	return nil
}

// assignGroups gives the shooter the group of the first object ball potted
// on a clean shot, and the opponent the other group. Assignment happens at
// most once per match; fouls never assign.
func (c *Coordinator) assignGroups(ctx context.Context, players []models.Player, shooterID string, result *game.ShotResult) ([]models.Player, error) {
	if result.Foul {
		return players, nil
	}
	for i := range players {
		if players[i].BallGroup != models.GroupUnassigned {
			return players, nil
		}
	}

	shooterGroup := models.GroupUnassigned
	for _, b := range result.PottedBalls {
		switch b.Type {
		case game.TypeSolid:
			shooterGroup = models.GroupSolids
		case game.TypeStripe:
			shooterGroup = models.GroupStripes
		}
		if shooterGroup != models.GroupUnassigned {
			break
		}
	}
	if shooterGroup == models.GroupUnassigned {
		return players, nil
	}

	other := models.GroupSolids
	if shooterGroup == models.GroupSolids {
		other = models.GroupStripes
	}
	for i := range players {
		if players[i].ID == shooterID {
			players[i].BallGroup = shooterGroup
		} else {
			players[i].BallGroup = other
		}
		if err := c.store.UpdatePlayer(ctx, &players[i]); err != nil {
			return nil, err
		}
	}
	return players, nil
}

// recountBalls refreshes BallsLeft for every player with an assigned group.
func (c *Coordinator) recountBalls(ctx context.Context, players []models.Player, balls []game.Ball) error {
	for i := range players {
		var t game.BallType
		switch players[i].BallGroup {
		case models.GroupSolids:
			t = game.TypeSolid
		case models.GroupStripes:
			t = game.TypeStripe
		default:
			continue
		}
		left := game.RemainingOfType(balls, t)
		if left == players[i].BallsLeft {
			continue
		}
		players[i].BallsLeft = left
		if err := c.store.UpdatePlayer(ctx, &players[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) recordShot(ctx context.Context, rec ShotRecord) {
	if c.archive == nil {
		return
	}
	if err := c.archive.RecordShot(ctx, rec); err != nil {
		log.Printf("[POOL] Failed to archive shot for room %s: %v", rec.RoomID, err)
	}
}

func (c *Coordinator) recordMatch(ctx context.Context, rec MatchRecord) {
	if c.archive == nil {
		return
	}
	if err := c.archive.RecordMatch(ctx, rec); err != nil {
		log.Printf("[POOL] Failed to archive match for room %s: %v", rec.RoomID, err)
	}
}

// decideWinner attributes the match once the eight ball leaves the table:
// potting it on a foul loses, otherwise the shooter wins. Kept as a single
// seam so a fuller ruleset can replace it.
func decideWinner(shooterID, opponentID string, result *game.ShotResult) string {
	if result.Foul && opponentID != "" {
		return opponentID
	}
	return shooterID
}

func currentPlayerID(players []models.Player) string {
	for _, p := range players {
		if p.IsCurrentPlayer {
			return p.ID
		}
	}
	return ""
}

func opponentOf(players []models.Player, playerID string) string {
	for _, p := range players {
		if p.ID != playerID {
			return p.ID
		}
	}
	return ""
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
