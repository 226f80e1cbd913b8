package models

import (
	"time"

	"github.com/breakshot/backend/internal/game"
)

// EventType tags the envelope of a push-channel event.
type EventType string

const (
	EventGameUpdate  EventType = "gameUpdate"
	EventPlayerJoin  EventType = "playerJoin"
	EventPlayerLeave EventType = "playerLeave"
	EventTurnChange  EventType = "turnChange"
	EventGameEnd     EventType = "gameEnd"
	EventVoiceUpdate EventType = "voiceUpdate"
)

// Event is the wire envelope delivered to every subscriber of a room.
// Payload is always one of the *Payload structs below, matched to Type, so
// every publisher and subscriber knows the exact shape it is dealing with.
type Event struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp int64     `json:"timestamp"` // epoch millis
}

// GameUpdatePayload carries state mutations. After a shot it holds the full
// settled state plus the rules outcome; for aim/power previews only the
// transient field that changed is set.
type GameUpdatePayload struct {
	GameState   *GameState       `json:"gameState,omitempty"`
	ShotResult  *game.ShotResult `json:"shotResult,omitempty"`
	CuePosition *CuePosition     `json:"cuePosition,omitempty"`
	ShotPower   *int             `json:"shotPower,omitempty"`
}

type PlayerJoinPayload struct {
	Player Player `json:"player"`
}

type PlayerLeavePayload struct {
	PlayerID string `json:"playerId"`
}

type TurnChangePayload struct {
	CurrentPlayerID string `json:"currentPlayerId"`
	TimeLeft        int    `json:"timeLeft"`
}

type GameEndPayload struct {
	RoomID   string `json:"roomId"`
	WinnerID string `json:"winnerId,omitempty"`
	Reason   string `json:"reason"` // eightBall, forfeit
}

type VoiceUpdatePayload struct {
	PlayerID string `json:"playerId"`
	Muted    bool   `json:"muted"`
}

func newEvent(t EventType, payload any) Event {
	return Event{Type: t, Payload: payload, Timestamp: time.Now().UnixMilli()}
}

func NewGameUpdate(p GameUpdatePayload) Event   { return newEvent(EventGameUpdate, p) }
func NewPlayerJoin(p PlayerJoinPayload) Event   { return newEvent(EventPlayerJoin, p) }
func NewPlayerLeave(p PlayerLeavePayload) Event { return newEvent(EventPlayerLeave, p) }
func NewTurnChange(p TurnChangePayload) Event   { return newEvent(EventTurnChange, p) }
func NewGameEnd(p GameEndPayload) Event         { return newEvent(EventGameEnd, p) }
func NewVoiceUpdate(p VoiceUpdatePayload) Event { return newEvent(EventVoiceUpdate, p) }
