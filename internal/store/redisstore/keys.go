package redisstore

import "fmt"

// Key prefix for all pool data.
const keyPrefix = "pool"

func userKey(id string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey is the username -> user id index.
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

func roomKey(id string) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// openRoomsKey is the SET of rooms still joinable or in play.
func openRoomsKey() string {
	return fmt.Sprintf("%s:idx:open_rooms", keyPrefix)
}

func playerKey(id string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// roomPlayersKey is the SET of player ids seated in a room.
func roomPlayersKey(roomID string) string {
	return fmt.Sprintf("%s:idx:room_players:%s", keyPrefix, roomID)
}

func stateKey(roomID string) string {
	return fmt.Sprintf("%s:state:%s", keyPrefix, roomID)
}
