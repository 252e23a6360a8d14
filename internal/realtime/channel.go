package realtime

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelID names a broadcast scope.
type ChannelID string

const (
	personalPrefix = "user:"
	roomPrefix     = "room:"
)

func PersonalChannel(userID int64) ChannelID {
	return ChannelID(personalPrefix + strconv.FormatInt(userID, 10))
}

func RoomChannel(roomID int64) ChannelID {
	return ChannelID(roomPrefix + strconv.FormatInt(roomID, 10))
}

func (c ChannelID) IsPersonal() bool {
	return strings.HasPrefix(string(c), personalPrefix)
}

// RoomID returns the room id of a room channel.
func (c ChannelID) RoomID() (int64, bool) {
	rest, ok := strings.CutPrefix(string(c), roomPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseChannel validates a channel id received from outside the process.
func ParseChannel(s string) (ChannelID, error) {
	for _, prefix := range []string{personalPrefix, roomPrefix} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			if id, err := strconv.ParseInt(rest, 10, 64); err == nil && id > 0 {
				return ChannelID(s), nil
			}
		}
	}
	return "", fmt.Errorf("invalid channel id %q", s)
}
