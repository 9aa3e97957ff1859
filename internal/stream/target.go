package stream

import (
	"errors"
	"strings"
)

var ErrInvalidTarget = errors.New("invalid_target")

type TargetKind string

const (
	// KindUsername targets a streamer by unique handle.
	KindUsername TargetKind = "username"
	// KindRoomID targets a live room directly by numeric id.
	KindRoomID TargetKind = "room_id"
)

type Target struct {
	Kind  TargetKind
	Value string
}

// ParseTarget classifies a raw subscribe target. An all-digit value is
// a room id rather than a user handle.
func ParseTarget(raw string) (Target, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Target{}, ErrInvalidTarget
	}
	if isDigits(value) {
		return Target{Kind: KindRoomID, Value: value}, nil
	}
	return Target{Kind: KindUsername, Value: value}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Options is the configuration map a subscriber attaches to its
// subscribe request, passed through to the external connection
// capability verbatim.
type Options map[string]any

// extendedGiftInfoKey is recognized locally and must not reach the
// external capability.
const extendedGiftInfoKey = "enableExtendedGiftInfo"

func (o Options) sanitized() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for key, value := range o {
		if key == extendedGiftInfoKey {
			continue
		}
		out[key] = value
	}
	return out
}
