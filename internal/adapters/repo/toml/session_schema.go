package toml

import "fmt"

const currentSessionSchemaVersion = 1

type sessionFileSchema struct {
	Version int           `toml:"version"`
	Session sessionSchema `toml:"session"`
}

func (s *sessionFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSessionSchemaVersion
	}
}

func (s sessionFileSchema) validateVersion() error {
	if s.Version > currentSessionSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSessionSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	SelfID      string `toml:"self_id"`
	DisplayName string `toml:"display_name"`
	RoomID      string `toml:"room_id"`
	RoomName    string `toml:"room_name"`
}
