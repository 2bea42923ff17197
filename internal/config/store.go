package config

import "context"

// Store yields settings snapshots. Each call returns a fresh snapshot that
// the caller owns.
type Store interface {
	Load(ctx context.Context) (*Settings, error)
}

// FileStore loads settings from a YAML file on every call, so edits are
// picked up by the next build.
type FileStore struct {
	Path string
}

func (s FileStore) Load(ctx context.Context) (*Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadSettings(s.Path)
}

// StaticStore always returns a copy of the same settings.
type StaticStore struct {
	Settings Settings
}

func (s StaticStore) Load(context.Context) (*Settings, error) {
	cp := s.Settings
	return &cp, nil
}
