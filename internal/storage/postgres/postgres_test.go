package postgres

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/schemagraph/internal/config"
)

func TestDSN(t *testing.T) {
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("PGUSER", "")
	t.Setenv("PGPASSWORD", "hunter2")
	t.Setenv("PGPASSWORD_FILE", "")

	dsn, err := DSN()
	require.NoError(t, err)
	assert.Equal(t, "host=db.internal port=5432 user=schemagraph password=hunter2 dbname=schemagraph sslmode=disable", dsn)
}

func TestDSNPasswordFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgpass")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0600))
	t.Setenv("PGPASSWORD", "from-env")
	t.Setenv("PGPASSWORD_FILE", path)

	dsn, err := DSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "password=from-file ")
}

func TestDSNWithoutPassword(t *testing.T) {
	t.Setenv("PGPASSWORD", "")
	t.Setenv("PGPASSWORD_FILE", "")

	dsn, err := DSN()
	require.NoError(t, err)
	assert.NotContains(t, dsn, "password=")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 200, clampLimit(0))
	assert.Equal(t, 50, clampLimit(50))
	assert.Equal(t, 10000, clampLimit(1e6))
}

func row(key, value string) SettingRow {
	return SettingRow{Key: key, Value: json.RawMessage(value)}
}

func TestSettingsFromRows(t *testing.T) {
	s, err := settingsFromRows([]SettingRow{
		row("schema.type", `"person"`),
		row("schema.publishing_person", `1`),
		row("schema.enable_header", `true`),
		row("schema.excluded_taxonomies", `["post_tag"]`),
		row("social.twitter", `"https://twitter.com/example"`),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, s.Version)
	assert.True(t, s.Schema.PublisherIsPerson())
	assert.Equal(t, 1, s.Schema.PublishingPersonID)
	assert.True(t, s.Schema.EnableHeader)
	assert.False(t, s.Schema.TaxonomyArchiveEnabled("post_tag"))
	assert.Equal(t, []string{"https://twitter.com/example"}, s.Social.Profiles())
}

func TestSettingsFromRowsEmpty(t *testing.T) {
	s, err := settingsFromRows(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Settings{Version: 1}, *s)
}

func TestSettingsFromRowsErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []SettingRow
	}{
		{"bad json", []SettingRow{row("schema.type", `{`)}},
		{"wrong type", []SettingRow{row("schema.enable_header", `"yes"`)}},
		{"unsupported version", []SettingRow{row("version", `3`)}},
		{"fails validation", []SettingRow{row("schema.type", `"robot"`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := settingsFromRows(tt.rows)
			assert.Error(t, err)
		})
	}

	_, err := settingsFromRows([]SettingRow{row("version", `2`)})
	assert.ErrorIs(t, err, config.ErrUnsupportedVersion)
}

func TestDecodeCustomTypes(t *testing.T) {
	defs, err := decodeCustomTypes([][]byte{
		[]byte(`{"id":"faq","type":"FAQPage","active":true,
			"conditions":[[{"lhs":"post_type","operator":"=","rhs":"post"}]],
			"properties":{"name":{"source":"post_title"}}}`),
	})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "FAQPage", defs[0].Type)
	assert.Equal(t, 1, defs[0].Properties.Len())

	_, err = decodeCustomTypes([][]byte{[]byte(`{"id":"missing-type"}`)})
	assert.Error(t, err)
}
