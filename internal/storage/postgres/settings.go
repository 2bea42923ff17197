package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/customtype"
)

// SettingRow is one stored option. Key is dotted, "schema.enable_header"
// or "social.twitter"; Value is the option's JSON.
type SettingRow struct {
	Key   string
	Value json.RawMessage
}

// Load reads the site's settings rows into a validated snapshot. It
// satisfies config.Store.
func (c *Client) Load(ctx context.Context) (*config.Settings, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key, value FROM schema_settings WHERE site_id = $1 ORDER BY key`, c.siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var out []SettingRow
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out = append(out, SettingRow{Key: key, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settingsFromRows(out)
}

// SaveSetting upserts one option.
func (c *Client) SaveSetting(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %s: %w", key, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO schema_settings (site_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (site_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, c.siteID, key, b)
	return err
}

// settingsFromRows nests dotted keys into a settings document. Missing
// version defaults to 1.
func settingsFromRows(rows []SettingRow) (*config.Settings, error) {
	doc := map[string]interface{}{"version": 1}
	for _, r := range rows {
		var v interface{}
		if err := json.Unmarshal(r.Value, &v); err != nil {
			return nil, fmt.Errorf("setting %s: %w", r.Key, err)
		}

		section, name, nested := strings.Cut(r.Key, ".")
		if !nested {
			doc[section] = v
			continue
		}
		m, ok := doc[section].(map[string]interface{})
		if !ok {
			m = map[string]interface{}{}
			doc[section] = m
		}
		m[name] = v
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var s config.Settings
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.Version != 1 {
		return nil, fmt.Errorf("%w: %d", config.ErrUnsupportedVersion, s.Version)
	}
	if err := config.Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadCustomTypes returns the site's stored custom type definitions in
// position order.
func (c *Client) LoadCustomTypes(ctx context.Context) ([]customtype.Definition, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT definition FROM custom_types
		WHERE site_id = $1
		ORDER BY position, type_id
	`, c.siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom types: %w", err)
	}
	defer rows.Close()

	var raw [][]byte
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decodeCustomTypes(raw)
}

func decodeCustomTypes(raw [][]byte) ([]customtype.Definition, error) {
	out := make([]customtype.Definition, 0, len(raw))
	for _, b := range raw {
		def, err := customtype.ParseJSON(b)
		if err != nil {
			return nil, err
		}
		out = append(out, *def)
	}
	return out, nil
}
