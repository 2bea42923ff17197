package postgres

import (
	"context"
	"time"

	"github.com/AaronLay10/schemagraph/internal/printer"
)

// Publish stores an emitted graph document. It satisfies printer.Sink.
func (c *Client) Publish(ctx context.Context, kind printer.Kind, req printer.Request, doc []byte) error {
	var url *string
	if req.URL != "" {
		url = &req.URL
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO graphs (ts, site_id, kind, url, document)
		VALUES ($1, $2, $3, $4, $5)
	`, time.Now().UTC(), c.siteID, string(kind), url, doc)
	return err
}
