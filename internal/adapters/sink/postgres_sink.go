package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/maorga/beacon/internal/domain"
	"github.com/maorga/beacon/internal/ports"
)

// PostgresSink delivers events to a self-hosted collector table instead of
// GA4. Params are stored as a JSON column so arbitrary scalar payloads
// survive without schema changes.
type PostgresSink struct {
	db        *sql.DB
	tableName string
	clientID  string
}

func NewPostgresSink(db *sql.DB, table, clientID string) *PostgresSink {
	return &PostgresSink{db: db, tableName: table, clientID: clientID}
}

func (p *PostgresSink) Name() string { return "postgres" }

func (p *PostgresSink) Deliver(ctx context.Context, e *domain.Event) error {
	params, err := json.Marshal(e.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (client_id, name, params, ts) VALUES ($1,$2,$3,$4)",
		p.tableName,
	)
	_, err = p.db.ExecContext(ctx, query, p.clientID, e.Name, params, e.Timestamp)
	return err
}

var _ ports.Sink = (*PostgresSink)(nil)
