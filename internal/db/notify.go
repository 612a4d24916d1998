package db

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
)

// Notifier publishes session events on a PostgreSQL NOTIFY channel so other
// processes can react to finished intakes.
type Notifier struct {
	DB      *sql.DB
	Channel string
}

// NewNotifier constructs a new Notifier.  The channel should match the
// POSTGRES_NOTIFY_CHANNEL environment variable.
func NewNotifier(db *sql.DB, channel string) *Notifier {
	return &Notifier{DB: db, Channel: channel}
}

// Notify sends the session id as the payload on the channel.  pg_notify is
// used because NOTIFY itself does not take bind parameters.
func (n *Notifier) Notify(ctx context.Context, sessionID string) error {
	if _, err := n.DB.ExecContext(ctx, `SELECT pg_notify($1, $2)`, n.Channel, sessionID); err != nil {
		return eris.Wrapf(err, "notify %s", n.Channel)
	}
	return nil
}
