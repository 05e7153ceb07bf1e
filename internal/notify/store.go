package notify

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"panel/internal/models"
)

// The store is the panel's local persistence for notifications: state
// survives restarts and is loaded before the first remote fetch
// completes, giving a stale-then-fresh read.

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	type TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'low',
	is_read INTEGER NOT NULL DEFAULT 0,
	timestamp TEXT NOT NULL,
	action_url TEXT,
	metadata TEXT,
	position INTEGER NOT NULL
);
`

// OpenStore opens (creating if needed) the local notification database.
func OpenStore(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	database.SetMaxOpenConns(1)
	database.SetConnMaxIdleTime(30 * time.Minute)

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	for _, pragma := range sqlitePragmas {
		if _, err := database.Exec(pragma); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := database.Exec(storeSchema); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return database, nil
}

// persistAll rewrites the stored list to match the in-memory one. The
// list is small (a panel's notification pane), so replacing it wholesale
// after each mutation keeps the two trivially consistent.
func persistAll(database *sql.DB, list []models.Notification) error {
	tx, err := database.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM notifications`); err != nil {
		return err
	}
	for i, n := range list {
		var metadata any
		if len(n.Metadata) > 0 {
			b, err := json.Marshal(n.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata: %w", err)
			}
			metadata = string(b)
		}
		var actionURL any
		if n.ActionURL != "" {
			actionURL = n.ActionURL
		}
		if _, err := tx.Exec(`
INSERT INTO notifications (id, title, message, type, category, priority, is_read, timestamp, action_url, metadata, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.Title, n.Message, string(n.Type), n.Category, string(n.Priority),
			boolToInt(n.IsRead), n.Timestamp, actionURL, metadata, i,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// loadAll reads the persisted list back in stored order.
func loadAll(database *sql.DB) ([]models.Notification, error) {
	rows, err := database.Query(`
SELECT id, title, message, type, category, priority, is_read, COALESCE(timestamp, ''), COALESCE(action_url, ''), COALESCE(metadata, '')
FROM notifications
ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Notification, 0)
	for rows.Next() {
		var (
			n        models.Notification
			ntype    string
			priority string
			readInt  int
			metadata string
		)
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Message, &ntype, &n.Category, &priority,
			&readInt, &n.Timestamp, &n.ActionURL, &metadata,
		); err != nil {
			return nil, err
		}
		n.Type = models.NotificationType(ntype)
		n.Priority = models.NotificationPriority(priority)
		n.IsRead = readInt == 1
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &n.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
