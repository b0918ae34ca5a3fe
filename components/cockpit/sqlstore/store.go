// Package sqlstore persists cockpit preferences and card settings in SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-cockpit/components/cockpit"
)

const schema = `
CREATE TABLE IF NOT EXISTS cockpit_preferences (
	practice_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	document TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (practice_id, user_id)
);
CREATE TABLE IF NOT EXISTS cockpit_card_settings (
	practice_id TEXT NOT NULL,
	widget_id TEXT NOT NULL,
	column_span INTEGER NOT NULL DEFAULT 0,
	row_span INTEGER NOT NULL DEFAULT 0,
	min_height TEXT NOT NULL DEFAULT '',
	card_style TEXT,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (practice_id, widget_id)
);
`

// Store implements cockpit.PreferenceStore and cockpit.CardSettingsStore on a
// database/sql handle opened with the "sqlite" driver.
type Store struct {
	db *sql.DB
}

var (
	_ cockpit.PreferenceStore   = (*Store)(nil)
	_ cockpit.CardSettingsStore = (*Store)(nil)
)

// Open opens the database at dsn and creates the cockpit tables. Use
// ":memory:" for an ephemeral store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open database: %w", err)
	}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		// every pooled connection would see its own empty database
		db.SetMaxOpenConns(1)
	}
	store := New(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing handle. Call Migrate before first use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func preferenceKey(viewer cockpit.ViewerContext) (string, string, error) {
	user := strings.TrimSpace(viewer.UserID)
	if user == "" {
		return "", "", cockpit.ErrViewerRequired
	}
	practice := cockpit.SanitizePracticeID(viewer.PracticeID)
	if practice == "" {
		return "", "", cockpit.ErrPracticeRequired
	}
	return practice, user, nil
}

// DashboardConfig returns the stored document or nil when absent.
func (s *Store) DashboardConfig(ctx context.Context, viewer cockpit.ViewerContext) (json.RawMessage, error) {
	practice, user, err := preferenceKey(viewer)
	if err != nil {
		return nil, err
	}
	var doc string
	err = s.db.QueryRowContext(ctx,
		`SELECT document FROM cockpit_preferences WHERE practice_id = ? AND user_id = ?`,
		practice, user,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: load preferences: %w", err)
	}
	return json.RawMessage(doc), nil
}

// SaveDashboardConfig upserts the viewer's document.
func (s *Store) SaveDashboardConfig(ctx context.Context, viewer cockpit.ViewerContext, doc json.RawMessage) error {
	practice, user, err := preferenceKey(viewer)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cockpit_preferences (practice_id, user_id, document, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(practice_id, user_id) DO UPDATE SET
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP`,
		practice, user, string(doc),
	)
	if err != nil {
		return fmt.Errorf("sqlstore: save preferences: %w", err)
	}
	return nil
}

// DeleteDashboardConfig removes the viewer's document.
func (s *Store) DeleteDashboardConfig(ctx context.Context, viewer cockpit.ViewerContext) error {
	practice, user, err := preferenceKey(viewer)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cockpit_preferences WHERE practice_id = ? AND user_id = ?`,
		practice, user,
	); err != nil {
		return fmt.Errorf("sqlstore: delete preferences: %w", err)
	}
	return nil
}

// CardSettings lists a practice's settings ordered by widget id.
func (s *Store) CardSettings(ctx context.Context, practiceID string) (cockpit.CardSettings, error) {
	practiceID = cockpit.SanitizePracticeID(practiceID)
	if practiceID == "" {
		return nil, cockpit.ErrPracticeRequired
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT widget_id, column_span, row_span, min_height, card_style
		FROM cockpit_card_settings
		WHERE practice_id = ?
		ORDER BY widget_id`, practiceID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list card settings: %w", err)
	}
	defer rows.Close()

	out := cockpit.CardSettings{}
	for rows.Next() {
		var (
			setting cockpit.CockpitCardSetting
			style   sql.NullString
		)
		if err := rows.Scan(&setting.WidgetID, &setting.ColumnSpan, &setting.RowSpan, &setting.MinHeight, &style); err != nil {
			return nil, fmt.Errorf("sqlstore: scan card setting: %w", err)
		}
		if style.Valid && style.String != "" {
			var decoded cockpit.CardStyle
			if err := json.Unmarshal([]byte(style.String), &decoded); err != nil {
				return nil, fmt.Errorf("sqlstore: decode card style for %s: %w", setting.WidgetID, err)
			}
			setting.CardStyle = &decoded
		}
		out = append(out, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: list card settings: %w", err)
	}
	return out, nil
}

// SaveCardSetting upserts a widget's setting.
func (s *Store) SaveCardSetting(ctx context.Context, practiceID string, setting cockpit.CockpitCardSetting) error {
	practiceID = cockpit.SanitizePracticeID(practiceID)
	if practiceID == "" {
		return cockpit.ErrPracticeRequired
	}
	if setting.WidgetID == "" {
		return cockpit.ErrWidgetIDRequired
	}
	var style sql.NullString
	if setting.CardStyle != nil {
		raw, err := json.Marshal(setting.CardStyle)
		if err != nil {
			return fmt.Errorf("sqlstore: encode card style: %w", err)
		}
		style = sql.NullString{String: string(raw), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cockpit_card_settings (practice_id, widget_id, column_span, row_span, min_height, card_style, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(practice_id, widget_id) DO UPDATE SET
			column_span = excluded.column_span,
			row_span = excluded.row_span,
			min_height = excluded.min_height,
			card_style = excluded.card_style,
			updated_at = CURRENT_TIMESTAMP`,
		practiceID, setting.WidgetID, setting.ColumnSpan, setting.RowSpan, setting.MinHeight, style,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: save card setting: %w", err)
	}
	return nil
}

// DeleteCardSetting removes a widget's setting; missing rows are ignored.
func (s *Store) DeleteCardSetting(ctx context.Context, practiceID, widgetID string) error {
	practiceID = cockpit.SanitizePracticeID(practiceID)
	if practiceID == "" {
		return cockpit.ErrPracticeRequired
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cockpit_card_settings WHERE practice_id = ? AND widget_id = ?`,
		practiceID, widgetID,
	); err != nil {
		return fmt.Errorf("sqlstore: delete card setting: %w", err)
	}
	return nil
}
