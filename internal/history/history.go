// Package history persists scan snapshots in SQLite. Snapshots are
// written once and never updated; comparisons always read two persisted
// rows.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gadsdencode/roboscan/internal/domainutil"
	"github.com/gadsdencode/roboscan/internal/logging"
	"github.com/gadsdencode/roboscan/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned when no scan with the requested ID exists.
var ErrNotFound = errors.New("history: scan not found")

// Store is the SQLite-backed scan history.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (or creates) the history database at path, applies pragmas
// and the schema, and returns a ready Store. Use ":memory:" in tests.
func Open(path string, logger logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Store{db: db, logger: logger.With(logging.Field{Key: "component", Value: "history"})}, nil
}

// Save persists scan, assigning ID and CreatedAt when unset, and returns
// the stored snapshot.
func (s *Store) Save(ctx context.Context, scan *model.Scan) (*model.Scan, error) {
	if scan.ID == "" {
		scan.ID = uuid.New().String()
	}
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = time.Now().UTC()
	}

	domain, err := domainutil.Normalize(scan.URL)
	if err != nil {
		// Persist under the raw URL when normalization fails; the row is
		// still retrievable by ID and URL.
		domain = scan.URL
	}

	permsJSON, err := json.Marshal(scan.BotPermissions)
	if err != nil {
		permsJSON = []byte("{}")
	}
	errorsJSON, err := json.Marshal(scan.Errors)
	if err != nil {
		errorsJSON = []byte("[]")
	}
	warningsJSON, err := json.Marshal(scan.Warnings)
	if err != nil {
		warningsJSON = []byte("[]")
	}

	args := []any{scan.ID, scan.URL, domain}
	for _, f := range model.TechFiles {
		found, content := scan.File(f)
		args = append(args, boolToInt(found), nullable(content))
	}
	args = append(args, string(permsJSON), string(errorsJSON), string(warningsJSON), scan.Score, scan.CreatedAt.Unix())

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO scans
		  (id, url, domain,
		   robots_txt_found, robots_txt_content,
		   llms_txt_found, llms_txt_content,
		   sitemap_xml_found, sitemap_xml_content,
		   security_txt_found, security_txt_content,
		   manifest_json_found, manifest_json_content,
		   ads_txt_found, ads_txt_content,
		   humans_txt_found, humans_txt_content,
		   ai_txt_found, ai_txt_content,
		   bot_permissions, errors, warnings, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...); err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}

	s.logger.Debug("saved scan",
		logging.Field{Key: "id", Value: scan.ID},
		logging.Field{Key: "domain", Value: domain})

	return scan, nil
}

const scanColumns = `
	id, url,
	robots_txt_found, robots_txt_content,
	llms_txt_found, llms_txt_content,
	sitemap_xml_found, sitemap_xml_content,
	security_txt_found, security_txt_content,
	manifest_json_found, manifest_json_content,
	ads_txt_found, ads_txt_content,
	humans_txt_found, humans_txt_content,
	ai_txt_found, ai_txt_content,
	bot_permissions, errors, warnings, score, created_at`

// Get returns the scan with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*model.Scan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+scanColumns+` FROM scans WHERE id = ?`, id)
	scan, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return scan, err
}

// ListByDomain returns the newest scans whose URL normalizes to the same
// registrable domain as rawURL, newest first.
func (s *Store) ListByDomain(ctx context.Context, rawURL string, limit int) ([]*model.Scan, error) {
	domain, err := domainutil.Normalize(rawURL)
	if err != nil {
		domain = rawURL
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT`+scanColumns+` FROM scans
		WHERE domain = ?
		ORDER BY created_at DESC
		LIMIT ?`, domain, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []*model.Scan
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*model.Scan, error) {
	var (
		scan         model.Scan
		founds       [8]int
		contents     [8]sql.NullString
		permsJSON    string
		errorsJSON   string
		warningsJSON string
		createdAt    int64
	)

	dest := []any{&scan.ID, &scan.URL}
	for i := range founds {
		dest = append(dest, &founds[i], &contents[i])
	}
	dest = append(dest, &permsJSON, &errorsJSON, &warningsJSON, &scan.Score, &createdAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	for i, f := range model.TechFiles {
		var content *string
		if contents[i].Valid {
			v := contents[i].String
			content = &v
		}
		scan.SetFile(f, founds[i] == 1, content)
	}

	if err := json.Unmarshal([]byte(permsJSON), &scan.BotPermissions); err != nil {
		scan.BotPermissions = map[string]string{}
	}
	if err := json.Unmarshal([]byte(errorsJSON), &scan.Errors); err != nil {
		scan.Errors = []string{}
	}
	if err := json.Unmarshal([]byte(warningsJSON), &scan.Warnings); err != nil {
		scan.Warnings = []string{}
	}
	scan.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &scan, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
