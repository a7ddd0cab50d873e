package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

// NewDB opens a MySQL connection using sensible defaults.
func NewDB(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	type VARCHAR(64) NOT NULL,
	slug VARCHAR(200) NOT NULL,
	title VARCHAR(255) NOT NULL,
	body MEDIUMTEXT NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'draft',
	parent_id BIGINT NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY items_type_parent_slug (type, parent_id, slug),
	KEY items_type_status (type, status)
) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS options (
	name VARCHAR(191) NOT NULL PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) DEFAULT CHARSET=utf8mb4`,
}

const itemColumns = `id, type, slug, title, body, status, parent_id, created_at, updated_at`

// MySQLStore keeps items and options in MySQL.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore wraps an open database handle.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Migrate creates the tables when they are missing.
func (s *MySQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var (
		it     Item
		status string
		parent int64
	)
	if err := row.Scan(&it.ID, &it.Type, &it.Slug, &it.Title, &it.Body, &status, &parent, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return Item{}, err
	}
	it.Status = Status(status)
	it.Parent = Some(ItemID(parent))
	return it, nil
}

func (s *MySQLStore) queryItem(ctx context.Context, query string, args ...any) (Item, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

// Item looks up an item by ID.
func (s *MySQLStore) Item(ctx context.Context, id ItemID) (Item, error) {
	return s.queryItem(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, int64(id))
}

// ItemBySlug finds the child of parent with the given slug.
func (s *MySQLStore) ItemBySlug(ctx context.Context, typ string, parent Ref, slug string) (Item, error) {
	return s.queryItem(ctx,
		`SELECT `+itemColumns+` FROM items WHERE type = ? AND parent_id = ? AND slug = ?`,
		typ, parentColumn(parent), slug)
}

// ListItems returns the items of a type ordered by ID.
func (s *MySQLStore) ListItems(ctx context.Context, typ string, filter ListFilter) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE type = ?`
	args := []any{typ}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem inserts it and returns the stored copy.
func (s *MySQLStore) CreateItem(ctx context.Context, it Item) (Item, error) {
	const insert = `INSERT INTO items (type, slug, title, body, status, parent_id) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, insert, it.Type, it.Slug, it.Title, it.Body, string(it.Status), parentColumn(it.Parent))
	if err != nil {
		return Item{}, mapMySQLError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Item{}, err
	}
	return s.Item(ctx, ItemID(id))
}

// UpdateItem overwrites the editable fields of an existing item.
func (s *MySQLStore) UpdateItem(ctx context.Context, it Item) error {
	const update = `UPDATE items SET slug = ?, title = ?, body = ?, status = ?, parent_id = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, update, it.Slug, it.Title, it.Body, string(it.Status), parentColumn(it.Parent), int64(it.ID))
	if err != nil {
		return mapMySQLError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports zero affected rows for a no-op update, so confirm the row exists.
		if _, err := s.Item(ctx, it.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteItem removes an item. Children keep their dangling parent reference.
func (s *MySQLStore) DeleteItem(ctx context.Context, id ItemID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, int64(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Option reads a named setting.
func (s *MySQLStore) Option(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM options WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetOption creates or replaces a named setting.
func (s *MySQLStore) SetOption(ctx context.Context, name, value string) error {
	const upsert = `INSERT INTO options (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)`
	_, err := s.db.ExecContext(ctx, upsert, name, value)
	return err
}

func parentColumn(r Ref) int64 {
	id, _ := r.Get()
	return int64(id)
}

func mapMySQLError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrDuplicateSlug
	}
	return err
}
