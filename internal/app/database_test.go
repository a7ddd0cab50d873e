package app

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewMySQLStore(db), mock
}

var itemColumnNames = []string{"id", "type", "slug", "title", "body", "status", "parent_id", "created_at", "updated_at"}

func TestMySQLStoreItem(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM items WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(itemColumnNames).
			AddRow(int64(7), "about", "team", "Team", "body", "published", int64(2), now, now))

	it, err := store.Item(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, ItemID(7), it.ID)
	assert.Equal(t, StatusPublished, it.Status)
	assert.Equal(t, Some(2), it.Parent)
	assert.Equal(t, now, it.UpdatedAt)
}

func TestMySQLStoreItemNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM items WHERE id = ?`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(itemColumnNames))

	_, err := store.Item(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMySQLStoreItemBySlugRootParent(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM items WHERE type = ? AND parent_id = ? AND slug = ?`)).
		WithArgs("about", int64(0), "team").
		WillReturnRows(sqlmock.NewRows(itemColumnNames).
			AddRow(int64(3), "about", "team", "Team", "", "draft", int64(0), now, now))

	it, err := store.ItemBySlug(context.Background(), "about", None(), "team")
	require.NoError(t, err)
	assert.False(t, it.Parent.IsSet())
	assert.Equal(t, StatusDraft, it.Status)
}

func TestMySQLStoreListItemsFiltersByStatus(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM items WHERE type = ? AND status = ? ORDER BY id`)).
		WithArgs("about", "published").
		WillReturnRows(sqlmock.NewRows(itemColumnNames).
			AddRow(int64(1), "about", "a", "A", "", "published", int64(0), now, now).
			AddRow(int64(2), "about", "b", "B", "", "published", int64(1), now, now))

	items, err := store.ListItems(context.Background(), "about", Published())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, Some(1), items[1].Parent)
}

func TestMySQLStoreCreateItem(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO items (type, slug, title, body, status, parent_id)`)).
		WithArgs("about", "team", "Team", "hi", "published", int64(4)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM items WHERE id = ?`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(itemColumnNames).
			AddRow(int64(5), "about", "team", "Team", "hi", "published", int64(4), now, now))

	it, err := store.CreateItem(context.Background(), Item{Type: "about", Slug: "team", Title: "Team", Body: "hi", Status: StatusPublished, Parent: Some(4)})
	require.NoError(t, err)
	assert.Equal(t, ItemID(5), it.ID)
}

func TestMySQLStoreCreateItemDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO items`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := store.CreateItem(context.Background(), Item{Type: "about", Slug: "team", Status: StatusDraft})
	assert.ErrorIs(t, err, ErrDuplicateSlug)
}

func TestMySQLStoreUpdateMissingItem(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE items SET`)).
		WithArgs("team", "Team", "", "draft", int64(0), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM items WHERE id = ?`)).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(itemColumnNames))

	err := store.UpdateItem(context.Background(), Item{ID: 8, Slug: "team", Title: "Team", Status: StatusDraft})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMySQLStoreDeleteItem(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM items WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM items WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DeleteItem(context.Background(), 3))
	assert.ErrorIs(t, store.DeleteItem(context.Background(), 3), ErrNotFound)
}

func TestMySQLStoreOptions(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM options WHERE name = ?`)).
		WithArgs("about_homepage").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO options (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE`)).
		WithArgs("about_homepage", "12").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM options WHERE name = ?`)).
		WithArgs("about_homepage").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("12"))

	_, ok, err := store.Option(ctx, "about_homepage")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetOption(ctx, "about_homepage", "12"))

	value, ok, err := store.Option(ctx, "about_homepage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "12", value)
}

func TestMySQLStoreMigrate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS items`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS options`)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
}
