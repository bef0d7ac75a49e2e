package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dastanaron/bookmarks/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db         *sql.DB
	tx         *sql.Tx
	bookmarks  *bookmarkRepo
	categories *categoryRepo
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return newRepo(db, nil, db), nil
}

func newRepo(db *sql.DB, tx *sql.Tx, q querier) *SQLiteRepository {
	return &SQLiteRepository{
		db:         db,
		tx:         tx,
		bookmarks:  &bookmarkRepo{q: q},
		categories: &categoryRepo{q: q},
	}
}

func initSchema(db *sql.DB) error {
	createTables := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		visibility TEXT NOT NULL DEFAULT 'public'
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT,
		icon_url TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		FOREIGN KEY(category_id) REFERENCES categories(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_bookmarks_category ON bookmarks(category_id, sort_order);
	CREATE INDEX IF NOT EXISTS idx_categories_order ON categories(sort_order);
	`
	if _, err := db.Exec(createTables); err != nil {
		return err
	}

	// Migration: databases created before private bookmarks existed lack is_private.
	// SQLite doesn't support IF NOT EXISTS for ALTER TABLE ADD COLUMN.
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('bookmarks') WHERE name = 'is_private'
	`).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		_, err = db.Exec(`ALTER TABLE bookmarks ADD COLUMN is_private INTEGER NOT NULL DEFAULT 0`)
		if err != nil {
			return err
		}
	}

	return nil
}

// Bookmarks returns the bookmark repository
func (r *SQLiteRepository) Bookmarks() BookmarkRepository {
	return r.bookmarks
}

// Categories returns the category repository
func (r *SQLiteRepository) Categories() CategoryRepository {
	return r.categories
}

// WithTx runs fn in a transaction. Called on a repository already bound to a
// transaction it reuses that transaction.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(newRepo(r.db, tx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// categoryRepo implements CategoryRepository
type categoryRepo struct {
	q querier
}

const categoryColumns = `id, name, sort_order, visibility`

func scanCategory(row interface{ Scan(...any) error }) (models.Category, error) {
	var c models.Category
	var visibility string
	err := row.Scan(&c.ID, &c.Name, &c.Order, &visibility)
	c.Visibility = models.Visibility(visibility)
	if c.Visibility == models.VisibilityPublic {
		c.Visibility = ""
	}
	return c, err
}

func storedVisibility(v models.Visibility) string {
	if v == "" {
		return string(models.VisibilityPublic)
	}
	return string(v)
}

func (r *categoryRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	c, err := scanCategory(r.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	c, err := scanCategory(r.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ? ORDER BY sort_order LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO categories(id, name, sort_order, visibility) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Order, storedVisibility(c.Visibility),
	)
	return err
}

func (r *categoryRepo) Update(ctx context.Context, c *models.Category) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE categories SET name = ?, sort_order = ?, visibility = ? WHERE id = ?`,
		c.Name, c.Order, storedVisibility(c.Visibility), c.ID,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *categoryRepo) SetOrder(ctx context.Context, id string, order int) error {
	res, err := r.q.ExecContext(ctx, `UPDATE categories SET sort_order = ? WHERE id = ?`, order, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

// bookmarkRepo implements BookmarkRepository
type bookmarkRepo struct {
	q querier
}

const bookmarkColumns = `id, category_id, title, url, COALESCE(description, ''), COALESCE(icon_url, ''),
	is_private, sort_order, created_at, updated_at`

func scanBookmark(row interface{ Scan(...any) error }) (models.Bookmark, error) {
	var b models.Bookmark
	err := row.Scan(&b.ID, &b.CategoryID, &b.Title, &b.URL, &b.Description, &b.IconURL,
		&b.IsPrivate, &b.Order, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *bookmarkRepo) list(ctx context.Context, query string, args ...any) ([]models.Bookmark, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := []models.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

func (r *bookmarkRepo) List(ctx context.Context) ([]models.Bookmark, error) {
	return r.list(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks ORDER BY category_id, sort_order, rowid`)
}

func (r *bookmarkRepo) ListByCategory(ctx context.Context, categoryID string) ([]models.Bookmark, error) {
	return r.list(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE category_id = ? ORDER BY sort_order, rowid`, categoryID)
}

func (r *bookmarkRepo) GetByID(ctx context.Context, id string) (*models.Bookmark, error) {
	b, err := scanBookmark(r.q.QueryRowContext(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookmarkRepo) Create(ctx context.Context, b *models.Bookmark) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO bookmarks(id, category_id, title, url, description, icon_url, is_private, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.CategoryID, b.Title, b.URL, b.Description, b.IconURL, b.IsPrivate, b.Order, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (r *bookmarkRepo) Update(ctx context.Context, b *models.Bookmark) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE bookmarks SET category_id = ?, title = ?, url = ?, description = ?, icon_url = ?,
		is_private = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		b.CategoryID, b.Title, b.URL, b.Description, b.IconURL, b.IsPrivate, b.Order, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *bookmarkRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *bookmarkRepo) DeleteByCategory(ctx context.Context, categoryID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM bookmarks WHERE category_id = ?`, categoryID)
	return err
}

func (r *bookmarkRepo) SetPosition(ctx context.Context, id, categoryID string, order int, updatedAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE bookmarks SET category_id = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		categoryID, order, updatedAt, id,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *bookmarkRepo) CountInCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks WHERE category_id = ?`, categoryID).Scan(&n)
	return n, err
}
