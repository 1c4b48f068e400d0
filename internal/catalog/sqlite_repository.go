package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

// SQLiteRepository serves the catalog from a sqlite database seeded by
// migrations. The colors, sizes and features sets are stored as JSON text.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const productColumns = `id, name, description, price, category, colors, sizes, rating, image_url, features`

func (r *SQLiteRepository) List(ctx context.Context, category Category) ([]Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY id`, productColumns)
	args := []any{}
	if category != "" && category != CategoryAll {
		query = fmt.Sprintf(`SELECT %s FROM products WHERE category = $1 ORDER BY id`, productColumns)
		args = append(args, string(category))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	defer rows.Close()

	var product *Product
	for rows.Next() {
		product, err = scanProduct(rows)
		if err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanProduct(rows *sql.Rows) (*Product, error) {
	p := &Product{}
	var colors, sizes, features sql.NullString

	err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&colors,
		&sizes,
		&p.Rating,
		&p.ImageURL,
		&features,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if err := unmarshalSet(colors, &p.Colors); err != nil {
		return nil, fmt.Errorf("failed to decode colors for product %d: %w", p.ID, err)
	}
	if err := unmarshalSet(sizes, &p.Sizes); err != nil {
		return nil, fmt.Errorf("failed to decode sizes for product %d: %w", p.ID, err)
	}
	if err := unmarshalSet(features, &p.Features); err != nil {
		return nil, fmt.Errorf("failed to decode features for product %d: %w", p.ID, err)
	}

	return p, nil
}

func unmarshalSet(col sql.NullString, dst *[]string) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}
