package searchrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
)

// PostgresSource loads the searchable catalogue from Postgres.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource constructs the source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// LoadItems reads every row of search_items in id order.
func (s *PostgresSource) LoadItems(ctx context.Context) ([]search.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name,
		       COALESCE(address, ''), COALESCE(remark, ''), COALESCE(aliases, ''),
		       category, COALESCE(ref_table, ''), ref_id
		FROM search_items
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanItem)
}

func scanItem(row pgx.CollectableRow) (search.Item, error) {
	var (
		item     search.Item
		category string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Address, &item.Remark, &item.Aliases, &category, &item.RefTable, &item.RefID); err != nil {
		return search.Item{}, err
	}
	item.Category = search.Category(category)
	return item, nil
}

var _ search.ItemSource = (*PostgresSource)(nil)
