package repositories

import (
	"context"

	"roundup/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OperatingCostRepository interface {
	Create(ctx context.Context, c *models.OperatingCost, tx pgx.Tx) error
	List(ctx context.Context, limit, offset int) ([]models.OperatingCost, error)
	GetAll(ctx context.Context, tx pgx.Tx) ([]models.OperatingCost, error)
}

type operatingCostRepo struct {
	db *pgxpool.Pool
}

func NewOperatingCostRepository(db *pgxpool.Pool) OperatingCostRepository {
	return &operatingCostRepo{db: db}
}

const operatingCostColumns = `id, provider, description, amount, incurred_at, created_at`

func (r *operatingCostRepo) Create(ctx context.Context, c *models.OperatingCost, tx pgx.Tx) error {
	q := withTx(r.db, tx)
	return q.QueryRow(ctx,
		`INSERT INTO operating_costs (provider, description, amount, incurred_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		c.Provider, c.Description, c.Amount, c.IncurredAt,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *operatingCostRepo) List(ctx context.Context, limit, offset int) ([]models.OperatingCost, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+operatingCostColumns+` FROM operating_costs ORDER BY incurred_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOperatingCosts(rows)
}

func (r *operatingCostRepo) GetAll(ctx context.Context, tx pgx.Tx) ([]models.OperatingCost, error) {
	q := withTx(r.db, tx)
	rows, err := q.Query(ctx, `SELECT `+operatingCostColumns+` FROM operating_costs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOperatingCosts(rows)
}

func collectOperatingCosts(rows pgx.Rows) ([]models.OperatingCost, error) {
	var costs []models.OperatingCost
	for rows.Next() {
		var c models.OperatingCost
		if err := rows.Scan(&c.ID, &c.Provider, &c.Description, &c.Amount, &c.IncurredAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}
