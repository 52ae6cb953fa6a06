package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbediako/rentpadi/internal/domain/model"
)

type PropertyRepo struct {
	pool *pgxpool.Pool
}

func NewPropertyRepo(pool *pgxpool.Pool) *PropertyRepo {
	return &PropertyRepo{pool: pool}
}

func (r *PropertyRepo) GetProperty(ctx context.Context, propertyID int64) (model.Property, bool, error) {
	if propertyID <= 0 {
		return model.Property{}, false, fmt.Errorf("invalid property id")
	}
	if r.pool == nil {
		return model.Property{}, false, fmt.Errorf("postgres pool is nil")
	}

	var property model.Property
	err := r.pool.QueryRow(ctx, `
SELECT
	p.id,
	p.owner_id,
	u.full_name,
	u.phone,
	p.title,
	p.city,
	p.monthly_rent_cedis,
	p.available,
	p.created_at
FROM properties p
JOIN users u ON u.id = p.owner_id
WHERE p.id = $1
LIMIT 1
`, propertyID).Scan(
		&property.ID,
		&property.OwnerID,
		&property.OwnerFullName,
		&property.OwnerPhone,
		&property.Title,
		&property.City,
		&property.MonthlyRentCedis,
		&property.Available,
		&property.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Property{}, false, nil
		}
		return model.Property{}, false, fmt.Errorf("get property: %w", err)
	}

	return property, true, nil
}
