package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"restoledger/internal/domain/restaurant"
)

type RestaurantRepo struct {
	db dbtx
}

const restaurantCols = `id, name, is_active, created_at, updated_at, metadata`

// GetOrCreate inserts the restaurant with name=id when absent. ON CONFLICT
// DO NOTHING keeps a lost creation race from aborting the enclosing
// transaction; the follow-up read then returns the winner's row.
func (r *RestaurantRepo) GetOrCreate(ctx context.Context, id string) (*restaurant.Restaurant, bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO restaurants (id, name)
		VALUES ($1, $1)
		ON CONFLICT (id) DO NOTHING`, id)
	if err != nil {
		return nil, false, fmt.Errorf("insert restaurant %s: %w", id, err)
	}
	created := tag.RowsAffected() > 0
	if created {
		log.Info().Str("restaurant_id", id).Msg("created new restaurant")
	}

	res, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return res, created, nil
}

func (r *RestaurantRepo) GetByID(ctx context.Context, id string) (*restaurant.Restaurant, error) {
	row := r.db.QueryRow(ctx, `SELECT `+restaurantCols+` FROM restaurants WHERE id = $1`, id)

	var res restaurant.Restaurant
	err := row.Scan(&res.ID, &res.Name, &res.IsActive, &res.CreatedAt, &res.UpdatedAt, &res.Metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", id, err)
	}
	return &res, nil
}

func (r *RestaurantRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM restaurants WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active restaurants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
