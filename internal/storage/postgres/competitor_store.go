package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shopsight/shopsight/internal/brand"
)

// ErrSelfCompetitor is returned when a brand is mapped as its own competitor.
var ErrSelfCompetitor = errors.New("brand cannot compete with itself")

// Competitors returns the fully hydrated profiles mapped as competitors of a
// brand, ordered by competitor id.
func (s *Store) Competitors(ctx context.Context, brandID int64) ([]brand.Profile, error) {
	if _, err := s.GetProfile(ctx, brandID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT competitor_brand_id FROM competitor_map WHERE brand_id = $1 ORDER BY competitor_brand_id`,
		brandID,
	)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan competitor id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate competitors: %w", err)
	}

	profiles := make([]brand.Profile, 0, len(ids))
	for _, id := range ids {
		profile, err := s.GetProfile(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// AddCompetitor maps one stored brand as a competitor of another. Mapping is
// idempotent; both brands must already exist.
func (s *Store) AddCompetitor(ctx context.Context, brandID, competitorID int64) error {
	if brandID == competitorID {
		return ErrSelfCompetitor
	}
	for _, id := range []int64{brandID, competitorID} {
		var found int64
		err := s.db.QueryRow(ctx, `SELECT id FROM brands WHERE id = $1`, id).Scan(&found)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check brand %d: %w", id, err)
		}
	}
	if _, err := s.db.Exec(ctx,
		`INSERT INTO competitor_map (brand_id, competitor_brand_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		brandID, competitorID,
	); err != nil {
		return fmt.Errorf("add competitor: %w", err)
	}
	return nil
}

// RemoveCompetitor unmaps a competitor. Removing a mapping that does not
// exist returns ErrNotFound.
func (s *Store) RemoveCompetitor(ctx context.Context, brandID, competitorID int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM competitor_map WHERE brand_id = $1 AND competitor_brand_id = $2`,
		brandID, competitorID,
	)
	if err != nil {
		return fmt.Errorf("remove competitor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
