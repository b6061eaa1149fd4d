package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/votelane/reco-service/internal/domain"
)

// Nullable columns are defaulted here so the transform never sees NULL in a
// non-pointer field.
const selectElection = `
SELECT id, title, COALESCE(description, ''), COALESCE(category, ''),
       COALESCE(country_code, ''), status,
       COALESCE(lottery_enabled, FALSE), COALESCE(prize_amount, 0),
       COALESCE(view_count, 0), COALESCE(vote_count, 0), conversion_rate,
       start_date, end_date, created_at, updated_at
FROM elections
`

type ElectionRepo struct {
	db *sql.DB
}

func NewElectionRepo(db *sql.DB) *ElectionRepo { return &ElectionRepo{db: db} }

// ListForSync returns one sync page, ordered by id. since and status are
// optional lower-bound / filter predicates.
func (r *ElectionRepo) ListForSync(ctx context.Context, since *time.Time, status string, limit, offset int) ([]domain.Election, error) {
	query := selectElection + ` WHERE 1=1`
	args := []any{}
	argNum := 1

	if since != nil {
		query += fmt.Sprintf(" AND updated_at >= $%d", argNum)
		args = append(args, *since)
		argNum++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, limit, offset)

	return r.queryElections(ctx, query, args...)
}

func (r *ElectionRepo) GetForSync(ctx context.Context, id string) (*domain.Election, error) {
	row := r.db.QueryRowContext(ctx, selectElection+` WHERE id = $1`, id)

	e, err := scanElection(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("election not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListActive is the relational fallback for recommendation reads:
// published/active, not yet ended, newest first.
func (r *ElectionRepo) ListActive(ctx context.Context, limit, offset int) ([]domain.Election, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM elections
WHERE status IN ('published', 'active') AND (end_date IS NULL OR end_date > NOW())
`).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	out, err := r.queryElections(ctx, selectElection+`
WHERE status IN ('published', 'active') AND (end_date IS NULL OR end_date > NOW())
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ElectionRepo) ListActiveByCategory(ctx context.Context, category string, limit, offset int) ([]domain.Election, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM elections
WHERE category = $1 AND status IN ('published', 'active') AND (end_date IS NULL OR end_date > NOW())
`, category).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	out, err := r.queryElections(ctx, selectElection+`
WHERE category = $1 AND status IN ('published', 'active') AND (end_date IS NULL OR end_date > NOW())
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, category, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListSimilar is the fallback for similar-items: co-category, excluding the
// election itself.
func (r *ElectionRepo) ListSimilar(ctx context.Context, electionID string, limit int) ([]domain.Election, error) {
	return r.queryElections(ctx, selectElection+`
WHERE id != $1
  AND category = (SELECT category FROM elections WHERE id = $1)
  AND status IN ('published', 'active') AND (end_date IS NULL OR end_date > NOW())
ORDER BY vote_count DESC, created_at DESC
LIMIT $2
`, electionID, limit)
}

// ListLottery returns lottery-enabled elections above a prize floor, prize
// descending.
func (r *ElectionRepo) ListLottery(ctx context.Context, minPrize float64, limit int) ([]domain.Election, error) {
	return r.queryElections(ctx, selectElection+`
WHERE lottery_enabled = TRUE AND prize_amount >= $1
  AND status IN ('published', 'active') AND (end_date IS NULL OR end_date > NOW())
ORDER BY prize_amount DESC
LIMIT $2
`, minPrize, limit)
}

func (r *ElectionRepo) queryElections(ctx context.Context, query string, args ...any) ([]domain.Election, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Election
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanElection(row rowScanner) (domain.Election, error) {
	var e domain.Election
	var status string
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Category, &e.CountryCode, &status,
		&e.LotteryEnabled, &e.PrizeAmount, &e.ViewCount, &e.VoteCount, &e.ConversionRate,
		&e.StartDate, &e.EndDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return e, err
	}
	e.Status = domain.ElectionStatus(status)
	return e, nil
}
