package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/votelane/reco-service/internal/domain"
)

const selectUserForSync = `
SELECT u.id, u.username,
       d.gender_text, d.gender_code, d.age, d.birth_date, d.country,
       COALESCE(v.cnt, 0) AS vote_count,
       COALESCE(e.cnt, 0) AS election_count,
       u.created_at
FROM users u
LEFT JOIN user_details d ON d.user_id = u.id
LEFT JOIN (SELECT user_id, COUNT(*) AS cnt FROM votes GROUP BY user_id) v ON v.user_id = u.id
LEFT JOIN (SELECT owner_id, COUNT(*) AS cnt FROM elections GROUP BY owner_id) e ON e.owner_id = u.id
`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// ListForSync returns one page of users joined with their detail row and
// derived counters, ordered by id so pagination is stable.
func (r *UserRepo) ListForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.User, error) {
	query := selectUserForSync
	args := []any{}
	if since != nil {
		query += ` WHERE u.updated_at >= $1 ORDER BY u.id LIMIT $2 OFFSET $3`
		args = append(args, *since, limit, offset)
	} else {
		query += ` ORDER BY u.id LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetForSync loads one user for the single-entity sync path.
func (r *UserRepo) GetForSync(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUserForSync+` WHERE u.id = $1`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username,
		&u.GenderText, &u.GenderCode, &u.Age, &u.BirthDate, &u.Country,
		&u.VoteCount, &u.ElectionCount,
		&u.CreatedAt,
	)
	return u, err
}
