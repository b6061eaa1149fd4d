package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/votelane/reco-service/internal/domain"
)

type VoteRepo struct {
	db *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo { return &VoteRepo{db: db} }

// CountByUser is the orchestrator's personalization signal: how many times
// has this user voted.
func (r *VoteRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func (r *VoteRepo) ListForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.Vote, error) {
	query := `
SELECT id, user_id, election_id, option_id, created_at
FROM votes
`
	args := []any{}
	if since != nil {
		query += ` WHERE created_at >= $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`
		args = append(args, *since, limit, offset)
	} else {
		query += ` ORDER BY created_at, id LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Vote
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(&v.ID, &v.UserID, &v.ElectionID, &v.OptionID, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VoteRepo) GetForSync(ctx context.Context, id string) (*domain.Vote, error) {
	var v domain.Vote
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, election_id, option_id, created_at
FROM votes WHERE id = $1
`, id).Scan(&v.ID, &v.UserID, &v.ElectionID, &v.OptionID, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("vote not found")
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VoteRepo) ListAnonymousForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.AnonymousVote, error) {
	query := `
SELECT id, election_id, session_id, token, created_at
FROM anonymous_votes
`
	args := []any{}
	if since != nil {
		query += ` WHERE created_at >= $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`
		args = append(args, *since, limit, offset)
	} else {
		query += ` ORDER BY created_at, id LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AnonymousVote
	for rows.Next() {
		var v domain.AnonymousVote
		if err := rows.Scan(&v.ID, &v.ElectionID, &v.SessionID, &v.Token, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VoteRepo) ListParticipationForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.Participation, error) {
	query := `
SELECT user_id, election_id, voted_at
FROM participation
`
	args := []any{}
	if since != nil {
		query += ` WHERE voted_at >= $1 ORDER BY voted_at, user_id LIMIT $2 OFFSET $3`
		args = append(args, *since, limit, offset)
	} else {
		query += ` ORDER BY voted_at, user_id LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Participation
	for rows.Next() {
		var p domain.Participation
		if err := rows.Scan(&p.UserID, &p.ElectionID, &p.VotedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListAudience returns co-category voters for an election: users who have
// voted in other elections of the same category. Pure relational join, no
// external dependency.
func (r *VoteRepo) ListAudience(ctx context.Context, electionID string, limit int) ([]domain.AudienceMember, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.id, u.username, COUNT(v.id) AS vote_count
FROM users u
JOIN votes v ON v.user_id = u.id
JOIN elections e ON e.id = v.election_id
WHERE e.category = (SELECT category FROM elections WHERE id = $1)
  AND v.election_id != $1
GROUP BY u.id, u.username
ORDER BY vote_count DESC
LIMIT $2
`, electionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AudienceMember
	for rows.Next() {
		var m domain.AudienceMember
		if err := rows.Scan(&m.UserID, &m.Username, &m.VoteCount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
