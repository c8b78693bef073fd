package pg

import (
	"context"
	"encoding/json"
	"errors"

	"salon-client/internal/application"
	"salon-client/internal/domain"

	"github.com/jackc/pgx/v5"
)

// StateRepo stores favorites and sessions in Postgres.
type StateRepo struct {
	db  *DB
	uow application.UnitOfWork
}

var _ application.ClientState = (*StateRepo)(nil)

func NewStateRepo(db *DB) *StateRepo {
	return &StateRepo{db: db, uow: &UnitOfWork{Pool: db.Pool}}
}

func (r *StateRepo) LoadFavorites(ctx context.Context, owner string) ([]string, error) {
	rows, err := r.db.conn(ctx).Query(ctx,
		`SELECT salon_id FROM client_favorites WHERE owner=$1 ORDER BY position`, owner)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveFavorites replaces the owner's list in one transaction.
func (r *StateRepo) SaveFavorites(ctx context.Context, owner string, ids []string) error {
	return r.uow.Do(ctx, func(ctx context.Context) error {
		c := r.db.conn(ctx)
		if _, err := c.Exec(ctx, `DELETE FROM client_favorites WHERE owner=$1`, owner); err != nil {
			return err
		}
		for i, id := range ids {
			if _, err := c.Exec(ctx, `
                INSERT INTO client_favorites(owner, salon_id, position)
                VALUES ($1, $2, $3)
                ON CONFLICT (owner, salon_id) DO NOTHING
            `, owner, id, i); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *StateRepo) LoadSession(ctx context.Context, owner string) (domain.Session, error) {
	const q = `SELECT access_token, refresh_token, profile FROM client_sessions WHERE owner=$1`
	var (
		out     domain.Session
		profile []byte
	)
	err := r.db.conn(ctx).QueryRow(ctx, q, owner).Scan(&out.AccessToken, &out.RefreshToken, &profile)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	if err := json.Unmarshal(profile, &out.User); err != nil {
		return domain.Session{}, err
	}
	return out, nil
}

func (r *StateRepo) SaveSession(ctx context.Context, owner string, s domain.Session) error {
	profile, err := json.Marshal(s.User)
	if err != nil {
		return err
	}
	const up = `
        INSERT INTO client_sessions(owner, access_token, refresh_token, profile, updated_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (owner) DO UPDATE
          SET access_token=EXCLUDED.access_token,
              refresh_token=EXCLUDED.refresh_token,
              profile=EXCLUDED.profile,
              updated_at=EXCLUDED.updated_at`
	_, err = r.db.conn(ctx).Exec(ctx, up, owner, s.AccessToken, s.RefreshToken, profile)
	return err
}

func (r *StateRepo) ClearSession(ctx context.Context, owner string) error {
	_, err := r.db.conn(ctx).Exec(ctx, `DELETE FROM client_sessions WHERE owner=$1`, owner)
	return err
}
