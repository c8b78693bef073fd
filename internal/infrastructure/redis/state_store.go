package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"salon-client/internal/application"
	"salon-client/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "salon-client:"

// Store keeps client state in Redis. Favorites are a list per owner, the
// session a JSON value. TTL applies to both; zero keeps them forever.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ application.ClientState = (*Store)(nil)

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func favoritesKey(owner string) string { return keyPrefix + "favorites:" + owner }
func sessionKey(owner string) string   { return keyPrefix + "session:" + owner }

type sessionRecord struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         domain.UserProfile `json:"user"`
}

func (s *Store) LoadFavorites(ctx context.Context, owner string) ([]string, error) {
	ids, err := s.Client.LRange(ctx, favoritesKey(owner), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveFavorites replaces the whole list in one transaction.
func (s *Store) SaveFavorites(ctx context.Context, owner string, ids []string) error {
	key := favoritesKey(owner)
	_, err := s.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		if len(ids) == 0 {
			return nil
		}
		vals := make([]any, len(ids))
		for i, id := range ids {
			vals[i] = id
		}
		p.RPush(ctx, key, vals...)
		if s.TTL > 0 {
			p.Expire(ctx, key, s.TTL)
		}
		return nil
	})
	return err
}

func (s *Store) LoadSession(ctx context.Context, owner string) (domain.Session, error) {
	raw, err := s.Client.Get(ctx, sessionKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Session{}, err
	}
	return domain.Session{AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken, User: rec.User}, nil
}

func (s *Store) SaveSession(ctx context.Context, owner string, sess domain.Session) error {
	raw, err := json.Marshal(sessionRecord{AccessToken: sess.AccessToken, RefreshToken: sess.RefreshToken, User: sess.User})
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, sessionKey(owner), raw, s.TTL).Err()
}

func (s *Store) ClearSession(ctx context.Context, owner string) error {
	return s.Client.Del(ctx, sessionKey(owner)).Err()
}
