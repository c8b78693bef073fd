package application

import (
	"context"
	"errors"
	"sync"

	"salon-client/internal/domain"

	"go.uber.org/zap"
)

// AuthStore holds the current session and implements AuthProvider for the
// transport. The session is mirrored into ClientState under owner.
type AuthStore struct {
	backend AuthBackend
	state   ClientState
	owner   string
	dedupe  *Deduplicator
	log     *zap.Logger

	mu      sync.RWMutex
	session domain.Session
}

var _ AuthProvider = (*AuthStore)(nil)

func NewAuthStore(backend AuthBackend, state ClientState, owner string, dedupe *Deduplicator, log *zap.Logger) *AuthStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthStore{backend: backend, state: state, owner: owner, dedupe: dedupe, log: log}
}

// Restore loads a persisted session, if any.
func (s *AuthStore) Restore(ctx context.Context) error {
	sess, err := s.state.LoadSession(ctx, s.owner)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	return nil
}

func (s *AuthStore) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if err := domain.Validate(creds); err != nil {
		return domain.Session{}, err
	}
	sess, err := s.backend.Login(ctx, creds)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.state.SaveSession(ctx, s.owner, sess); err != nil {
		return domain.Session{}, err
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	s.log.Info("auth.login", zap.String("user_id", sess.User.ID))
	return sess, nil
}

func (s *AuthStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()
	return s.state.ClearSession(ctx, s.owner)
}

func (s *AuthStore) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *AuthStore) AccessToken(context.Context) string {
	return s.Session().AccessToken
}

// RefreshAccessToken exchanges the refresh token for a new access token.
// Concurrent 401s share one refresh call. A rejected refresh token ends the
// session.
func (s *AuthStore) RefreshAccessToken(ctx context.Context) (bool, error) {
	return Dedupe(ctx, s.dedupe, "auth:refresh", func(c context.Context) (bool, error) {
		cur := s.Session()
		if cur.RefreshToken == "" {
			return false, nil
		}
		next, err := s.backend.Refresh(c, cur.RefreshToken)
		if err != nil {
			var he *domain.HTTPError
			if errors.As(err, &he) && (he.Status == 401 || he.Status == 403) {
				s.log.Info("auth.refresh_rejected", zap.Int("status", he.Status))
				if cerr := s.Logout(c); cerr != nil {
					s.log.Warn("auth.clear_failed", zap.Error(cerr))
				}
				return false, nil
			}
			return false, err
		}
		if next.AccessToken == "" {
			return false, nil
		}
		if next.RefreshToken == "" {
			next.RefreshToken = cur.RefreshToken
		}
		if next.User.ID == "" {
			next.User = cur.User
		}
		s.mu.Lock()
		s.session = next
		s.mu.Unlock()
		if err := s.state.SaveSession(c, s.owner, next); err != nil {
			s.log.Warn("auth.persist_failed", zap.Error(err))
		}
		return true, nil
	})
}
