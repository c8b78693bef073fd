package backend

import (
	"context"
	"net/http"

	"salon-client/internal/domain"
)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	var d sessionDTO
	if err := c.mutate(ctx, http.MethodPost, "/auth/login", creds, nil, &d, "data"); err != nil {
		return domain.Session{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.Session, error) {
	var d sessionDTO
	body := map[string]string{"refreshToken": refreshToken}
	if err := c.mutate(ctx, http.MethodPost, "/auth/refresh", body, nil, &d, "data"); err != nil {
		return domain.Session{}, err
	}
	return d.toDomain(), nil
}
