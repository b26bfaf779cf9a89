package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"event-portal/internal/identity"
)

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Store) GetUserByAccessToken(ctx context.Context, accessToken string) (*User, error) {
	hash := HashAccessToken(accessToken)
	var u User
	err := s.Pool.QueryRow(ctx,
		`SELECT id, name, access_token_hash, COALESCE(remote_contact_id, ''), created_at
		   FROM portal_users WHERE access_token_hash = $1`, hash).
		Scan(&u.ID, &u.Name, &u.AccessTokenHash, &u.RemoteContactID, &u.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, name, accessToken, remoteContactID string) (string, error) {
	id := NewID()
	hash := HashAccessToken(accessToken)
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO portal_users (id, name, access_token_hash, remote_contact_id, created_at)
		 VALUES ($1, $2, $3, $4, now())`, id, name, hash, remoteContactID)
	return id, err
}

// RemoteContactID implements identity.Directory. An unlinked account
// resolves to the empty identifier rather than an error.
func (s *Store) RemoteContactID(ctx context.Context, userID string) (string, error) {
	var contactID string
	err := s.Pool.QueryRow(ctx,
		`SELECT COALESCE(remote_contact_id, '') FROM portal_users WHERE id = $1`, userID).
		Scan(&contactID)
	if err != nil {
		return "", mapNotFound(err)
	}
	return contactID, nil
}

// UserByAccessToken resolves a bearer token to a request identity.
func (s *Store) UserByAccessToken(ctx context.Context, accessToken string) (*identity.Identity, error) {
	u, err := s.GetUserByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &identity.Identity{UserID: u.ID, Name: u.Name}, nil
}
