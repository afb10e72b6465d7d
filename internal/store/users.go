// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Session is an authenticated login.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// CreateUser registers username with a bcrypt hash of password.
func (s *Store) CreateUser(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, errors.New("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}

	res, err := s.exec(ctx, sq.Insert("users").
		Columns("username", "password_hash", "created_at").
		Values(username, string(hash), s.timestamp()))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%q: %w", username, ErrUserExists)
		}
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	s.log.Info("user created", "username", username)
	return res.LastInsertId()
}

// Authenticate checks password against the stored hash. Unknown users and
// wrong passwords both return ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) error {
	row, err := s.queryRow(ctx, sq.Select("password_hash").From("users").
		Where(sq.Eq{"username": strings.TrimSpace(username)}))
	if err != nil {
		return err
	}

	var hash string
	if err := row.Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// CreateSession issues a random token for username valid for ttl.
func (s *Store) CreateSession(ctx context.Context, username string, ttl time.Duration) (Session, error) {
	uid, err := s.userID(ctx, username)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Token:     uuid.NewString(),
		Username:  username,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}
	if _, err := s.exec(ctx, sq.Insert("sessions").
		Columns("token", "user_id", "expires_at", "created_at").
		Values(sess.Token, uid, sess.ExpiresAt.Unix(), s.timestamp())); err != nil {
		return Session{}, fmt.Errorf("inserting session: %w", err)
	}
	return sess, nil
}

// SessionUser returns the username owning a live session token.
func (s *Store) SessionUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotFound
	}
	row, err := s.queryRow(ctx, sq.Select("u.username").
		From("sessions s").
		Join("users u ON u.id = s.user_id").
		Where(sq.Eq{"s.token": token}).
		Where(sq.Gt{"s.expires_at": s.now().Unix()}))
	if err != nil {
		return "", err
	}

	var username string
	if err := row.Scan(&username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("looking up session: %w", err)
	}
	return username, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.exec(ctx, sq.Delete("sessions").Where(sq.Eq{"token": token})); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry and returns how
// many were removed.
func (s *Store) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, sq.Delete("sessions").Where(sq.LtOrEq{"expires_at": s.now().Unix()}))
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	return res.RowsAffected()
}
