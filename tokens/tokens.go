/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package tokens persists the authentication token pair. The store is the
// sole writer of its keys; every other consumer treats them as read-only.
package tokens

import (
	"go.uber.org/zap"

	"github.com/suparena/storekit"
)

// Logical keys within the auth namespace.
const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// Pair is an access/refresh token pair. Created on authentication,
// overwritten on refresh, deleted on logout.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Store reads and writes the token pair on a persistent, auth-namespaced
// engine.
type Store struct {
	engine *storekit.Engine
	logger *zap.Logger
}

// New creates a Store over the given engine, normally the auth engine from
// storekit.Bootstrap.
func New(engine *storekit.Engine, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{engine: engine, logger: logger}
}

// AccessToken returns the stored access token, or "" when absent.
func (s *Store) AccessToken() string {
	return storekit.GetOr(s.engine, accessTokenKey, "")
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	return storekit.GetOr(s.engine, refreshTokenKey, "")
}

// SetTokens stores both tokens. This is one logical operation made of two
// independent writes; it is not atomic. A failure between the two writes
// can pair a fresh access token with a stale refresh token — callers should
// treat any returned error as "session state unknown" and re-authenticate.
func (s *Store) SetTokens(access, refresh string) error {
	if err := storekit.Set(s.engine, accessTokenKey, access); err != nil {
		return err
	}
	if err := storekit.Set(s.engine, refreshTokenKey, refresh); err != nil {
		s.logger.Error("refresh token write failed after access token write, token pair may be inconsistent",
			zap.Error(err))
		return err
	}
	return nil
}

// Tokens returns the stored pair.
func (s *Store) Tokens() Pair {
	return Pair{
		AccessToken:  s.AccessToken(),
		RefreshToken: s.RefreshToken(),
	}
}

// ClearTokens removes both tokens. Removal is best-effort, matching the
// engine's remove semantics.
func (s *Store) ClearTokens() {
	s.engine.Remove(accessTokenKey)
	s.engine.Remove(refreshTokenKey)
}
