package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/logging"
	"github.com/dmitrijs2005/minibi/internal/server/auth"
	"github.com/dmitrijs2005/minibi/internal/server/config"
	"github.com/dmitrijs2005/minibi/internal/server/credentials"
	"github.com/dmitrijs2005/minibi/internal/server/models"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minibi/internal/server/revocation"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IdentityService owns accounts: registration, credential checks, tokens
// and the cascading account deletion.
type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	verifier                     credentials.Verifier
	revoked                      revocation.Store
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, verifier credentials.Verifier,
	revoked revocation.Store, logger logging.Logger, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		verifier:                     verifier,
		revoked:                      revoked,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Register creates an account. Usernames are matched exactly, so "Ann"
// and "ann" are different accounts.
func (s *IdentityService) Register(ctx context.Context, username, secret string) (int64, error) {
	if strings.TrimSpace(username) == "" {
		return 0, fmt.Errorf("%w: username is required", common.ErrValidation)
	}

	sealed, err := s.verifier.Seal(secret)
	if err != nil {
		return 0, storageErr("seal secret", err)
	}

	account, err := s.repomanager.Accounts(s.db).Create(ctx, &models.Account{UserName: username, Secret: sealed})
	if err != nil {
		return 0, storageErr("create account", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return account.ID, nil
}

// Authenticate returns the account id when the secret matches. An unknown
// username and a wrong secret both yield (0, false, nil).
func (s *IdentityService) Authenticate(ctx context.Context, username, secret string) (int64, bool, error) {
	account, err := s.repomanager.Accounts(s.db).GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, false, nil
		}
		return 0, false, storageErr("get account", err)
	}

	if !s.verifier.Verify(account.Secret, secret) {
		return 0, false, nil
	}
	return account.ID, true, nil
}

func (s *IdentityService) Login(ctx context.Context, username, secret string) (*TokenPair, error) {
	id, ok, err := s.Authenticate(ctx, username, secret)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, s.db, id)
}

// Refresh validates a refresh token, rotates it in one transaction and
// returns a fresh pair.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		token, err := repo.Find(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}
		if token.Expires.Before(s.now()) {
			return common.ErrRefreshTokenExpired
		}

		if err := repo.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		pair, err = s.generateTokenPair(ctx, tx, token.AccountID)
		return err
	})
	if err != nil {
		return nil, storageErr("refresh token", err)
	}
	return pair, nil
}

// Logout puts the access token id on the deny list until it would have
// expired anyway, and drops the refresh token when one is given. A refresh
// token issued to another account is left alone.
func (s *IdentityService) Logout(ctx context.Context, accountID int64, accessTokenID string, expiresAt time.Time, refreshToken string) error {
	if accessTokenID != "" {
		if err := s.revoked.Revoke(ctx, accessTokenID, expiresAt); err != nil {
			return storageErr("revoke access token", err)
		}
	}
	if refreshToken != "" {
		if _, err := s.repomanager.RefreshTokens(s.db).DeleteOwned(ctx, accountID, refreshToken); err != nil {
			return storageErr("delete refresh token", err)
		}
	}
	return nil
}

// IsRevoked reports whether an access token id is on the deny list.
func (s *IdentityService) IsRevoked(ctx context.Context, accessTokenID string) (bool, error) {
	return s.revoked.IsRevoked(ctx, accessTokenID)
}

func (s *IdentityService) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.repomanager.Accounts(s.db).GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, storageErr("get account", err)
	}
	return true, nil
}

// Active reports whether the account still exists. Access tokens outlive
// a deleted account, so the transport checks this on every request.
func (s *IdentityService) Active(ctx context.Context, id int64) (bool, error) {
	if _, err := s.repomanager.Accounts(s.db).GetByID(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, storageErr("get account", err)
	}
	return true, nil
}

// ListUsernames returns every username in lexicographic order.
func (s *IdentityService) ListUsernames(ctx context.Context) ([]string, error) {
	names, err := s.repomanager.Accounts(s.db).ListUserNames(ctx)
	if err != nil {
		return nil, storageErr("list usernames", err)
	}
	return names, nil
}

func (s *IdentityService) ResolveUsername(ctx context.Context, id int64) (string, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		return "", storageErr("get account", err)
	}
	return account.UserName, nil
}

// LookupID maps a username to its account id, or common.ErrUserNotFound.
func (s *IdentityService) LookupID(ctx context.Context, username string) (int64, error) {
	account, err := s.repomanager.Accounts(s.db).GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrUserNotFound
		}
		return 0, storageErr("get account", err)
	}
	return account.ID, nil
}

// DeleteAccount removes the account and everything hanging off it in one
// transaction: grants on its artifacts and grants targeting it, then its
// files, notes and refresh tokens, then the account row. Any failure
// leaves every relation untouched.
func (s *IdentityService) DeleteAccount(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Accounts(tx).GetByID(ctx, id); err != nil {
			return err
		}
		if _, err := s.repomanager.Grants(tx).DeleteByAccount(ctx, id); err != nil {
			return fmt.Errorf("error deleting grants: %w", err)
		}
		if _, err := s.repomanager.Files(tx).DeleteByAccount(ctx, id); err != nil {
			return fmt.Errorf("error deleting files: %w", err)
		}
		if _, err := s.repomanager.Notes(tx).DeleteByAccount(ctx, id); err != nil {
			return fmt.Errorf("error deleting notes: %w", err)
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteByAccount(ctx, id); err != nil {
			return fmt.Errorf("error deleting refresh tokens: %w", err)
		}
		ok, err := s.repomanager.Accounts(tx).Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("error deleting account: %w", err)
		}
		if !ok {
			return common.ErrorNotFound
		}
		return nil
	})
	if err != nil {
		return storageErr("delete account", err)
	}

	s.logger.Info(ctx, "account deleted", "account_id", id)
	return nil
}

func (s *IdentityService) generateTokenPair(ctx context.Context, db dbx.DBTX, accountID int64) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(accountID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, accountID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, storageErr("store refresh token", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
