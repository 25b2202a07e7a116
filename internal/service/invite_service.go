package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rmaia-dev/sgt-api/internal/models"
	"github.com/rmaia-dev/sgt-api/internal/repository"
	"github.com/rmaia-dev/sgt-api/pkg/config"
	appErrors "github.com/rmaia-dev/sgt-api/pkg/errors"
)

type inviteRepository interface {
	SaveInviteToken(ctx context.Context, token *models.InviteToken) error
	FindInviteToken(ctx context.Context, classID string) (*models.InviteToken, error)
}

// InviteOutcome is the result of validating an invite token.
type InviteOutcome string

const (
	InviteValid    InviteOutcome = "valid"
	InviteInvalid  InviteOutcome = "invalid"
	InviteExpired  InviteOutcome = "expired"
	InviteNotFound InviteOutcome = "not_found"
)

// InviteLink is the issued credential returned to administrators.
type InviteLink struct {
	ClassID   string    `json:"class_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	URL       string    `json:"url"`
}

// InviteService issues and validates time-limited self check-in tokens.
// Tokens are multi-use: a single link gates the check-in page for every
// attendee until it expires. Issuing a new token replaces the previous one.
type InviteService struct {
	repo   inviteRepository
	cache  *redis.Client
	cfg    config.InvitesConfig
	logger *zap.Logger
}

// NewInviteService constructs an InviteService. The Redis client is optional;
// without it every validation reads through to Postgres.
func NewInviteService(repo inviteRepository, cache *redis.Client, cfg config.InvitesConfig, logger *zap.Logger) *InviteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InviteService{repo: repo, cache: cache, cfg: cfg, logger: logger}
}

// Generate issues a fresh invite token for a class. A non-positive
// expiresInMinutes falls back to the configured default TTL.
func (s *InviteService) Generate(ctx context.Context, actor models.Actor, classID string, expiresInMinutes int) (*InviteLink, error) {
	if !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may generate invite links")
	}

	ttl := time.Duration(expiresInMinutes) * time.Minute
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	if s.cfg.MaxTTL > 0 && ttl > s.cfg.MaxTTL {
		ttl = s.cfg.MaxTTL
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate token")
	}

	token := &models.InviteToken{
		ClassID:   classID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.repo.SaveInviteToken(ctx, token); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		case errors.Is(err, repository.ErrClassFinalized):
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "cannot invite to a finalized class")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store invite token")
		}
	}

	s.cacheToken(ctx, token)

	s.logger.Info("invite link generated",
		zap.String("class_id", classID),
		zap.Time("expires_at", token.ExpiresAt),
		zap.String("actor", actor.ID),
	)
	return &InviteLink{
		ClassID:   classID,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		URL:       fmt.Sprintf("%s/checkin/%s/%s", s.cfg.BaseURL, classID, token.Token),
	}, nil
}

// Validate checks a token against the active one for the class. Read-only and
// unauthenticated; it never consumes the token.
func (s *InviteService) Validate(ctx context.Context, classID, token string) (InviteOutcome, error) {
	if classID == "" || token == "" {
		return InviteInvalid, nil
	}

	if cached, ok := s.cachedToken(ctx, classID); ok {
		if cached == token {
			return InviteValid, nil
		}
		// stale or foreign token; fall through to the store for the verdict
	}

	stored, err := s.repo.FindInviteToken(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return InviteNotFound, nil
		}
		return InviteInvalid, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invite token")
	}
	if stored.Token != token {
		return InviteInvalid, nil
	}
	if stored.Expired(time.Now().UTC()) {
		return InviteExpired, nil
	}
	return InviteValid, nil
}

// cacheToken mirrors the active token into Redis with its remaining lifetime.
// Cache failures are logged and ignored; Postgres stays authoritative.
func (s *InviteService) cacheToken(ctx context.Context, token *models.InviteToken) {
	if s.cache == nil {
		return
	}
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, inviteCacheKey(token.ClassID), token.Token, ttl).Err(); err != nil {
		s.logger.Warn("invite cache write failed", zap.String("class_id", token.ClassID), zap.Error(err))
	}
}

func (s *InviteService) cachedToken(ctx context.Context, classID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, err := s.cache.Get(ctx, inviteCacheKey(classID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("invite cache read failed", zap.String("class_id", classID), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// Invalidate drops the cached token for a class. Called when a class is
// finalized or deleted so the cache cannot outlive the stored token.
func (s *InviteService) Invalidate(ctx context.Context, classID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, inviteCacheKey(classID)).Err(); err != nil {
		s.logger.Warn("invite cache invalidation failed", zap.String("class_id", classID), zap.Error(err))
	}
}

func inviteCacheKey(classID string) string {
	return "invite:" + classID
}
