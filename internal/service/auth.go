package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/fluttalk/fluttalk-server/internal/domain"
	"github.com/fluttalk/fluttalk-server/internal/usecase"
)

var tracer = otel.Tracer("auth")

const principalCacheTTL = 5 * time.Minute

// AuthService resolves bearer credentials to principals via the identity
// provider, caching verified results in redis so every request does not
// cost a provider round trip.
type AuthService struct {
	identity usecase.IdentityProvider
	rdb      *redis.Client
}

func NewAuthService(identity usecase.IdentityProvider, rdb *redis.Client) *AuthService {
	return &AuthService{
		identity: identity,
		rdb:      rdb,
	}
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Authenticate")
	defer span.End()

	key := principalCacheKey(token)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			var principal domain.Principal
			if err := json.Unmarshal([]byte(cached), &principal); err == nil {
				return principal, nil
			}
		} else if err != redis.Nil {
			span.RecordError(errors.Wrap(err, "AuthService.Authenticate: principal cache read failed"))
		}
	}

	principal, err := s.identity.Verify(ctx, token)
	if err != nil {
		span.RecordError(errors.Wrap(err, "AuthService.Authenticate: identity verification failed"))
		return domain.Principal{}, err
	}

	if s.rdb != nil {
		serialized, err := json.Marshal(principal)
		if err == nil {
			if err := s.rdb.Set(ctx, key, serialized, principalCacheTTL).Err(); err != nil {
				span.RecordError(errors.Wrap(err, "AuthService.Authenticate: principal cache write failed"))
			}
		}
	}

	return principal, nil
}

// principalCacheKey hashes the credential so raw tokens never land in redis.
func principalCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "principal:" + hex.EncodeToString(sum[:])
}
