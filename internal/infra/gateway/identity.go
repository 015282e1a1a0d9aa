package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

const identityTimeout = 3 * time.Second

// IdentityGateway talks to the external identity service that maps bearer
// credentials to stable user ids and owns the user directory. Directory
// lookups are cached in-process; credential verification is not cached
// here (the auth service keeps its own shared cache).
type IdentityGateway struct {
	client  *http.Client
	baseURL string
	cache   *cache.Cache
}

func NewIdentityGateway(baseURL string) *IdentityGateway {
	return &IdentityGateway{
		client:  &http.Client{Timeout: identityTimeout},
		baseURL: baseURL,
		cache:   cache.New(10*time.Minute, 15*time.Minute),
	}
}

func (g *IdentityGateway) Verify(ctx context.Context, token string) (domain.Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/verify", nil)
	if err != nil {
		return domain.Principal{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return g.do(req)
}

func (g *IdentityGateway) GetUser(ctx context.Context, uid string) (domain.Principal, error) {
	if cached, found := g.cache.Get("uid:" + uid); found {
		return cached.(domain.Principal), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/users/"+url.PathEscape(uid), nil)
	if err != nil {
		return domain.Principal{}, err
	}

	principal, err := g.do(req)
	if err != nil {
		return domain.Principal{}, err
	}
	g.cache.Set("uid:"+uid, principal, cache.DefaultExpiration)
	return principal, nil
}

func (g *IdentityGateway) GetUsers(ctx context.Context, uids []string) ([]domain.Principal, error) {
	principals := make([]domain.Principal, 0, len(uids))
	for _, uid := range uids {
		principal, err := g.GetUser(ctx, uid)
		if err != nil {
			return nil, err
		}
		principals = append(principals, principal)
	}
	return principals, nil
}

func (g *IdentityGateway) GetUserByEmail(ctx context.Context, email string) (domain.Principal, error) {
	if cached, found := g.cache.Get("email:" + email); found {
		return cached.(domain.Principal), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/users?email="+url.QueryEscape(email), nil)
	if err != nil {
		return domain.Principal{}, err
	}

	principal, err := g.do(req)
	if err != nil {
		return domain.Principal{}, err
	}
	g.cache.Set("email:"+email, principal, cache.DefaultExpiration)
	return principal, nil
}

func (g *IdentityGateway) UpdateName(ctx context.Context, uid, name string) (domain.Principal, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return domain.Principal{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, g.baseURL+"/v1/users/"+url.PathEscape(uid), bytes.NewReader(body))
	if err != nil {
		return domain.Principal{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	principal, err := g.do(req)
	if err != nil {
		return domain.Principal{}, err
	}
	g.cache.Delete("uid:" + uid)
	return principal, nil
}

func (g *IdentityGateway) do(req *http.Request) (domain.Principal, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Principal{}, domain.StoreUnavailableError{Cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return domain.Principal{}, domain.UnauthorizedError{Reason: "identity provider rejected credential"}
	case http.StatusNotFound:
		return domain.Principal{}, domain.NotFoundError{Resource: "user"}
	default:
		return domain.Principal{}, domain.StoreUnavailableError{
			Cause: fmt.Errorf("identity provider returned status %d", resp.StatusCode),
		}
	}

	var principal domain.Principal
	if err := json.NewDecoder(resp.Body).Decode(&principal); err != nil {
		return domain.Principal{}, domain.StoreUnavailableError{Cause: err}
	}
	return principal, nil
}
