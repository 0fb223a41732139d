package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"adfleet/internal/core/domain"
)

type principalKey struct{}

// Authenticator validates HS256 bearer tokens and turns their claims into a
// domain.Principal.
type Authenticator struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewAuthenticator(secret, issuer string, leeway time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, leeway: leeway}
}

type principalClaims struct {
	Role         string `json:"role"`
	VehicleClass string `json:"vehicle_class,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for p valid for ttl. It is used by tests and local
// tooling; production tokens come from the identity provider.
func (a *Authenticator) Issue(p domain.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := principalClaims{
		Role: string(p.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject(),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if d, ok := p.(domain.DriverPrincipal); ok {
		claims.VehicleClass = string(d.VehicleClass)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates raw and returns its principal.
func (a *Authenticator) Parse(raw string) (domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.leeway),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	parsed, err := jwt.ParseWithClaims(raw, &principalClaims{}, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*principalClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}
	return domain.NewPrincipal(domain.PrincipalClaims{
		Subject:      claims.Subject,
		Role:         claims.Role,
		VehicleClass: claims.VehicleClass,
	})
}

// Middleware rejects requests without a valid bearer token and stores the
// principal in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, nil, domain.ErrUnauthorized)
			return
		}
		p, err := a.Parse(strings.TrimSpace(raw))
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				// Token verified but its claims are malformed.
				err = fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
			}
			writeError(w, nil, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

func principalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// requireRole lets only principals of role through.
func requireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalFrom(r.Context())
			if !ok {
				writeError(w, nil, domain.ErrUnauthorized)
				return
			}
			if p.Role() != role {
				writeError(w, nil, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func driverFrom(r *http.Request) domain.DriverPrincipal {
	p, _ := principalFrom(r.Context())
	d, _ := p.(domain.DriverPrincipal)
	return d
}

func advertiserFrom(r *http.Request) domain.AdvertiserPrincipal {
	p, _ := principalFrom(r.Context())
	a, _ := p.(domain.AdvertiserPrincipal)
	return a
}
