package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"rewardledger/crypto"
	"rewardledger/observability/logging"
)

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	HMACSecret []byte
	Issuer     string
	Audience   string
	ClockSkew  time.Duration
}

type callerKey struct{}

// Authenticator verifies HMAC-signed JWTs whose subject is the caller's
// ledger address.
type Authenticator struct {
	cfg    AuthConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthenticator validates cfg and returns an authenticator.
func NewAuthenticator(cfg AuthConfig, logger *slog.Logger) (*Authenticator, error) {
	if len(cfg.HMACSecret) == 0 {
		return nil, errors.New("auth: HMAC secret required")
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.HMACSecret = append([]byte(nil), cfg.HMACSecret...)
	return &Authenticator{cfg: cfg, logger: logger, now: time.Now}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// authenticated caller in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearer(r.Header.Get("Authorization"))
		if tokenString == "" {
			writeProblem(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
			return
		}
		caller, err := a.Verify(tokenString)
		if err != nil {
			a.logger.Warn("token validation failed",
				slog.String("token", logging.MaskToken(tokenString)),
				slog.Any("error", err))
			writeProblem(w, http.StatusUnauthorized, "unauthenticated", "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), callerKey{}, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Verify parses tokenString and returns the caller address from its subject.
func (a *Authenticator) Verify(tokenString string) ([20]byte, error) {
	opts := []jwt.ParserOption{
		jwt.WithLeeway(a.cfg.ClockSkew),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	if a.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.cfg.Audience))
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.cfg.HMACSecret, nil
	}, opts...)
	if err != nil {
		return [20]byte{}, err
	}
	if !token.Valid {
		return [20]byte{}, errors.New("token invalid")
	}
	return crypto.ParseAddress(claims.Subject)
}

// CallerFrom returns the authenticated caller stored by Middleware.
func CallerFrom(ctx context.Context) ([20]byte, bool) {
	caller, ok := ctx.Value(callerKey{}).([20]byte)
	return caller, ok
}

// IssueToken signs a token for subject valid for ttl.
func IssueToken(secret []byte, issuer, audience string, subject [20]byte, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("auth: HMAC secret required")
	}
	if ttl <= 0 {
		return "", errors.New("auth: ttl must be positive")
	}
	claims := jwt.RegisteredClaims{
		Subject:   crypto.Format(subject),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func extractBearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
