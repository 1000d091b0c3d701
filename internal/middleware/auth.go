package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"rentpay-backend/internal/models"
	"rentpay-backend/pkg/utils"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier is satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(token string) (*models.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	log      *logrus.Entry
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		log:      logrus.WithField("component", "auth"),
	}
}

// Authenticate requires a bearer access token and stores the caller's identity in the context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return m.authenticate(next, false)
}

// AuthenticateQuery also accepts the token as ?access_token=, for clients
// such as browser websockets that cannot set headers.
func (m *AuthMiddleware) AuthenticateQuery(next http.Handler) http.Handler {
	return m.authenticate(next, true)
}

func (m *AuthMiddleware) authenticate(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" && allowQuery {
			token = r.URL.Query().Get("access_token")
		}
		if token == "" {
			utils.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		identity, err := m.verifier.Verify(token)
		if err != nil {
			m.log.WithError(err).WithField("path", r.URL.Path).Debug("token rejected")
			utils.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity stored by Authenticate.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*models.Identity)
	return identity, ok && identity != nil
}
