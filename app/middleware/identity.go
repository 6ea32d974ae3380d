package middleware

import (
	"context"
	"net/http"

	"scribe/app/errs"
	"scribe/app/models"
	"scribe/app/services"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ctxKey struct{}

// IdentityHeaders names the trusted headers the upstream authenticator sets.
type IdentityHeaders struct {
	UserID string
	Name   string
	Email  string
}

var DefaultIdentityHeaders = IdentityHeaders{
	UserID: "X-User-ID",
	Name:   "X-User-Name",
	Email:  "X-User-Email",
}

// Authenticate records the requester named by the identity headers and
// attaches it to the request context. Requests without an identity pass
// through anonymously; handlers decide whether that is enough.
func Authenticate(headers IdentityHeaders, users *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headers.UserID)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.EnsureUser(r.Context(), models.User{
				ID:    id,
				Name:  r.Header.Get(headers.Name),
				Email: r.Header.Get(headers.Email),
			})
			if err != nil {
				status := errs.StatusCode(err)
				message := err.Error()
				if status == http.StatusInternalServerError {
					log.Error().Err(err).Str("user", id).Msg("Unable to record identity")
					message = "internal server error"
				} else if status == http.StatusBadRequest {
					// A malformed identity is the authenticator's fault, not the caller's.
					status = http.StatusUnauthorized
				}
				writeError(w, status, message)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFrom returns the authenticated requester, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(ctxKey{}).(*models.User)
	return user
}

// UserID returns the requester id, empty when anonymous.
func UserID(ctx context.Context) string {
	if user := UserFrom(ctx); user != nil {
		return user.ID
	}
	return ""
}
