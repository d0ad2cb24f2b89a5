package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/config"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

// UserStatusInactive marks an account that may no longer sign in
const UserStatusInactive = "inactive"

type contextKey int

const userKey contextKey = iota

// WithUser stores the authenticated caller on ctx
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the caller stored by the auth middleware
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// Auth verifies bearer tokens and loads the calling user
type Auth struct {
	DB     databases.UserDatabase
	Tokens *TokenIssuer

	authenticator auth.Authenticator
}

// NewAuth sets up go-guardian with a bearer strategy whose verified tokens are
// kept in a FIFO cache for the token lifetime
func NewAuth(ctx context.Context, db databases.UserDatabase, tokens *TokenIssuer) *Auth {
	a := &Auth{DB: db, Tokens: tokens}
	cache := store.NewFIFO(ctx, tokens.TTL())
	a.authenticator = auth.New()
	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, bearer.New(a.verifyToken, cache))
	return a
}

func (a *Auth) verifyToken(_ context.Context, _ *http.Request, token string) (auth.Info, error) {
	claims, err := a.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return auth.NewDefaultUser(claims.Username, claims.Subject, []string{claims.Role}, nil), nil
}

// Identify authenticates r and returns the stored user. A token in the `token`
// query parameter is accepted when no Authorization header is sent, which is
// how browsers pass credentials on websocket upgrades.
func (a *Auth) Identify(r *http.Request) (*models.User, error) {
	if r.Header.Get("Authorization") == "" {
		if t := r.URL.Query().Get("token"); t != "" {
			r.Header.Set("Authorization", "Bearer "+t)
		}
	}
	info, err := a.authenticator.Authenticate(r)
	if err != nil {
		return nil, err
	}
	return a.loadUser(r.Context(), info.ID())
}

// IdentifyToken authenticates a raw token, as sent by socket.io clients
func (a *Auth) IdentifyToken(r *http.Request, token string) (*models.User, error) {
	req := r.Clone(r.Context())
	req.Header.Set("Authorization", "Bearer "+strings.TrimPrefix(token, "Bearer "))
	info, err := a.authenticator.Authenticate(req)
	if err != nil {
		return nil, err
	}
	return a.loadUser(r.Context(), info.ID())
}

func (a *Auth) loadUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidToken
	}
	ctx, cancel := WithQueryTimeout(ctx)
	defer cancel()
	u, err := a.DB.FindOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	if u.Status == UserStatusInactive {
		return nil, errInactive
	}
	return u, nil
}

var errInactive = errors.New("account is inactive")

// Middleware rejects unauthenticated requests and stores the caller in the request context
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.Identify(r)
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.Path, "error", err)
			status := http.StatusUnauthorized
			if errors.Is(err, errInactive) {
				status = http.StatusForbidden
			}
			config.ErrorStatus("unauthorized", status, w, nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireRoles allows the request through only when the caller holds one of roles
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
				return
			}
			for _, role := range roles {
				if u.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			config.ErrorStatus("insufficient role", http.StatusForbidden, w, nil)
		})
	}
}

// RequireElevated allows admins and superadmins
var RequireElevated = RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
