package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/config"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/notify"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// UserStatusActive is the status of an account that may sign in
const UserStatusActive = "active"

// User struct exists for user handlers
type User struct {
	DB     databases.UserDatabase
	DDB    databases.DepartmentDatabase
	LDB    databases.ActivityLogDatabase
	Tokens *api.TokenIssuer
}

// NewUser builds a user record from req with a bcrypt hashed password
func NewUser(req models.CreateUserRequest) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := primitive.NewDateTimeFromTime(time.Now())
	return &models.User{
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Name:       req.Name,
		Password:   string(hashed),
		Role:       req.Role,
		Department: req.Department,
		Status:     UserStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginHandler checks credentials and issues a bearer token
func (u User) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid login request", err)
		return
	}

	filter := bson.M{"username": strings.TrimSpace(req.Username)}
	if req.Email != "" {
		filter = bson.M{"email": strings.ToLower(strings.TrimSpace(req.Email))}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, filter)
	if err != nil && !errors.Is(err, databases.ErrNotFound) {
		writeError(w, "failed to get user", err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, nil)
		return
	}
	if user.Status == api.UserStatusInactive {
		config.ErrorStatus("account is inactive", http.StatusForbidden, w, nil)
		return
	}

	token, err := u.Tokens.Issue(*user)
	if err != nil {
		writeError(w, "failed to issue token", err)
		return
	}

	now := time.Now()
	last := primitive.NewDateTimeFromTime(now)
	if err := u.DB.UpdateOne(ctx, user.ID, bson.M{"$set": bson.M{"lastLogin": last}}); err != nil {
		zap.S().Warnw("failed to record last login", "userId", user.ID.Hex(), "error", err)
	}
	user.LastLogin = &last

	entry := notify.NewLoginEntry(*user, clientIP(r), now)
	if err := u.LDB.InsertOne(ctx, &entry); err != nil {
		zap.S().Warnw("failed to record login activity", "userId", user.ID.Hex(), "error", err)
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Success: true, Token: token, User: *user})
}

// MeHandler returns the caller
func (u User) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: caller(r)})
}

// UsersHandler lists users, optionally filtered by ?role= and ?department=
func (u User) UsersHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["role"] = role
	}
	if dept := r.URL.Query().Get("department"); dept != "" {
		filter["department"] = dept
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	users, err := u.DB.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		writeError(w, "failed to get users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: users})
}

// CreateUserHandler adds an account. A department account must name a known department.
func (u User) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid user", err)
		return
	}
	if req.Role == models.RoleSuperAdmin && caller(r).Role != models.RoleSuperAdmin {
		writeError(w, "only a superadmin may create a superadmin", workflow.ErrForbidden)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if req.Department != "" {
		if _, err := u.DDB.FindOne(ctx, bson.M{"name": req.Department}); err != nil {
			if errors.Is(err, databases.ErrNotFound) {
				err = workflow.ErrUnknownDepartment
			}
			writeError(w, "invalid department", err)
			return
		}
	}

	user, err := NewUser(req)
	if err != nil {
		writeError(w, "failed to hash password", err)
		return
	}
	if err := u.DB.InsertOne(ctx, user); err != nil {
		writeError(w, "user with this email or username already exists", err)
		return
	}
	zap.S().Infow("user created", "userId", user.ID.Hex(), "role", user.Role)
	writeJSON(w, http.StatusCreated, models.SuccessResponse{Success: true, Message: "User created", Data: user})
}

// DeleteUserHandler removes an account other than the caller's own
func (u User) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, "invalid user id", err)
		return
	}
	if id == caller(r).ID {
		writeError(w, "cannot delete your own account", badRequest("self deletion"))
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := u.DB.DeleteOne(ctx, id); err != nil {
		writeError(w, "failed to delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "User deleted"})
}
