package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/notify"
)

func TestLoginHandler(t *testing.T) {
	f := newFixture(t)
	ana, _ := f.user("ana", models.RoleRequestor, "")
	idle, _ := f.user("idle", models.RoleRequestor, "")
	require.NoError(t, f.store.Users().UpdateOne(context.Background(), idle.ID, bson.M{"$set": bson.M{"status": "inactive"}}))

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"email", map[string]string{"email": "ANA@bataan.gov.ph", "password": "password123"}, http.StatusOK},
		{"username", map[string]string{"username": "ana", "password": "password123"}, http.StatusOK},
		{"wrong password", map[string]string{"email": "ana@bataan.gov.ph", "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"email": "who@bataan.gov.ph", "password": "password123"}, http.StatusUnauthorized},
		{"inactive", map[string]string{"username": "idle", "password": "password123"}, http.StatusForbidden},
		{"no password", map[string]string{"username": "ana"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do("POST", "/api/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}

	rr := f.do("POST", "/api/v1/auth/login", "", map[string]string{"email": "ana@bataan.gov.ph", "password": "password123"})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, ana.ID, resp.User.ID)
	assert.NotContains(t, rr.Body.String(), "password\":\"$2")

	me := f.do("GET", "/api/v1/users/me", resp.Token, nil)
	assert.Equal(t, http.StatusOK, me.Code)

	stored, err := f.store.Users().FindOne(context.Background(), bson.M{"_id": ana.ID})
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	var logins int
	for _, l := range f.store.AllLogs() {
		if l.Action == notify.ActionLogin {
			logins++
		}
	}
	assert.Equal(t, 3, logins)
}

func TestCreateUserHandler(t *testing.T) {
	f := newFixture(t)
	_, admin := f.user("admin", models.RoleAdmin, "")
	f.department("PGSO", "Chairs", 100)

	body := map[string]string{
		"username":   "pgso1",
		"email":      "PGSO1@bataan.gov.ph",
		"password":   "longenough",
		"role":       models.RoleDepartment,
		"department": "PGSO",
	}
	rr := f.do("POST", "/api/v1/users", admin, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created, err := f.store.Users().FindOne(context.Background(), bson.M{"username": "pgso1"})
	require.NoError(t, err)
	assert.Equal(t, "pgso1@bataan.gov.ph", created.Email)
	assert.Equal(t, UserStatusActive, created.Status)
	assert.NotEqual(t, "longenough", created.Password)

	assert.Equal(t, http.StatusConflict, f.do("POST", "/api/v1/users", admin, body).Code)

	body["username"], body["email"], body["department"] = "ghost", "ghost@bataan.gov.ph", "Nowhere"
	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/api/v1/users", admin, body).Code)

	body["username"], body["email"], body["role"] = "root", "root@bataan.gov.ph", models.RoleSuperAdmin
	assert.Equal(t, http.StatusForbidden, f.do("POST", "/api/v1/users", admin, body).Code)
}

func TestDeleteUserHandler(t *testing.T) {
	f := newFixture(t)
	me, admin := f.user("admin", models.RoleAdmin, "")
	other, _ := f.user("ana", models.RoleRequestor, "")

	assert.Equal(t, http.StatusBadRequest, f.do("DELETE", "/api/v1/users/"+me.ID.Hex(), admin, nil).Code)
	assert.Equal(t, http.StatusOK, f.do("DELETE", "/api/v1/users/"+other.ID.Hex(), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do("DELETE", "/api/v1/users/"+other.ID.Hex(), admin, nil).Code)
}
