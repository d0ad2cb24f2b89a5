package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

func TestDepartmentCatalog(t *testing.T) {
	f := newFixture(t)
	_, admin := f.user("admin", models.RoleAdmin, "")
	_, pgso := f.user("pgso1", models.RoleDepartment, "PGSO")
	_, pho := f.user("pho1", models.RoleDepartment, "PHO")

	rr := f.do("POST", "/api/v1/departments", admin, map[string]string{"name": "PGSO"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var dept models.Department
	decodeData(t, rr, &dept)
	assert.True(t, dept.IsVisible)
	assert.Empty(t, dept.Requirements)

	assert.Equal(t, http.StatusConflict, f.do("POST", "/api/v1/departments", admin, map[string]string{"name": "PGSO"}).Code)
	assert.Equal(t, http.StatusForbidden, f.do("POST", "/api/v1/departments", pgso, map[string]string{"name": "GSO"}).Code)

	path := "/api/v1/departments/" + dept.ID.Hex() + "/requirements"
	chairs := map[string]interface{}{"text": "Chairs", "type": "physical", "totalQuantity": 120}
	assert.Equal(t, http.StatusForbidden, f.do("POST", path, pho, chairs).Code)

	rr = f.do("POST", path, pgso, chairs)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	decodeData(t, rr, &dept)
	require.Len(t, dept.Requirements, 1)
	require.NotNil(t, dept.Requirements[0].TotalQuantity)
	assert.Equal(t, 120, *dept.Requirements[0].TotalQuantity)

	assert.Equal(t, http.StatusBadRequest, f.do("POST", path, pgso, map[string]interface{}{"text": "chairs", "type": "physical"}).Code)

	rr = f.do("POST", path, admin, map[string]interface{}{"text": "Sound system operator", "type": "service", "totalQuantity": 4})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	decodeData(t, rr, &dept)
	require.Len(t, dept.Requirements, 2)
	assert.Nil(t, dept.Requirements[1].TotalQuantity)

	reqPath := path + "/" + dept.Requirements[1].ID.Hex()
	require.Equal(t, http.StatusOK, f.do("DELETE", reqPath, pgso, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do("DELETE", reqPath, pgso, nil).Code)
}

func TestResourceAvailability(t *testing.T) {
	f := newFixture(t)
	_, pgso := f.user("pgso1", models.RoleDepartment, "PGSO")
	_, pho := f.user("pho1", models.RoleDepartment, "PHO")
	dept := f.department("PGSO", "Chairs", 100)

	body := map[string]interface{}{
		"departmentId":    dept.ID.Hex(),
		"requirementId":   dept.Requirements[0].ID.Hex(),
		"requirementText": "Chairs",
		"date":            "2026-11-02",
		"isAvailable":     true,
		"quantity":        40,
	}
	assert.Equal(t, http.StatusForbidden, f.do("PUT", "/api/v1/resource-availability", pho, body).Code)
	require.Equal(t, http.StatusOK, f.do("PUT", "/api/v1/resource-availability", pgso, body).Code)
	body["quantity"] = 30
	require.Equal(t, http.StatusOK, f.do("PUT", "/api/v1/resource-availability", pgso, body).Code)

	var rows []models.ResourceAvailability
	decodeData(t, f.do("GET", "/api/v1/resource-availability?departmentId="+dept.ID.Hex()+"&date=2026-11-02", pgso, nil), &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, 30, rows[0].Quantity)

	body["requirementId"] = primitive.NewObjectID().Hex()
	assert.Equal(t, http.StatusBadRequest, f.do("PUT", "/api/v1/resource-availability", pgso, body).Code)

	body["date"] = "02-11-2026"
	assert.Equal(t, http.StatusBadRequest, f.do("PUT", "/api/v1/resource-availability", pgso, body).Code)
}

func TestLocationAvailability(t *testing.T) {
	f := newFixture(t)
	_, admin := f.user("admin", models.RoleAdmin, "")
	_, ana := f.user("ana", models.RoleRequestor, "")

	body := map[string]interface{}{
		"locationName": "Mini Theater",
		"date":         "2026-11-02",
		"capacity":     150,
		"status":       models.LocationUnavailable,
	}
	assert.Equal(t, http.StatusForbidden, f.do("PUT", "/api/v1/location-availability", ana, body).Code)
	require.Equal(t, http.StatusOK, f.do("PUT", "/api/v1/location-availability", admin, body).Code)

	locs := f.store.AllLocations()
	require.Len(t, locs, 1)
	assert.Equal(t, models.LocationUnavailable, locs[0].Status)
	require.NotNil(t, locs[0].SetBy)

	body["status"] = "closed"
	assert.Equal(t, http.StatusBadRequest, f.do("PUT", "/api/v1/location-availability", admin, body).Code)
}
