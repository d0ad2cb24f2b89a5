package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	os.Setenv("CORS_ORIGINS", "http://localhost:5173, https://events.bataan.gov.ph ,")
	os.Setenv("JWT_TTL_HOURS", "12")
	os.Setenv("DB_QUERY_TIMEOUT", "4")
	defer os.Unsetenv("CORS_ORIGINS")
	defer os.Unsetenv("JWT_TTL_HOURS")
	defer os.Unsetenv("DB_QUERY_TIMEOUT")

	conf := New()

	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
	assert.Equal(t, []string{"http://localhost:5173", "https://events.bataan.gov.ph"}, conf.AllowedOrigins)
	assert.Equal(t, 12*time.Hour, conf.TokenTTL)
	assert.Equal(t, 4*time.Second, conf.QueryTimeout)
	assert.Equal(t, defaultPort, conf.Port)
	assert.NotNil(t, conf.Timezone)
}

func TestNewFallsBackOnBadNumbers(t *testing.T) {
	os.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	defer os.Unsetenv("RATE_LIMIT_PER_MINUTE")

	conf := New()

	assert.Equal(t, int64(defaultRateLimit), conf.RateLimit)
	assert.Equal(t, time.Duration(defaultTokenTTL)*time.Hour, conf.TokenTTL)
	assert.Equal(t, time.Duration(defaultQueryTime)*time.Second, conf.QueryTimeout)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "error it borked", body.Message)
	assert.Equal(t, "bad request", body.Error)
}

func TestErrorStatusWithoutError(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("event not found", http.StatusNotFound, rr, nil)

	var body models.ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "event not found", body.Message)
	assert.Empty(t, body.Error)
}
