package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"questboard/internal/domain"
	"questboard/internal/quest"
	"questboard/internal/service"
	"questboard/internal/webhook"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", domain.NewValidationError("tag", "unknown tag"), http.StatusBadRequest},
		{"bad signature", webhook.ErrBadSignature, http.StatusUnauthorized},
		{"missing signature", webhook.ErrMissingSignature, http.StatusUnauthorized},
		{"already claimed", service.ErrAlreadyClaimedOrNotFound, http.StatusConflict},
		{"github taken", service.ErrGithubTaken, http.StatusConflict},
		{"user not found", fmt.Errorf("get user: %w", service.ErrUserNotFound), http.StatusNotFound},
		{"persistence", &service.PersistenceError{Op: "award", Err: errors.New("timeout")}, http.StatusServiceUnavailable},
		{"unknown quest type", quest.ErrUnknownQuestType, http.StatusInternalServerError},
		{"level not defined", fmt.Errorf("claim level 7: %w", service.ErrLevelNotDefined), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestQueryLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for query, want := range map[string]int{"": 0, "?limit=25": 25, "?limit=abc": 0} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+query, nil)
		assert.Equal(t, want, queryLimit(c), query)
	}
}
