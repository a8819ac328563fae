package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agrimarket/internal/auth"
	"agrimarket/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestRouter(tokens *auth.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", authRequired(tokens), func(c *gin.Context) {
		ident := identityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": ident.UserID, "role": ident.Role})
	})
	return router
}

func TestAuthRequiredMissingToken(t *testing.T) {
	router := newAuthTestRouter(auth.NewManager("secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	tokens := auth.NewManager("secret", time.Hour)
	other := auth.NewManager("other-secret", time.Hour)
	router := newAuthTestRouter(tokens)

	forged, err := other.IssueToken(auth.Identity{UserID: 1, Role: models.RoleBuyer})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredValidToken(t *testing.T) {
	tokens := auth.NewManager("secret", time.Hour)
	router := newAuthTestRouter(tokens)

	token, err := tokens.IssueToken(auth.Identity{UserID: 7, Name: "Alice", Role: models.RoleBuyer})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 7, "role": "buyer"}`, w.Body.String())
}
