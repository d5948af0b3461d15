package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/dailybrief/internal/auth"
	"github.com/zfogg/dailybrief/internal/database"
	"github.com/zfogg/dailybrief/internal/repository"
)

func TestAuthMiddleware(t *testing.T) {
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), nil)
	require.NoError(t, err)
	require.NoError(t, database.MigrateDB(db))
	store := repository.NewGormStore(db)
	defer store.Close()

	tokens := auth.NewService([]byte("secret"))
	issued, err := tokens.IssueToken("u1", "reader")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(tokens, store.Users))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "username": c.GetString("username")})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + issued.Token, http.StatusOK},
		{"lowercase scheme", "bearer " + issued.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
				assert.Contains(t, w.Body.String(), `"username":"reader"`)
			}
		})
	}

	user, err := store.Users.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "reader", user.Username)
}
