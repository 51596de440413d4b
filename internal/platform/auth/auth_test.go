package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(secret []byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "name": UserName(c)})
	})
	r.GET("/admin", RequireAuth(secret), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	t.Run("有効なトークンで通過", func(t *testing.T) {
		token, err := issuer.Issue(3, "検査 太郎", false)
		require.NoError(t, err)

		r := newRouter(issuer.Secret())
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":3`)
	})

	t.Run("ヘッダなしは401", func(t *testing.T) {
		r := newRouter([]byte("test-secret"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("別の鍵で署名されたトークンは401", func(t *testing.T) {
		other := NewIssuer("other-secret", time.Hour)
		token, err := other.Issue(3, "検査 太郎", false)
		require.NoError(t, err)

		r := newRouter([]byte("test-secret"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("期限切れトークンは401", func(t *testing.T) {
		expired := NewIssuer("test-secret", -time.Minute)
		token, err := expired.Issue(3, "検査 太郎", false)
		require.NoError(t, err)

		r := newRouter([]byte("test-secret"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	r := newRouter(issuer.Secret())

	t.Run("管理者は通過", func(t *testing.T) {
		token, err := issuer.Issue(1, "管理者", true)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("一般ユーザーは403", func(t *testing.T) {
		token, err := issuer.Issue(3, "検査 太郎", false)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
