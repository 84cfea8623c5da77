package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/teampulse/backend/pkg/utils"
)

func adminRouter(t *testing.T, keyHash string, optional bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	mw := AdminKey(keyHash)
	if optional {
		mw = OptionalAdminKey(keyHash)
	}
	router.GET("/probe", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": IsAdmin(c)})
	})
	return router
}

func probe(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if key != "" {
		req.Header.Set(AdminKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdminKeyRequired(t *testing.T) {
	hash, err := utils.HashSecret("letmein")
	if err != nil {
		t.Fatal(err)
	}
	router := adminRouter(t, hash, false)

	if rec := probe(router, ""); rec.Code != http.StatusForbidden {
		t.Errorf("missing key: status = %d, want 403", rec.Code)
	}
	if rec := probe(router, "wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", rec.Code)
	}
	if rec := probe(router, "letmein"); rec.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", rec.Code)
	}
}

func TestAdminKeyDisabledWhenHashEmpty(t *testing.T) {
	router := adminRouter(t, "", false)
	if rec := probe(router, "anything"); rec.Code != http.StatusForbidden {
		t.Errorf("empty hash should close the admin surface, got %d", rec.Code)
	}
}

func TestOptionalAdminKeyNeverRejects(t *testing.T) {
	hash, err := utils.HashSecret("letmein")
	if err != nil {
		t.Fatal(err)
	}
	router := adminRouter(t, hash, true)

	if rec := probe(router, ""); rec.Code != http.StatusOK {
		t.Errorf("missing key should pass through, got %d", rec.Code)
	}
	rec := probe(router, "letmein")
	if rec.Code != http.StatusOK {
		t.Fatalf("valid key: status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != `{"admin":true}` {
		t.Errorf("valid key should mark the request admin: %s", rec.Body.String())
	}
}
