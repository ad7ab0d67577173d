package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-middleware"

func init() {
	gin.SetMode(gin.TestMode)
}

func generateTestToken(claims jwt.MapClaims, secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(secret))
	return tokenString
}

func setupTestRouter(config *JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(JWTMiddleware(config))
	router.GET("/api/payments", func(c *gin.Context) {
		userID, _ := GetUserID(c)
		email, _ := GetEmail(c)
		role, _ := GetRole(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
			"email":   email,
			"role":    role,
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func doRequest(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	config := &JWTConfig{
		Secret:    testSecret,
		SkipPaths: []string{"/health"},
	}

	t.Run("valid token", func(t *testing.T) {
		router := setupTestRouter(config)
		token := generateTestToken(jwt.MapClaims{
			"user_id": "op-123",
			"email":   "manager@example.com",
			"role":    RoleManager,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		w := doRequest(router, http.MethodGet, "/api/payments", token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["user_id"] != "op-123" {
			t.Errorf("expected user_id op-123, got %s", body["user_id"])
		}
		if body["role"] != RoleManager {
			t.Errorf("expected role manager, got %s", body["role"])
		}
	})

	t.Run("sub claim is accepted", func(t *testing.T) {
		router := setupTestRouter(config)
		token := generateTestToken(jwt.MapClaims{
			"sub": "op-sub",
			"exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		w := doRequest(router, http.MethodGet, "/api/payments", token)
		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})

	t.Run("missing authorization header", func(t *testing.T) {
		w := doRequest(setupTestRouter(config), http.MethodGet, "/api/payments", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})

	t.Run("invalid header format", func(t *testing.T) {
		router := setupTestRouter(config)
		req := httptest.NewRequest(http.MethodGet, "/api/payments", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token := generateTestToken(jwt.MapClaims{
			"user_id": "op-123",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}, testSecret)

		w := doRequest(setupTestRouter(config), http.MethodGet, "/api/payments", token)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body.Error.Code != "TOKEN_EXPIRED" {
			t.Errorf("expected TOKEN_EXPIRED, got %s", body.Error.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := generateTestToken(jwt.MapClaims{
			"user_id": "op-123",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}, "another-secret")

		w := doRequest(setupTestRouter(config), http.MethodGet, "/api/payments", token)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		token := generateTestToken(jwt.MapClaims{
			"email": "x@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		w := doRequest(setupTestRouter(config), http.MethodGet, "/api/payments", token)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})

	t.Run("skip path", func(t *testing.T) {
		w := doRequest(setupTestRouter(config), http.MethodGet, "/health", "")
		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})
}

func TestJWTMiddleware_Issuer(t *testing.T) {
	config := &JWTConfig{Secret: testSecret, Issuer: "property-manager"}
	router := setupTestRouter(config)

	good := generateTestToken(jwt.MapClaims{
		"user_id": "op-1",
		"iss":     "property-manager",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)
	bad := generateTestToken(jwt.MapClaims{
		"user_id": "op-1",
		"iss":     "someone-else",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	if w := doRequest(router, http.MethodGet, "/api/payments", good); w.Code != http.StatusOK {
		t.Errorf("expected status %d for matching issuer, got %d", http.StatusOK, w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/payments", bad); w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d for wrong issuer, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRequireRoleForWrites(t *testing.T) {
	config := &JWTConfig{Secret: testSecret}
	router := gin.New()
	router.Use(JWTMiddleware(config), RequireRoleForWrites(RoleAdmin, RoleManager))
	router.GET("/api/tenants", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/tenants", func(c *gin.Context) { c.Status(http.StatusCreated) })

	tokenFor := func(role string) string {
		return generateTestToken(jwt.MapClaims{
			"user_id": "op-1",
			"role":    role,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}, testSecret)
	}

	tests := []struct {
		name     string
		method   string
		role     string
		expected int
	}{
		{"viewer can read", http.MethodGet, RoleViewer, http.StatusOK},
		{"viewer cannot write", http.MethodPost, RoleViewer, http.StatusForbidden},
		{"manager can write", http.MethodPost, RoleManager, http.StatusCreated},
		{"admin can write", http.MethodPost, RoleAdmin, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, "/api/tenants", tokenFor(tt.role))
			if w.Code != tt.expected {
				t.Errorf("expected status %d, got %d", tt.expected, w.Code)
			}
		})
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	router := gin.New()
	router.Use(RequireRole(RoleAdmin))
	router.POST("/api/alerts/scan", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(router, http.MethodPost, "/api/alerts/scan", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}
