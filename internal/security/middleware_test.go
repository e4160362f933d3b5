package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func newValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(InputValidationMiddleware())
	router.GET("/articles", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/articles/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestInputValidationAcceptsCleanParams(t *testing.T) {
	router := newValidationRouter()

	w := get(router, "/articles?page=2&keyword=go&category=Technology&source=BBC")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestInputValidationRejectsNonNumericPage(t *testing.T) {
	router := newValidationRouter()

	w := get(router, "/articles?page=two")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestInputValidationRejectsOversizedKeyword(t *testing.T) {
	router := newValidationRouter()

	keyword := make([]byte, 201)
	for i := range keyword {
		keyword[i] = 'a'
	}

	w := get(router, "/articles?keyword="+string(keyword))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestInputValidationRejectsNonNumericID(t *testing.T) {
	router := newValidationRouter()

	w := get(router, "/articles/abc")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}

	w = get(router, "/articles/42")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for numeric id, got %d", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 2)

	l := limiter.GetLimiter("192.168.1.1")
	if !l.Allow() || !l.Allow() {
		t.Error("Expected burst of 2 to be allowed")
	}
	if l.Allow() {
		t.Error("Expected third immediate request to be limited")
	}

	// A different IP gets its own limiter
	other := limiter.GetLimiter("192.168.1.2")
	if !other.Allow() {
		t.Error("Expected a fresh limiter for a new IP")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(NewRateLimiter(rate.Limit(1), 1)))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := get(router, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected first request allowed, got %d", w.Code)
	}

	w = get(router, "/")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after burst exhausted, got %d", w.Code)
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestSizeMiddleware(10))
	router.POST("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", nil)
	req.ContentLength = 100
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", w.Code)
	}
}

func TestIsValidNumber(t *testing.T) {
	valid := []string{"1", "42", "0", "123456789"}
	for _, s := range valid {
		if !isValidNumber(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}

	invalid := []string{"", "-1", "1.5", "abc", "1a", " 1"}
	for _, s := range invalid {
		if isValidNumber(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestGetClientIPPrefersForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded single", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			router := gin.New()
			router.GET("/", func(c *gin.Context) {
				got = getClientIP(c)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			router.ServeHTTP(w, req)

			if got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}
