package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimitMiddlewarePassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 客户端为空或规则无效时直接放行
	cases := []struct {
		name string
		mw   gin.HandlerFunc
	}{
		{"nil_client", RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 10}, KeyByIP)},
		{"zero_window", RateLimitMiddleware(nil, RateLimitRule{MaxRequests: 10}, KeyByIP)},
		{"zero_max", RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60}, KeyByIP)},
	}
	for _, tc := range cases {
		engine := gin.New()
		engine.Use(tc.mw)
		engine.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected pass-through, got %d", tc.name, w.Code)
		}
	}
}

func TestKeyByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("user_id", uint(42))
	if key := KeyByUser(c); key != "user:42" {
		t.Fatalf("key want user:42 got %s", key)
	}

	anon, _ := gin.CreateTestContext(httptest.NewRecorder())
	anon.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	anon.Request.RemoteAddr = "203.0.113.9:1234"
	if key := KeyByUser(anon); key != "203.0.113.9" {
		t.Fatalf("anonymous key should fall back to IP, got %s", key)
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		value interface{}
		want  int64
		ok    bool
	}{
		{int64(7), 7, true},
		{int(3), 3, true},
		{uint32(9), 9, true},
		{float64(5.9), 5, true},
		{"10", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := toInt64(tc.value)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("toInt64(%v) = (%d, %v), want (%d, %v)", tc.value, got, ok, tc.want, tc.ok)
		}
	}
}
