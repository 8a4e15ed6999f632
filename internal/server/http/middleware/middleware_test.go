package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/metrics"
	pkgAuth "github.com/polkiloo/fueldelivery/internal/pkg/auth"
	testhelpers "github.com/polkiloo/fueldelivery/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAuthRequired(t *testing.T) {
	cases := []struct {
		name     string
		resolver testhelpers.ActorResolverStub
		token    string
		want     int
	}{
		{name: "missing token", resolver: testhelpers.ActorResolverStub{}, want: http.StatusUnauthorized},
		{name: "invalid token", resolver: testhelpers.ActorResolverStub{Err: pkgAuth.ErrInvalidToken}, token: "t", want: http.StatusUnauthorized},
		{name: "parse failure", resolver: testhelpers.ActorResolverStub{Err: context.DeadlineExceeded}, token: "t", want: http.StatusInternalServerError},
		{name: "deleted user", resolver: testhelpers.ActorResolverStub{ID: 1, ActorErr: pkgAuth.ErrInvalidToken}, token: "t", want: http.StatusUnauthorized},
		{name: "inactive user", resolver: testhelpers.ActorResolverStub{ID: 1, ActorErr: domainErrors.ErrInactiveAccount}, token: "t", want: http.StatusForbidden},
		{name: "lookup failure", resolver: testhelpers.ActorResolverStub{ID: 1, ActorErr: context.Canceled}, token: "t", want: http.StatusInternalServerError},
		{name: "ok", resolver: testhelpers.ActorResolverStub{ID: 42, Role: model.RoleDriver}, token: "t", want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stored model.Actor
			router := gin.New()
			router.Use(AuthRequired(tc.resolver))
			router.GET("/", func(c *gin.Context) {
				stored, _ = CurrentActor(c)
				c.Status(http.StatusOK)
			})

			resp := serve(router, tc.token)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
			if tc.want != http.StatusOK {
				var body map[string]any
				if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
					t.Fatalf("expected JSON envelope: %v", err)
				}
				if body["success"] != false || body["error"] == "" {
					t.Fatalf("unexpected envelope %v", body)
				}
				return
			}
			if stored != (model.Actor{ID: 42, Role: model.RoleDriver}) {
				t.Fatalf("unexpected actor %+v", stored)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	build := func(role model.Role) *gin.Engine {
		router := gin.New()
		router.Use(AuthRequired(testhelpers.ActorResolverStub{ID: 1, Role: role}))
		router.Use(RequireRoles(model.RoleAdmin, model.RoleMonitoring))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	if resp := serve(build(model.RoleMonitoring), "t"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for monitoring, got %d", resp.Code)
	}
	if resp := serve(build(model.RoleCustomer), "t"); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", resp.Code)
	}

	router := gin.New()
	router.Use(RequireRoles(model.RoleAdmin))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	if resp := serve(router, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without actor, got %d", resp.Code)
	}
}

func TestSetAuthCookie(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	SetAuthCookie(c, "token")
	if got := recorder.Header().Get("Authorization"); got != "Bearer token" {
		t.Fatalf("expected auth header, got %q", got)
	}
	result := recorder.Result()
	t.Cleanup(func() {
		_ = result.Body.Close()
	})
	cookies := result.Cookies()
	if len(cookies) == 0 || cookies[0].Value != "token" {
		t.Fatalf("expected cookie with token, got %+v", cookies)
	}
}

func TestExtractToken(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	if token := extractToken(c); token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
	c.Request.Header.Set("Authorization", "Bearer abc")
	if token := extractToken(c); token != "abc" {
		t.Fatalf("expected token from header, got %q", token)
	}
	c.Request.Header.Del("Authorization")
	c.Request.AddCookie(&http.Cookie{Name: authCookieName, Value: "cookie"})
	if token := extractToken(c); token != "cookie" {
		t.Fatalf("expected token from cookie, got %q", token)
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = CurrentRequestID(c)
		c.Status(http.StatusOK)
	})

	resp := serve(router, "")
	generated := resp.Header().Get(RequestIDHeader)
	if generated == "" || generated != seen {
		t.Fatalf("expected generated id to be echoed, header %q context %q", generated, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected incoming id to be kept, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get(RequestIDHeader); len(got) > maxRequestIDLength {
		t.Fatalf("oversized id must be replaced, got %q", got)
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("payload"))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest())
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(buf.Bytes())))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body != "payload" {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader([]byte("plain"))))
	resp = httptest.NewRecorder()
	body = ""
	router.ServeHTTP(resp, req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt gzip, got %d", resp.Code)
	}
}

func TestDecompressRequestRejectsUnknownEncoding(t *testing.T) {
	router := gin.New()
	router.Use(DecompressRequest())
	router.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("data"))
	req.Header.Set("Content-Encoding", "br")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.Code)
	}
}

func TestDecompressRequestLimitsInflatedSize(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(bytes.Repeat([]byte("a"), MaxDecompressedBody+1))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest())
	var readErr error
	router.POST("/", func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Encoding", "x-gzip")
	router.ServeHTTP(httptest.NewRecorder(), req)
	var tooLarge *http.MaxBytesError
	if !errors.As(readErr, &tooLarge) || tooLarge.Limit != MaxDecompressedBody {
		t.Fatalf("expected max bytes error, got %v", readErr)
	}
}

func TestRequestLogger(t *testing.T) {
	var logs testhelpers.LogBuffer
	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger(logs.Logger()))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(io.ErrUnexpectedEOF)
		c.Status(http.StatusInternalServerError)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log records, got %d: %s", len(lines), logs.String())
	}
	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid log record: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("invalid log record: %v", err)
	}
	if first["level"] != slog.LevelInfo.String() || first["request_id"] == nil {
		t.Fatalf("unexpected first record %v", first)
	}
	if second["level"] != slog.LevelError.String() || !strings.Contains(second["error"].(string), "unexpected EOF") {
		t.Fatalf("unexpected second record %v", second)
	}
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/2", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if v := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/orders/:id", "200")); v != 2 {
		t.Fatalf("expected 2 requests on route template, got %v", v)
	}
	if v := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")); v != 1 {
		t.Fatalf("expected 1 unmatched request, got %v", v)
	}
}
