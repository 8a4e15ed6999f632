package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/fueldelivery/internal/app"
	"github.com/polkiloo/fueldelivery/internal/config"
	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/metrics"
	pkgAuth "github.com/polkiloo/fueldelivery/internal/pkg/auth"
	"github.com/polkiloo/fueldelivery/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/fueldelivery/internal/test"
	"github.com/polkiloo/fueldelivery/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerEnv struct {
	users         *testhelpers.UserRepositoryStub
	orders        *testhelpers.OrderRepositoryStub
	notifications *testhelpers.NotificationRepositoryStub
	health        *testhelpers.HealthCheckerStub
	facade        *app.DeliveryFacade

	admin      *model.User
	supervisor *model.User
	monitor    *model.User
	customer   *model.User
	driver     *model.User
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	env := &handlerEnv{
		users:         testhelpers.NewUserRepositoryStub(),
		orders:        testhelpers.NewOrderRepositoryStub(),
		notifications: testhelpers.NewNotificationRepositoryStub(),
		health:        &testhelpers.HealthCheckerStub{},
	}
	logger := testhelpers.DiscardLogger()
	m := metrics.New()

	emitter := usecase.NewNotificationEmitter(env.notifications, m, logger)
	auth := usecase.NewAuthUseCase(env.users, testhelpers.HasherStub{}, testhelpers.NumberedStrategy(), logger)
	users := usecase.NewUserUseCase(env.users, testhelpers.HasherStub{}, emitter, logger)
	orders := usecase.NewOrderUseCase(env.orders, env.users, emitter, m, logger, &config.Config{DriverCapacity: 1})
	inbox := usecase.NewNotificationUseCase(env.notifications, env.users, m, logger)
	env.facade = app.NewDeliveryFacade(auth, users, orders, inbox, env.health)

	env.admin = env.seed("0500000001", "Admin", model.RoleAdmin, true)
	env.supervisor = env.seed("0500000002", "Supervisor", model.RoleApprovalSupervisor, true)
	env.monitor = env.seed("0500000003", "Monitor", model.RoleMonitoring, true)
	env.customer = env.seed("0500000004", "Customer", model.RoleCustomer, true)
	env.driver = env.seed("0500000005", "Driver", model.RoleDriver, true)
	return env
}

func (e *handlerEnv) seed(phone, name string, role model.Role, verified bool) *model.User {
	return e.users.Add(model.User{
		Phone:        phone,
		Name:         name,
		Role:         role,
		PasswordHash: "hash:password",
		IsActive:     true,
		IsVerified:   verified,
	})
}

func actorOf(u *model.User) *model.Actor {
	return &model.Actor{ID: u.ID, Role: u.Role}
}

// performRequest serves a single request through handler mounted on route.
// A non-nil actor is stored in the context the way AuthRequired does.
func performRequest(t *testing.T, method, route, target string, handler gin.HandlerFunc, actor *model.Actor, body any) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ActorContextKey, *actor)
		}
		handler(c)
	})

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func requireFailure(t *testing.T, w *httptest.ResponseRecorder, status int) map[string]any {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decodeBody(t, w)
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["error"])
	return body
}

func requireSuccess(t *testing.T, w *httptest.ResponseRecorder, status int) map[string]any {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])
	return body
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: phone", domainErrors.ErrValidation), http.StatusBadRequest},
		{domainErrors.ErrInvalidTransition, http.StatusBadRequest},
		{domainErrors.ErrInvalidState, http.StatusBadRequest},
		{domainErrors.ErrDriverUnavailable, http.StatusBadRequest},
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{pkgAuth.ErrInvalidToken, http.StatusUnauthorized},
		{domainErrors.ErrForbidden, http.StatusForbidden},
		{domainErrors.ErrInactiveAccount, http.StatusForbidden},
		{fmt.Errorf("order 7: %w", domainErrors.ErrNotFound), http.StatusNotFound},
		{domainErrors.ErrConflict, http.StatusConflict},
		{domainErrors.ErrAlreadyExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fail(c, errors.New("pq: connection reset"))

	body := requireFailure(t, w, http.StatusInternalServerError)
	require.Equal(t, internalErrorMessage, body["error"])
	require.Len(t, c.Errors, 1)
}

func TestFailKeepsDomainMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fail(c, fmt.Errorf("%w: price must be positive", domainErrors.ErrValidation))

	body := requireFailure(t, w, http.StatusBadRequest)
	require.Equal(t, "validation failed: price must be positive", body["error"])
	require.Empty(t, c.Errors)
}

func TestRespondMergesPayload(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respond(c, http.StatusCreated, "done", gin.H{"value": 3})

	body := requireSuccess(t, w, http.StatusCreated)
	require.Equal(t, "done", body["message"])
	require.EqualValues(t, 3, body["value"])
}

func TestPathIDRejectsInvalidValues(t *testing.T) {
	handler := func(c *gin.Context) {
		if id, ok := pathID(c, "id"); ok {
			respond(c, http.StatusOK, "", gin.H{"id": id})
		}
	}
	for _, raw := range []string{"abc", "0", "-4"} {
		w := performRequest(t, http.MethodGet, "/items/:id", "/items/"+raw, handler, nil, nil)
		body := requireFailure(t, w, http.StatusBadRequest)
		require.Equal(t, "invalid id", body["error"])
	}

	w := performRequest(t, http.MethodGet, "/items/:id", "/items/12", handler, nil, nil)
	body := requireSuccess(t, w, http.StatusOK)
	require.EqualValues(t, 12, body["id"])
}

func TestQueryHelpers(t *testing.T) {
	handler := func(c *gin.Context) {
		id, ok := queryInt64(c, "driverId")
		if !ok {
			return
		}
		flag, ok := queryBool(c, "unread")
		if !ok {
			return
		}
		page := queryPage(c)
		respond(c, http.StatusOK, "", gin.H{"driver": id, "unread": flag, "page": page.Number, "size": page.Size})
	}

	w := performRequest(t, http.MethodGet, "/q", "/q?driverId=x", handler, nil, nil)
	requireFailure(t, w, http.StatusBadRequest)

	w = performRequest(t, http.MethodGet, "/q", "/q?unread=maybe", handler, nil, nil)
	requireFailure(t, w, http.StatusBadRequest)

	w = performRequest(t, http.MethodGet, "/q", "/q?driverId=5&unread=true&page=2&limit=500", handler, nil, nil)
	body := requireSuccess(t, w, http.StatusOK)
	require.EqualValues(t, 5, body["driver"])
	require.Equal(t, true, body["unread"])
	require.EqualValues(t, 2, body["page"])
	require.EqualValues(t, 100, body["size"])

	w = performRequest(t, http.MethodGet, "/q", "/q", handler, nil, nil)
	body = requireSuccess(t, w, http.StatusOK)
	require.Nil(t, body["driver"])
	require.EqualValues(t, 1, body["page"])
	require.EqualValues(t, 10, body["size"])
}

func TestHealth(t *testing.T) {
	env := newHandlerEnv(t)

	w := performRequest(t, http.MethodGet, "/health", "/health", Health(env.facade), nil, nil)
	body := requireSuccess(t, w, http.StatusOK)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, 1, env.health.Calls())

	env.health.Err = errors.New("dial tcp: refused")
	w = performRequest(t, http.MethodGet, "/health", "/health", Health(env.facade), nil, nil)
	body = requireFailure(t, w, http.StatusServiceUnavailable)
	require.Equal(t, "database unavailable", body["error"])
}

type deadlineChecker struct {
	sawDeadline bool
}

func (d *deadlineChecker) Health(ctx context.Context) error {
	_, d.sawDeadline = ctx.Deadline()
	return nil
}

func TestHealthAppliesTimeout(t *testing.T) {
	checker := &deadlineChecker{}
	w := performRequest(t, http.MethodGet, "/health", "/health", Health(checker), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, checker.sawDeadline)
}
