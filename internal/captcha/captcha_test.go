package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/findteam/identity-service/pkg/util"
)

type stubVerifier struct {
	ok    bool
	err   error
	calls int
}

func (s *stubVerifier) Verify(context.Context, string, string) (bool, error) {
	s.calls++
	return s.ok, s.err
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newApp(verifier Verifier, guard *ReplayGuard) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Post("/gate", Middleware(verifier, guard, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func post(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/gate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestMiddleware_Passes(t *testing.T) {
	verifier := &stubVerifier{ok: true}
	resp := post(t, newApp(verifier, nil), `{"reCaptchaResponse":"token-1"}`)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, verifier.calls)
}

func TestMiddleware_Rejects(t *testing.T) {
	cases := map[string]struct {
		verifier *stubVerifier
		body     string
	}{
		"missing response": {verifier: &stubVerifier{ok: true}, body: `{}`},
		"provider says no": {verifier: &stubVerifier{ok: false}, body: `{"reCaptchaResponse":"t"}`},
		"provider error":   {verifier: &stubVerifier{err: errors.New("timeout")}, body: `{"reCaptchaResponse":"t"}`},
		"malformed body":   {verifier: &stubVerifier{ok: true}, body: `{`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := post(t, newApp(tc.verifier, nil), tc.body)

			assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		})
	}
}

func TestMiddleware_ReplayedResponse(t *testing.T) {
	_, client := newRedis(t)
	verifier := &stubVerifier{ok: true}
	app := newApp(verifier, NewReplayGuard(client, time.Minute))

	first := post(t, app, `{"reCaptchaResponse":"token-1"}`)
	second := post(t, app, `{"reCaptchaResponse":"token-1"}`)

	assert.Equal(t, http.StatusNoContent, first.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, 1, verifier.calls)
}

func TestMiddleware_GuardUnavailableFailsOpen(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()
	verifier := &stubVerifier{ok: true}

	resp := post(t, newApp(verifier, NewReplayGuard(client, time.Minute)), `{"reCaptchaResponse":"token-1"}`)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestReplayGuard_Expires(t *testing.T) {
	mr, client := newRedis(t)
	guard := NewReplayGuard(client, time.Minute)
	ctx := context.Background()

	fresh, err := guard.FirstUse(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = guard.FirstUse(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, fresh)

	mr.FastForward(2 * time.Minute)

	fresh, err = guard.FirstUse(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestRecaptchaVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		ok := r.PostForm.Get("secret") == "s3cret" && r.PostForm.Get("response") == "good"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(siteVerifyResponse{Success: ok})
	}))
	defer srv.Close()

	v := NewRecaptchaVerifier("s3cret", srv.URL, time.Second)

	ok, err := v.Verify(context.Background(), "good", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(context.Background(), "bad", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecaptchaVerifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRecaptchaVerifier("s3cret", srv.URL, time.Second).Verify(context.Background(), "good", "")

	assert.Error(t, err)
}
