package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/app"
	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/metrics"
	"github.com/Olprog59/go-prodtrack/internal/repository"
	"github.com/Olprog59/go-prodtrack/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@usine.fr"
	adminPassword = "Admin#2025pass"
	lineEmail     = "chef.l1@usine.fr"
	linePassword  = "Ligne#2025pass"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "development",
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second},
		Database:    config.DatabaseConfig{Type: "sqlite", DSN: ":memory:"},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-must-be-at-least-32-characters-long-for-security",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 24 * time.Hour,
			CookiePath:           "/",
		},
		Security: config.SecurityConfig{
			BcryptCost:        bcrypt.MinCost,
			MaxFailedAttempts: 5,
			LockoutDuration:   15 * time.Minute,
		},
		Production: config.ProductionConfig{DeltaTolerance: 0, MaxHeuresJour: 8},
		Bootstrap: config.BootstrapConfig{
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
			AdminNom:      "Admin",
		},
	}
}

// testServer is the full HTTP stack over an in-memory database.
type testServer struct {
	t         *testing.T
	container *app.Container
	handler   http.Handler
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	reg := prometheus.NewRegistry()
	container := app.NewContainerWithDB(cfg, repository.NewTestDB(t), metrics.NewMetrics(reg))
	container.Registry = reg

	ctx := context.Background()
	require.NoError(t, container.UserSvc.EnsureBootstrapAdmin(ctx, cfg.Bootstrap))
	_, err := container.UserSvc.CreateUser(ctx, service.CreateUserInput{
		Email:    lineEmail,
		Nom:      "Martin",
		Prenom:   "Léa",
		Password: linePassword,
		Role:     domain.RoleUser,
	})
	require.NoError(t, err)

	mw := NewMiddleware(cfg, container.Metrics, container.UserRepo, container.ActivitySvc)
	t.Cleanup(mw.Stop)

	return &testServer{t: t, container: container, handler: NewMux(NewHandler(container), mw)}
}

// session carries the cookies of a logged in browser.
type session struct {
	cookies []*http.Cookie
	csrf    string
}

func (ts *testServer) do(sess *session, method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	return ts.serve(sess, httptest.NewRequest(method, path, &buf))
}

// doRaw sends body unencoded, for malformed payloads.
func (ts *testServer) doRaw(sess *session, method, path, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.serve(sess, httptest.NewRequest(method, path, strings.NewReader(body)))
}

// doBearer authenticates with an Authorization header instead of cookies.
func (ts *testServer) doBearer(token, method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", bearerPrefix+token)
	return ts.serve(nil, req)
}

func (ts *testServer) serve(sess *session, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "prodtrack-test")
	if sess != nil {
		for _, c := range sess.cookies {
			req.AddCookie(c)
		}
		if sess.csrf != "" {
			req.Header.Set(csrfTokenHeader, sess.csrf)
		}
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(email, password string) *session {
	ts.t.Helper()
	rec := ts.do(nil, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	sess := &session{cookies: rec.Result().Cookies()}
	for _, c := range sess.cookies {
		if c.Name == csrfTokenCookie {
			sess.csrf = c.Value
		}
	}
	require.NotEmpty(ts.t, sess.csrf)
	return sess
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// seedReferentiel creates the week S02-2025 (6 to 12 January) and product L1/REF-A.
func (ts *testServer) seedReferentiel(admin *session) {
	ts.t.Helper()
	rec := ts.do(admin, http.MethodPost, "/api/semaines", map[string]string{
		"nom":       "S02-2025",
		"dateDebut": "2025-01-06",
		"dateFin":   "2025-01-12",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(admin, http.MethodPost, "/api/produits", map[string]string{
		"ligne":     "L1",
		"reference": "REF-A",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func planBody(qte int64) map[string]any {
	return map[string]any{
		"semaine":            "S02-2025",
		"jour":               "lundi",
		"ligne":              "L1",
		"reference":          "REF-A",
		"of":                 "OF-1001",
		"qtePlanifiee":       qte,
		"nbOperateurs":       3,
		"nbHeuresPlanifiees": 7.5,
	}
}
