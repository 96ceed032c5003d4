package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/calories-tracker/calories_tracker/internal/config"
	"github.com/calories-tracker/calories_tracker/internal/logging"
)

const testModel = `{"features":["Age","Height","Weight","Duration","Heart_Rate","Body_Temp"],
"intercept":10,"coefficients":[0,0,0,0,0,0]}`

const validForm = `{"name":"Ann","gender":"Female","activity_level":"Moderate",
"age":"30","height":"170","weight":"65","duration":"20","heart_rate":"100","body_temp":"40"}`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	if err := os.WriteFile(modelPath, []byte(testModel), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return config.Config{
		AppName:          "calories-tracker-test",
		AppEnv:           "test",
		DataDir:          dir,
		CredentialsFile:  filepath.Join(dir, "credentials.csv"),
		RecordsFile:      filepath.Join(dir, "records.csv"),
		PasswordHasher:   config.HasherSHA256,
		ModelPath:        modelPath,
		SquarePrediction: true,
		LoginAttempts:    5,
		IdempotencyTTL:   time.Minute,
		SessionTTL:       time.Hour,
	}
}

func newTestServer(t *testing.T, cfg config.Config, cache *redis.Client) *fiber.App {
	t.Helper()
	srv, err := New(cfg, nil, cache, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv.App()
}

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (c *client) do(method, path, body string, headers ...string) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := c.app.Test(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		c.t.Fatalf("%s %s: decode body: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func (c *client) login(email, password string) {
	c.t.Helper()
	status, body := c.do(fiber.MethodPost, "/api/v1/auth/login", `{"email":"`+email+`","password":"`+password+`"}`)
	if status != http.StatusOK {
		c.t.Fatalf("login: expected 200, got %d %v", status, body)
	}
	c.token, _ = body["session_token"].(string)
}

func TestSubmissionFlow(t *testing.T) {
	cfg := testConfig(t)
	c := &client{t: t, app: newTestServer(t, cfg, nil)}

	if status, _ := c.do(fiber.MethodPost, "/api/v1/submissions", validForm); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", status)
	}

	creds := `{"email":"ann@x.com","password":"pw"}`
	if status, body := c.do(fiber.MethodPost, "/api/v1/auth/register", creds); status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %v", status, body)
	}
	if status, _ := c.do(fiber.MethodPost, "/api/v1/auth/register", creds); status != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", status)
	}
	if status, _ := c.do(fiber.MethodPost, "/api/v1/auth/login", `{"email":"ann@x.com","password":"nope"}`); status != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", status)
	}

	c.login("ann@x.com", "pw")

	status, body := c.do(fiber.MethodPost, "/api/v1/submissions", validForm)
	if status != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d %v", status, body)
	}
	if body["display"] != "100.00 kcal" || body["saved"] != true {
		t.Fatalf("unexpected submit body %v", body)
	}

	status, body = c.do(fiber.MethodPost, "/api/v1/submissions", strings.Replace(validForm, `"Ann"`, `"Changed"`, 1))
	if status != http.StatusOK || body["saved"] != false {
		t.Fatalf("second submit: expected 200 unsaved, got %d %v", status, body)
	}

	status, body = c.do(fiber.MethodPost, "/api/v1/estimate", strings.Replace(validForm, `"age":"30"`, `"age":"abc"`, 1))
	if status != http.StatusUnprocessableEntity || body["error"] != "Please enter valid numeric values in all fields." {
		t.Fatalf("invalid estimate: expected 422, got %d %v", status, body)
	}

	status, body = c.do(fiber.MethodGet, "/api/v1/records", "")
	if status != http.StatusOK {
		t.Fatalf("records: expected 200, got %d", status)
	}
	recs, _ := body["records"].([]any)
	if len(recs) != 1 {
		t.Fatalf("expected one stored record, got %v", body["records"])
	}
	if rec, _ := recs[0].(map[string]any); rec["name"] != "Ann" {
		t.Fatalf("expected first record to win, got %v", rec)
	}

	if status, _ := c.do(fiber.MethodPost, "/api/v1/auth/logout", ""); status != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", status)
	}
	if status, body := c.do(fiber.MethodGet, "/api/v1/me", ""); status != http.StatusUnauthorized || body["error"] == nil {
		t.Fatalf("me after logout: expected 401 json error, got %d %v", status, body)
	}

	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		t.Fatalf("read credentials: %v", err)
	}
	if strings.Contains(string(data), ",pw") {
		t.Fatalf("plaintext password stored: %s", data)
	}
}

func TestIdempotentSubmissionWithRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	cfg := testConfig(t)
	cfg.AppEnv = "production"
	c := &client{t: t, app: newTestServer(t, cfg, cache)}

	c.do(fiber.MethodPost, "/api/v1/auth/register", `{"email":"bo@x.com","password":"pw"}`)
	c.login("bo@x.com", "pw")

	first, _ := c.do(fiber.MethodPost, "/api/v1/submissions", validForm, "Idempotency-Key", "k1")
	replay, body := c.do(fiber.MethodPost, "/api/v1/submissions", validForm, "Idempotency-Key", "k1")
	if first != http.StatusCreated || replay != http.StatusCreated || body["saved"] != true {
		t.Fatalf("expected replayed 201, got %d then %d %v", first, replay, body)
	}
}

func TestProductionRequiresRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.AppEnv = "production"
	if _, err := New(cfg, nil, nil, logging.Discard()); err == nil {
		t.Fatalf("expected error without redis outside dev")
	}
}

func TestHealthz(t *testing.T) {
	c := &client{t: t, app: newTestServer(t, testConfig(t), nil)}
	status, body := c.do(fiber.MethodGet, "/healthz", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
	checks, _ := body["status"].(map[string]any)
	if checks["storage"] != "ok" || checks["redis"] != "disabled" {
		t.Fatalf("unexpected health body %v", body)
	}
}
