package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tixgate/event-ticketing-backend/internal/adapters/postgres"
	redisadapter "github.com/tixgate/event-ticketing-backend/internal/adapters/redis"
	"github.com/tixgate/event-ticketing-backend/internal/config"
	httphandler "github.com/tixgate/event-ticketing-backend/internal/http"
	"github.com/tixgate/event-ticketing-backend/internal/idempotency"
	"github.com/tixgate/event-ticketing-backend/internal/observability"
	"github.com/tixgate/event-ticketing-backend/internal/rateLimit"
	"github.com/tixgate/event-ticketing-backend/internal/ticketing"
)

func TestIntegration_RegisterPurchaseConfirm(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "tix",
				"POSTGRES_PASSWORD": "tix",
				"POSTGRES_DB":       "tix",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer pgContainer.Terminate(ctx)

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	pgHost, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatal(err)
	}
	redisHost, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		PostgresDSN:    "postgres://tix:tix@" + pgHost + ":" + pgPort.Port() + "/tix?sslmode=disable",
		RedisAddr:      redisHost + ":" + redisPort.Port(),
		JWTSecret:      "integration-test-secret",
		AccessTokenTTL: time.Hour,
		UploadDir:      t.TempDir(),
		EventCacheTTL:  time.Minute,
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	repo := postgres.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	logger := observability.NewLogger()
	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	redisIdemp := redisadapter.NewIdempotency(redisClient)
	idemp := idempotency.NewIdempotency(redisIdemp, time.Hour)
	rl := rateLimit.NewRateLimiter(redisCache)

	service := ticketing.NewService(repo, logger, nil, nil)
	handlers := httphandler.NewHandlers(cfg, logger, service, repo, redisCache, idemp)
	srv := httptest.NewServer(httphandler.SetupRouter(handlers, logger, rl))
	defer srv.Close()

	// Register an organizer and a buyer.
	organizerToken := registerAndLogin(t, srv.URL, "org@example.com", "ORGANIZER")
	buyerToken := registerAndLogin(t, srv.URL, "buyer@example.com", "USER")

	// Organizer builds the catalog.
	categoryID := postJSON(t, srv.URL+"/v1/categories", organizerToken, "",
		map[string]interface{}{"name": "concerts"}, http.StatusCreated)["id"].(string)
	locationID := postJSON(t, srv.URL+"/v1/locations", organizerToken, "",
		map[string]interface{}{"name": "arena"}, http.StatusCreated)["id"].(string)

	eventResp := postJSON(t, srv.URL+"/v1/events", organizerToken, "", map[string]interface{}{
		"name":           "big show",
		"type":           "PAID",
		"price":          100,
		"start_date":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"available_seat": 10,
		"category_id":    categoryID,
		"location_id":    locationID,
	}, http.StatusCreated)
	eventID := eventResp["id"].(string)

	postJSON(t, srv.URL+"/v1/promotions", organizerToken, "", map[string]interface{}{
		"event_id":      eventID,
		"name":          "launch",
		"referral_code": "LAUNCH",
		"discount":      20,
		"type":          "DISCOUNT",
		"usage_limit":   10,
	}, http.StatusCreated)

	// A buyer cannot create events.
	req := newJSONRequest(t, "POST", srv.URL+"/v1/events", buyerToken, "", map[string]interface{}{"name": "nope"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer event creation, got %d", resp.StatusCode)
	}

	// Purchase with an idempotency key, then replay it.
	idempKey := uuid.New().String()
	purchase := postJSON(t, srv.URL+"/v1/purchases", buyerToken, idempKey, map[string]interface{}{
		"event_id":   eventID,
		"seat_count": 2,
		"promo_code": "LAUNCH",
	}, http.StatusCreated)
	if purchase["total_amount"].(float64) != 160 {
		t.Errorf("expected total 160, got %v", purchase["total_amount"])
	}
	txnID := purchase["transaction_id"].(string)

	replay := postJSON(t, srv.URL+"/v1/purchases", buyerToken, idempKey, map[string]interface{}{
		"event_id":   eventID,
		"seat_count": 2,
		"promo_code": "LAUNCH",
	}, http.StatusCreated)
	if replay["transaction_id"].(string) != txnID {
		t.Errorf("expected replayed transaction %s, got %v", txnID, replay["transaction_id"])
	}

	// Seats were only decremented once.
	event := getJSON(t, srv.URL+"/v1/events/"+eventID, "", http.StatusOK)
	if event["available_seat"].(float64) != 8 {
		t.Errorf("expected 8 seats left, got %v", event["available_seat"])
	}

	// Upload payment proof and let the organizer confirm.
	uploadProof(t, srv.URL+"/v1/transactions/"+txnID+"/proof", buyerToken)

	confirm := postJSON(t, srv.URL+"/v1/transactions/"+txnID+"/confirm", organizerToken, "", nil, http.StatusOK)
	if confirm["payment_status"].(string) != "COMPLETED" {
		t.Errorf("expected COMPLETED, got %v", confirm["payment_status"])
	}

	txn := getJSON(t, srv.URL+"/v1/transactions/"+txnID, buyerToken, http.StatusOK)
	if txn["payment_status"].(string) != "COMPLETED" {
		t.Errorf("expected stored COMPLETED, got %v", txn["payment_status"])
	}
}

func registerAndLogin(t *testing.T, baseURL, email, role string) string {
	t.Helper()

	reg := postJSON(t, baseURL+"/v1/auth/register", "", "", map[string]interface{}{
		"email":    email,
		"name":     "tester",
		"password": "s3cret-pass",
		"role":     role,
	}, http.StatusCreated)
	if reg["referral_code"].(string) == "" {
		t.Fatal("expected a referral code at registration")
	}

	login := postJSON(t, baseURL+"/v1/auth/login", "", "", map[string]interface{}{
		"email":    email,
		"password": "s3cret-pass",
	}, http.StatusOK)
	return login["access_token"].(string)
}

func newJSONRequest(t *testing.T, method, url, token, idempKey string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if idempKey != "" {
		req.Header.Set("Idempotency-Key", idempKey)
	}
	return req
}

func postJSON(t *testing.T, url, token, idempKey string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	resp, err := http.DefaultClient.Do(newJSONRequest(t, "POST", url, token, idempKey, body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST %s: expected %d, got %d: %s", url, wantStatus, resp.StatusCode, data)
	}
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return out
}

func getJSON(t *testing.T, url, token string, wantStatus int) map[string]interface{} {
	t.Helper()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: expected %d, got %d: %s", url, wantStatus, resp.StatusCode, data)
	}
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return out
}

func uploadProof(t *testing.T, url, token string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("proof", "proof.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("fake png bytes"))
	mw.Close()

	req, err := http.NewRequest("POST", url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("proof upload: expected 200, got %d: %s", resp.StatusCode, data)
	}
}
