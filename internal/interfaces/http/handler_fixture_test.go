package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/local"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/foodstock-api/internal/interfaces/http"
	"github.com/jhoicas/foodstock-api/pkg/format"
	pkgjwt "github.com/jhoicas/foodstock-api/pkg/jwt"
	"github.com/jhoicas/foodstock-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba: router completo sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	memory.SeedDemo(store, testCompanyID)

	log := logger.Nop()
	tx := memory.NewTxRunner(store)
	locker := local.NewProductLocker(2 * time.Second)
	register := inventory.NewRegisterMovementUseCase(
		tx, store.Products(), store.Suppliers(), locker,
		inventory.NewAggregateUpdater(inventory.AggregateModeMovements), false, log,
	).WithIdempotency(local.NewIdempotencyStore(time.Hour))

	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:          "foodstock-test",
		RegisterMovement: register,
		MovementQueries:  inventory.NewMovementQueryUseCase(store.Movements()),
		Replenishment:    inventory.NewReplenishmentUseCase(store.Products()),
		Batches:          inventory.NewBatchUseCase(store.Batches(), store.Products(), store.Suppliers(), log),
		Reconcile:        inventory.NewReconcileUseCase(tx, store.Products(), store.Batches(), locker, log),
		Formatter:        format.New("es-CO"),
		Logger:           log,
		JWTSecret:        testJWTSecret,
		JWTIssuer:        testIssuer,
	})
	return &testServer{app: app, store: store}
}

type call struct {
	method  string
	path    string
	body    any
	role    string // vacío = sin token
	headers map[string]string
}

func (s *testServer) do(t *testing.T, c call) (int, []byte) {
	t.Helper()
	var r io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, r)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.role != "" {
		tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, c.role, testIssuer, testExpMin)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

// postMovement registra un movimiento como staff y exige 201.
func (s *testServer) postMovement(t *testing.T, body map[string]any) []byte {
	t.Helper()
	status, raw := s.do(t, call{method: http.MethodPost, path: "/api/inventory/movements", body: body, role: "staff"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	return raw
}

func (s *testServer) movementCount(t *testing.T) int {
	t.Helper()
	list, err := s.store.Movements().List(context.Background(), repository.MovementFilter{CompanyID: testCompanyID})
	require.NoError(t, err)
	return len(list)
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}
