package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/app"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
	"backoffice/internal/infrastructure/auth"
	"backoffice/internal/infrastructure/http/v1/dto"
	"backoffice/internal/infrastructure/http/v1/handlers"
	"backoffice/internal/infrastructure/storage/memory"
	"backoffice/pkg/logger"
)

const (
	testSecret = "router-test-secret"
	testAPIKey = "printer-key"
)

type failingCheck struct{}

func (failingCheck) Ready(context.Context) error { return errors.New("down") }

type testAPI struct {
	t      *testing.T
	store  *memory.Store
	router http.Handler
}

func newTestAPI(t *testing.T, checks map[string]handlers.ReadinessChecker) *testAPI {
	t.Helper()

	store := memory.NewStore()
	validator, err := auth.NewJWTValidator(auth.JWTConfig{Secret: testSecret})
	require.NoError(t, err)
	hash, err := auth.HashAPIKey(testAPIKey)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Services:        app.NewServices(app.MemoryStorage(store), nil, app.Config{}),
		Logger:          logger.NewNop(),
		JWTValidator:    validator,
		APIKeyVerifier:  auth.NewAPIKeyVerifier(hash),
		AuditRecorder:   store.Audit(),
		ReadinessChecks: checks,
	})
	return &testAPI{t: t, store: store, router: router}
}

func (a *testAPI) token(userID id.ID, roles ...string) string {
	a.t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: userID.String(),
		Roles:  roles,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(a.t, err)
	return s
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func (a *testAPI) createUser(token, email string) id.ID {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/catalog/users", token, map[string]any{"email": email, "name": "Customer"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return id.MustParse(decode[dto.IDResponse](a.t, rec).ID)
}

func (a *testAPI) createOffer(token, sku string) id.ID {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/catalog/offers", token, map[string]any{
		"sku":                    sku,
		"brand":                  "Bosch",
		"manufacturerNumber":     "0 986 452 041",
		"priceRub":               "540.00",
		"superWholesalePriceRub": "480.00",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return id.MustParse(decode[dto.IDResponse](a.t, rec).ID)
}

func TestRouter_RequiresToken(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/api/v1/catalog/offers", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[errorBody](t, rec).Code)
}

func TestRouter_WaybillLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	manager := api.token(id.New(), appctx.RoleManager)

	customerID := api.createUser(manager, "buyer@example.com")
	offerID := api.createOffer(manager, "OF-1")

	rec := api.do(http.MethodPost, "/api/v1/document/waybills", manager, map[string]any{
		"customerId":  customerID.String(),
		"waybillType": "WAYBILL_IN",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	waybillID := decode[dto.IDResponse](t, rec).ID
	base := "/api/v1/document/waybills/" + waybillID

	rec = api.do(http.MethodPost, base+"/lines", manager, map[string]any{
		"offerId":  offerID.String(),
		"quantity": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	line := decode[dto.LineResponse](t, rec)
	assert.Equal(t, "Bosch", line.Brand)
	assert.Equal(t, "540", line.PriceRub.String())

	rec = api.do(http.MethodPost, base+"/commit", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	committed := decode[dto.WaybillResponse](t, rec)
	assert.False(t, committed.IsPending)
	assert.NotNil(t, committed.CommittedAt)
	assert.Equal(t, "5400", committed.Total.String())

	rec = api.do(http.MethodGet, "/api/v1/catalog/offers/"+offerID.String(), manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), decode[dto.OfferResponse](t, rec).Quantity)

	// A second commit changes nothing.
	rec = api.do(http.MethodPost, base+"/commit", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodGet, "/api/v1/catalog/offers/"+offerID.String(), manager, nil)
	assert.Equal(t, int64(10), decode[dto.OfferResponse](t, rec).Quantity)

	rec = api.do(http.MethodPost, base+"/lines", manager, map[string]any{
		"offerId":  offerID.String(),
		"quantity": 1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "WAYBILL_COMMITTED", decode[errorBody](t, rec).Code)

	rec = api.do(http.MethodGet, base+"/movements", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	movements := decode[struct {
		Items []map[string]any `json:"items"`
	}](t, rec)
	require.Len(t, movements.Items, 1)
	assert.EqualValues(t, 10, movements.Items[0]["quantity"])
}

func TestRouter_CreateWithLines(t *testing.T) {
	api := newTestAPI(t, nil)
	manager := api.token(id.New(), appctx.RoleManager)

	customerID := api.createUser(manager, "bulk@example.com")
	first := api.createOffer(manager, "OF-A")
	second := api.createOffer(manager, "OF-B")

	rec := api.do(http.MethodPost, "/api/v1/document/waybills/with-lines", manager, map[string]any{
		"customerId":  customerID.String(),
		"waybillType": "WAYBILL_OUT",
		"lines": []map[string]any{
			{"offerId": first.String(), "quantity": 2},
			{"offerId": second.String(), "quantity": 3, "priceRub": "100"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	w := decode[dto.WaybillResponse](t, rec)
	require.Len(t, w.Lines, 2)
	assert.True(t, w.IsPending)
	assert.Equal(t, "1380", w.Total.String())

	rec = api.do(http.MethodGet, "/api/v1/document/waybills?pending=true", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[dto.ListResponse[dto.WaybillResponse]](t, rec).TotalCount)
}

func TestRouter_RemoveLine(t *testing.T) {
	api := newTestAPI(t, nil)
	manager := api.token(id.New(), appctx.RoleManager)

	customerID := api.createUser(manager, "remove@example.com")
	offerID := api.createOffer(manager, "OF-R")

	rec := api.do(http.MethodPost, "/api/v1/document/waybills/with-lines", manager, map[string]any{
		"customerId":  customerID.String(),
		"waybillType": "WAYBILL_IN",
		"lines": []map[string]any{
			{"offerId": offerID.String(), "quantity": 2},
			{"offerId": offerID.String(), "quantity": 5},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	w := decode[dto.WaybillResponse](t, rec)
	require.Len(t, w.Lines, 2)
	base := "/api/v1/document/waybills/" + w.ID

	rec = api.do(http.MethodDelete, base+"/lines/"+w.Lines[0].ID, manager, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Body.String())

	rec = api.do(http.MethodDelete, base+"/lines/"+w.Lines[0].ID, manager, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodDelete, base+"/lines/not-a-uuid", manager, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, base+"/commit", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	committed := decode[dto.WaybillResponse](t, rec)
	require.Len(t, committed.Lines, 1)
	assert.Equal(t, "2700", committed.Total.String())

	rec = api.do(http.MethodGet, "/api/v1/catalog/offers/"+offerID.String(), manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), decode[dto.OfferResponse](t, rec).Quantity)

	rec = api.do(http.MethodDelete, base+"/lines/"+w.Lines[1].ID, manager, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "WAYBILL_COMMITTED", decode[errorBody](t, rec).Code)
}

func TestRouter_InvalidPathID(t *testing.T) {
	api := newTestAPI(t, nil)
	manager := api.token(id.New(), appctx.RoleManager)

	rec := api.do(http.MethodGet, "/api/v1/document/waybills/not-a-uuid", manager, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, rec).Code)
}

func TestRouter_BalanceAdjustRequiresAdmin(t *testing.T) {
	api := newTestAPI(t, nil)
	manager := api.token(id.New(), appctx.RoleManager)
	admin := api.token(id.New(), appctx.RoleAdmin)

	userID := api.createUser(manager, "wallet@example.com")
	path := "/api/v1/balance/adjust/" + userID.String()
	body := map[string]any{"delta": 1500, "currency": "EUR", "reason": "ADMIN_ADJUSTMENT"}

	rec := api.do(http.MethodPost, path, manager, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, path, admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode[map[string]any](t, rec)
	assert.EqualValues(t, 0, entry["balanceBefore"])
	assert.EqualValues(t, 1500, entry["balanceAfter"])

	rec = api.do(http.MethodPost, path, admin, map[string]any{"delta": -2000, "currency": "EUR", "reason": "WAYBILL_PAYMENT"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, -500, decode[map[string]any](t, rec)["balanceAfter"])

	rec = api.do(http.MethodGet, "/api/v1/catalog/users/"+userID.String(), manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(-500), decode[dto.UserResponse](t, rec).Balances["EUR"])

	rec = api.do(http.MethodGet, "/api/v1/balance/history/"+userID.String()+"?currency=EUR", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[struct {
		TotalCount int64 `json:"totalCount"`
	}](t, rec)
	assert.EqualValues(t, 2, history.TotalCount)

	rec = api.do(http.MethodPost, path, admin, map[string]any{"delta": 1, "currency": "GBP", "reason": "OTHER"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_IntegrationRequiresAPIKey(t *testing.T) {
	api := newTestAPI(t, nil)
	manager := api.token(id.New(), appctx.RoleManager)

	customerID := api.createUser(manager, "print@example.com")
	rec := api.do(http.MethodPost, "/api/v1/document/waybills", manager, map[string]any{
		"customerId":  customerID.String(),
		"waybillType": "WAYBILL_RETURN",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/api/v1/integration/waybills/" + decode[dto.IDResponse](t, rec).ID

	rec = api.do(http.MethodGet, path, manager, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-API-Key", testAPIKey)
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	printable := decode[handlers.PrintableWaybill](t, rec)
	assert.Equal(t, "print@example.com", printable.Customer.Email)
	assert.Equal(t, "WAYBILL_RETURN", printable.WaybillType)
}

func TestRouter_AuditsMutatingRequests(t *testing.T) {
	api := newTestAPI(t, nil)
	userID := id.New()
	manager := api.token(userID, appctx.RoleManager)

	api.createUser(manager, "audited@example.com")
	api.do(http.MethodGet, "/api/v1/catalog/offers", manager, nil)

	entries := api.store.Audit().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, http.MethodPost, entries[0].Method)
	assert.Equal(t, "/api/v1/catalog/users", entries[0].Endpoint)
	assert.Equal(t, http.StatusCreated, entries[0].StatusCode)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, userID, *entries[0].UserID)
	assert.Contains(t, string(entries[0].Payload), "audited@example.com")
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t, map[string]handlers.ReadinessChecker{"database": failingCheck{}})

	rec := api.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy: down")
}
