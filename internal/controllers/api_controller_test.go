package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftd/internal/providers"
	"giftd/internal/services"
	"giftd/internal/structures"
	"giftd/internal/testutil"
)

func newTestController(t *testing.T) (*ApiController, services.LedgerServiceInterface) {
	t.Helper()
	conf := &structures.Config{
		Ledger: structures.LedgerConfig{
			DefaultCheckinPoints: 10,
			BonusMode:            structures.BonusModeFlat,
			DeliveryPolicy:       structures.DeliveryPolicyRelaxed,
		},
	}
	logger := &testutil.MockLogger{}
	svc := services.NewLedgerService(conf, &testutil.MockStore{}, &testutil.MockSender{}, logger)
	cache := providers.NewCacheProvider(conf, logger)
	metrics := providers.NewMetricsProvider(conf, svc)
	return NewApiController(logger, svc, cache, metrics), svc
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCheckIn_Endpoint(t *testing.T) {
	ac, _ := newTestController(t)

	rec := doJSON(t, ac.CheckIn, http.MethodPost, "/checkin", `{"ctx":"g","user":"u1","username":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res services.CheckInResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 10, res.Awarded)
	assert.Equal(t, 1, res.ContinuousDays)

	// same calendar day again
	rec = doJSON(t, ac.CheckIn, http.MethodPost, "/checkin", `{"ctx":"g","user":"u1","username":"alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already checked in")
}

func TestCheckIn_BadRequests(t *testing.T) {
	ac, _ := newTestController(t)

	rec := doJSON(t, ac.CheckIn, http.MethodPost, "/checkin", `{notjson`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, ac.CheckIn, http.MethodPost, "/checkin", `{"ctx":"g"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedeem_EndpointFlow(t *testing.T) {
	ac, svc := newTestController(t)
	require.NoError(t, svc.BindFirstAdmin("g", "boss"))

	rec := doJSON(t, ac.AddGift, http.MethodPost, "/gift/add",
		`{"ctx":"g","caller":"boss","name":"Steam Key","points_required":50,"quantity":2,"per_user_limit":1,"type":"code","codes":["A1","A2"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	giftID := created["id"]
	require.NotEmpty(t, giftID)

	_, err := svc.GrantPoints("g", "boss", "u1", 100)
	require.NoError(t, err)

	rec = doJSON(t, ac.Redeem, http.MethodPost, "/redeem",
		`{"ctx":"g","user":"u1","username":"alice","gift":"`+giftID+`","count":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res services.RedeemResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 50, res.Points)
	assert.Equal(t, []string{"A1"}, res.Codes)
	assert.True(t, res.Delivered)

	// personal limit reached
	rec = doJSON(t, ac.Redeem, http.MethodPost, "/redeem",
		`{"ctx":"g","user":"u1","username":"alice","gift":"`+giftID+`","count":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRedeem_UnknownGiftIs404(t *testing.T) {
	ac, _ := newTestController(t)
	rec := doJSON(t, ac.Redeem, http.MethodPost, "/redeem", `{"ctx":"g","user":"u1","gift":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedeem_CountDefaultsToOne(t *testing.T) {
	ac, svc := newTestController(t)
	require.NoError(t, svc.BindFirstAdmin("g", "boss"))
	_, err := svc.GrantPoints("g", "boss", "u1", 100)
	require.NoError(t, err)
	id, err := svc.AddGift("g", "boss", services.GiftSpec{Name: "Mug", PointsRequired: 10, Quantity: 5})
	require.NoError(t, err)

	rec := doJSON(t, ac.Redeem, http.MethodPost, "/redeem", `{"ctx":"g","user":"u1","gift":"`+id+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res services.RedeemResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Count)
	assert.True(t, res.Pending)
}

func TestAddGift_UnauthorizedIs403(t *testing.T) {
	ac, _ := newTestController(t)
	rec := doJSON(t, ac.AddGift, http.MethodPost, "/gift/add",
		`{"ctx":"g","caller":"nobody","name":"Mug","quantity":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListGifts_Endpoint(t *testing.T) {
	ac, svc := newTestController(t)
	require.NoError(t, svc.BindFirstAdmin("g", "boss"))
	_, err := svc.AddGift("g", "boss", services.GiftSpec{Name: "Mug", PointsRequired: 5, Quantity: 3})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/gifts?ctx=g&user=u1", nil)
	rec := httptest.NewRecorder()
	ac.ListGifts(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []services.GiftListEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Mug", entries[0].Name)
}

func TestGetUser_Endpoint(t *testing.T) {
	ac, svc := newTestController(t)
	require.NoError(t, svc.BindFirstAdmin("g", "boss"))
	_, err := svc.GrantPoints("g", "boss", "u1", 40)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user?ctx=g&id=u1", nil)
	rec := httptest.NewRecorder()
	ac.GetUser(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points":40`)

	req = httptest.NewRequest(http.MethodGet, "/user?ctx=g&id=ghost", nil)
	rec = httptest.NewRecorder()
	ac.GetUser(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUser_ServedFromCache(t *testing.T) {
	conf := &structures.Config{
		Ledger: structures.LedgerConfig{
			DefaultCheckinPoints: 10,
			BonusMode:            structures.BonusModeFlat,
			DeliveryPolicy:       structures.DeliveryPolicyRelaxed,
		},
		Cache: structures.CacheConfig{Enabled: true, Size: 1, TTL: time.Minute},
	}
	logger := &testutil.MockLogger{}
	svc := services.NewLedgerService(conf, &testutil.MockStore{}, &testutil.MockSender{}, logger)
	ac := NewApiController(logger, svc, providers.NewCacheProvider(conf, logger), providers.NewMetricsProvider(conf, svc))

	require.NoError(t, svc.BindFirstAdmin("g", "boss"))
	_, err := svc.GrantPoints("g", "boss", "u1", 40)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user?ctx=g&id=u1", nil)
	rec := httptest.NewRecorder()
	ac.GetUser(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points":40`)

	// the cached reply stays until TTL, even after a balance change
	_, err = svc.GrantPoints("g", "boss", "u1", 10)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	ac.GetUser(rec, httptest.NewRequest(http.MethodGet, "/user?ctx=g&id=u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points":40`)
}

func TestAdminEndpoints(t *testing.T) {
	ac, svc := newTestController(t)

	rec := doJSON(t, ac.ClaimAdmin, http.MethodPost, "/admin/claim", `{"ctx":"g","user":"boss"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, ac.ClaimAdmin, http.MethodPost, "/admin/claim", `{"ctx":"g","user":"usurper"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, ac.AddAdmin, http.MethodPost, "/admin/add", `{"ctx":"g","caller":"boss","user":"helper"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.IsAdmin("g", "helper"))

	rec = doJSON(t, ac.RemoveAdmin, http.MethodPost, "/admin/remove", `{"ctx":"g","caller":"boss","user":"helper"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.IsAdmin("g", "helper"))
}

func TestSetCheckinPoints_Endpoint(t *testing.T) {
	ac, svc := newTestController(t)
	require.NoError(t, svc.BindFirstAdmin("g", "boss"))

	rec := doJSON(t, ac.SetCheckinPoints, http.MethodPost, "/config/checkin-points", `{"ctx":"g","caller":"boss","points":25}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, ac.CheckIn, http.MethodPost, "/checkin", `{"ctx":"g","user":"u1","username":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"awarded":25`)
}
