package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftd/internal/controllers"
	"giftd/internal/providers"
	"giftd/internal/services"
	"giftd/internal/structures"
	"giftd/internal/testutil"
)

func newRouteTestController() *controllers.ApiController {
	conf := &structures.Config{
		Ledger: structures.LedgerConfig{DefaultCheckinPoints: 10, BonusMode: structures.BonusModeFlat},
	}
	logger := &testutil.MockLogger{}
	svc := services.NewLedgerService(conf, &testutil.MockStore{}, &testutil.MockSender{}, logger)
	cache := providers.NewCacheProvider(conf, logger)
	metrics := providers.NewMetricsProvider(conf, svc)
	return controllers.NewApiController(logger, svc, cache, metrics)
}

func TestInitRoutes_RegistersAllRoutes(t *testing.T) {
	router := InitRoutes(newRouteTestController(), &structures.Config{})
	routes := router.GetRoutes()

	require.Len(t, routes, 15)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	assert.Contains(t, urls, "/checkin")
	assert.Contains(t, urls, "/redeem")
	assert.Contains(t, urls, "/gifts")
	assert.Contains(t, urls, "/user")
	assert.Contains(t, urls, "/gift/add")
	assert.Contains(t, urls, "/gift/edit")
	assert.Contains(t, urls, "/gift/codes")
	assert.Contains(t, urls, "/gift/remove")
	assert.Contains(t, urls, "/gift")
	assert.Contains(t, urls, "/points/grant")
	assert.Contains(t, urls, "/points/deduct")
	assert.Contains(t, urls, "/config/checkin-points")
	assert.Contains(t, urls, "/admin/claim")
	assert.Contains(t, urls, "/admin/add")
	assert.Contains(t, urls, "/admin/remove")
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	router := InitRoutes(newRouteTestController(), &structures.Config{})

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	// POST-only endpoint rejects GET
	req := httptest.NewRequest(http.MethodGet, "/checkin", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// GET-only endpoint rejects POST
	req = httptest.NewRequest(http.MethodPost, "/gifts", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
