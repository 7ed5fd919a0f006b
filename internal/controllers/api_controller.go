package controllers

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
	"github.com/spf13/cast"

	"giftd/internal/providers"
	"giftd/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// ApiController is the reference host adapter: every core ledger operation
// is exposed as exactly one endpoint. A chat-bot host would call the same
// service methods directly.
type ApiController struct {
	logger  providers.Logger
	service services.LedgerServiceInterface
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
}

func NewApiController(logger providers.Logger, service services.LedgerServiceInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
		metrics: metrics,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto status codes. Only the short
// LedgerError message ever reaches the client.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrPrecondition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrStorage):
		status = http.StatusInternalServerError
	}

	var lerr *services.LedgerError
	msg := "internal error"
	if errors.As(err, &lerr) {
		msg = lerr.Message
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

type checkinRequest struct {
	Context  string `json:"ctx" validate:"required"`
	User     string `json:"user" validate:"required"`
	Username string `json:"username"`
}

func (ac *ApiController) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := validate.Struct(&req); !v.Validate() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: v.Errors.One()})
		return
	}

	result, err := ac.service.CheckIn(req.Context, req.User, req.Username, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	ac.metrics.IncCheckins()
	ac.metrics.AddPointsAwarded(result.Awarded)
	writeJSON(w, http.StatusOK, result)
}

type redeemRequest struct {
	Context  string      `json:"ctx" validate:"required"`
	User     string      `json:"user" validate:"required"`
	Username string      `json:"username"`
	Gift     string      `json:"gift" validate:"required"`
	Count    json.Number `json:"count"`
}

func (ac *ApiController) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := validate.Struct(&req); !v.Validate() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: v.Errors.One()})
		return
	}
	count := cast.ToInt(req.Count.String())
	if count == 0 {
		count = 1
	}

	result, err := ac.service.Redeem(r.Context(), req.Context, req.User, req.Username, req.Gift, count)
	if err != nil {
		ac.metrics.IncRedemptions("rejected")
		writeError(w, err)
		return
	}
	ac.metrics.IncRedemptions("ok")
	writeJSON(w, http.StatusOK, result)
}

func (ac *ApiController) ListGifts(w http.ResponseWriter, r *http.Request) {
	ctx := r.URL.Query().Get("ctx")
	user := r.URL.Query().Get("user")
	ac.serveFromCacheOrCompute(w, "gifts:"+ctx+":"+user, func() (any, error) {
		return ac.service.ListGifts(ctx, user), nil
	})
}

func (ac *ApiController) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.URL.Query().Get("ctx")
	id := r.URL.Query().Get("id")
	ac.serveFromCacheOrCompute(w, "user:"+ctx+":"+id, func() (any, error) {
		return ac.service.GetUser(ctx, id)
	})
}

type giftAddRequest struct {
	Context string `json:"ctx" validate:"required"`
	Caller  string `json:"caller" validate:"required"`
	services.GiftSpec
}

func (ac *ApiController) AddGift(w http.ResponseWriter, r *http.Request) {
	var req giftAddRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if v := validate.Struct(&req); !v.Validate() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: v.Errors.One()})
		return
	}

	id, err := ac.service.AddGift(req.Context, req.Caller, req.GiftSpec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type giftEditRequest struct {
	Context string `json:"ctx" validate:"required"`
	Caller  string `json:"caller" validate:"required"`
	Gift    string `json:"gift" validate:"required"`
	services.GiftPatch
}

func (ac *ApiController) EditGift(w http.ResponseWriter, r *http.Request) {
	var req giftEditRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ac.service.EditGift(req.Context, req.Caller, req.Gift, req.GiftPatch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type giftCodesRequest struct {
	Context string   `json:"ctx" validate:"required"`
	Caller  string   `json:"caller" validate:"required"`
	Gift    string   `json:"gift" validate:"required"`
	Codes   []string `json:"codes" validate:"required"`
}

func (ac *ApiController) AddCodes(w http.ResponseWriter, r *http.Request) {
	var req giftCodesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	added, err := ac.service.AddCodes(req.Context, req.Caller, req.Gift, req.Codes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

type giftRemoveRequest struct {
	Context string `json:"ctx" validate:"required"`
	Caller  string `json:"caller" validate:"required"`
	Gift    string `json:"gift" validate:"required"`
}

func (ac *ApiController) RemoveGift(w http.ResponseWriter, r *http.Request) {
	var req giftRemoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ac.service.RemoveGift(req.Context, req.Caller, req.Gift); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (ac *ApiController) GiftInfo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	info, err := ac.service.GiftInfo(q.Get("ctx"), q.Get("caller"), q.Get("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type pointsRequest struct {
	Context string      `json:"ctx" validate:"required"`
	Caller  string      `json:"caller" validate:"required"`
	User    string      `json:"user" validate:"required"`
	Points  json.Number `json:"points"`
}

func (ac *ApiController) GrantPoints(w http.ResponseWriter, r *http.Request) {
	ac.adjustPoints(w, r, ac.service.GrantPoints)
}

func (ac *ApiController) DeductPoints(w http.ResponseWriter, r *http.Request) {
	ac.adjustPoints(w, r, ac.service.DeductPoints)
}

func (ac *ApiController) adjustPoints(w http.ResponseWriter, r *http.Request, op func(contextID, callerID, userID string, points int) (int, error)) {
	var req pointsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	balance, err := op(req.Context, req.Caller, req.User, cast.ToInt(req.Points.String()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"points": balance})
}

type setCheckinPointsRequest struct {
	Context string      `json:"ctx" validate:"required"`
	Caller  string      `json:"caller" validate:"required"`
	Points  json.Number `json:"points"`
}

func (ac *ApiController) SetCheckinPoints(w http.ResponseWriter, r *http.Request) {
	var req setCheckinPointsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ac.service.SetCheckinPoints(req.Context, req.Caller, cast.ToInt(req.Points.String())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type adminClaimRequest struct {
	Context string `json:"ctx" validate:"required"`
	User    string `json:"user" validate:"required"`
}

func (ac *ApiController) ClaimAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminClaimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ac.service.BindFirstAdmin(req.Context, req.User); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type adminRequest struct {
	Context string `json:"ctx" validate:"required"`
	Caller  string `json:"caller" validate:"required"`
	User    string `json:"user" validate:"required"`
}

func (ac *ApiController) AddAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ac.service.AddAdmin(req.Context, req.Caller, req.User); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (ac *ApiController) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ac.service.RemoveAdmin(req.Context, req.Caller, req.User); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
