package studio

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewardscraft/studio/internal/auth"
	"github.com/rewardscraft/studio/internal/logo"
	"github.com/rewardscraft/studio/internal/middleware"
)

type testServer struct {
	router   *gin.Engine
	registry *Registry
	store    *trackingStore
	tokens   *auth.TokenService
	saver    *recordingSaver
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := newTrackingStore()
	saver := &recordingSaver{}
	registry := NewRegistry(store, saver, time.Hour, nil)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	h := NewHandler(registry, tokens, false, nil)
	page := NewPage(h)

	r := gin.New()
	r.GET("/logos/*key", logo.ServeBlob(store, nil))
	r.GET("/", page.Show)
	r.POST("/studio/campaign", page.Campaign())
	r.POST("/studio/design", page.Design())
	r.POST("/studio/preset", page.Preset())
	r.POST("/studio/save", page.Save())

	api := r.Group("/api")
	api.POST("/sessions", h.CreateSession)
	api.GET("/presets", h.Presets)
	cur := api.Group("/sessions/current", middleware.SessionToken(tokens), RequireSession(registry))
	cur.GET("", h.Get)
	cur.DELETE("", h.Delete)
	cur.PATCH("/campaign", h.UpdateCampaign)
	cur.PATCH("/voucher", h.UpdateVoucher)
	cur.POST("/voucher/fields", h.ApplyField)
	cur.POST("/voucher/preset", h.ApplyPreset)
	cur.PUT("/tab", h.SetTab)
	cur.POST("/logo", h.UploadLogo)
	cur.DELETE("/logo", h.RemoveLogo)
	cur.POST("/save", h.Save)
	cur.GET("/preview", h.Preview)

	return &testServer{router: r, registry: registry, store: store, tokens: tokens, saver: saver}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path, token string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) json(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	return ts.do(t, method, path, token, []byte(body), "application/json")
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) Snapshot {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success, w.Body.String())
	var snap Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	return snap
}

func (ts *testServer) start(t *testing.T) string {
	t.Helper()
	w := ts.json(t, http.MethodPost, "/api/sessions", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var created CreateSessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.Token)
	return created.Token
}

func multipartBody(t *testing.T, files map[string]string, order []string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range order {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + name + `"`}
		if strings.HasSuffix(name, ".png") {
			h["Content-Type"] = []string{"image/png"}
		} else {
			h["Content-Type"] = []string{"text/plain"}
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestAPI_SummerSaleScenario(t *testing.T) {
	ts := newTestServer(t)
	token := ts.start(t)

	w := ts.json(t, http.MethodPatch, "/api/sessions/current/campaign", token, `{"op":"name","value":"Summer Sale"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.json(t, http.MethodPost, "/api/sessions/current/voucher/preset", token, `{"name":"Sunset"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.json(t, http.MethodPatch, "/api/sessions/current/voucher", token,
		`[{"op":"discount_type","value":"fixed"},{"op":"discount_value","value":25}]`)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeState(t, w)

	v := snap.Campaign.Voucher
	assert.Equal(t, "Summer Sale", snap.Campaign.Name)
	assert.Equal(t, "#F59E0B", v.PrimaryColor)
	assert.Equal(t, "#EF4444", v.SecondaryColor)
	assert.Equal(t, "$25 OFF", snap.Preview.DiscountLabel)
	assert.Equal(t, "Summer Sale", snap.Preview.CampaignName)

	w = ts.do(t, http.MethodGet, "/api/sessions/current/preview", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	html := w.Body.String()
	assert.Contains(t, html, "$25 OFF")
	assert.Contains(t, html, "Summer Sale")
	assert.Contains(t, html, "linear-gradient(135deg, #F59E0B 0%, #EF4444 100%)")

	w = ts.do(t, http.MethodPost, "/api/sessions/current/save", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.saver.saved, 1)
	assert.Equal(t, "Summer Sale", ts.saver.saved[0].Campaign.Name)
}

func TestAPI_FieldInputAndTab(t *testing.T) {
	ts := newTestServer(t)
	token := ts.start(t)

	form := url.Values{"control": {"max_redemptions"}, "value": {"abc"}}
	w := ts.do(t, http.MethodPost, "/api/sessions/current/voucher/fields", token,
		[]byte(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeState(t, w).Campaign.Voucher.MaxRedemptions)

	w = ts.json(t, http.MethodPut, "/api/sessions/current/tab", token, `{"tab":"design"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, TabDesign, decodeState(t, w).Tab)

	w = ts.json(t, http.MethodPut, "/api/sessions/current/tab", token, `{"tab":"billing"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Errors(t *testing.T) {
	ts := newTestServer(t)
	token := ts.start(t)

	w := ts.json(t, http.MethodPatch, "/api/sessions/current/campaign", token, `{"op":"budget","value":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.json(t, http.MethodPatch, "/api/sessions/current/voucher", token, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.json(t, http.MethodPatch, "/api/sessions/current/voucher", token, `{"op":"discount_type","value":"bogo"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/sessions/current", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	orphan, err := ts.tokens.Issue(uuid.New())
	require.NoError(t, err)
	w = ts.do(t, http.MethodGet, "/api/sessions/current", orphan, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_LogoLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.start(t)

	body, ct := multipartBody(t, map[string]string{"notes.txt": "hello"}, []string{"notes.txt"})
	w := ts.do(t, http.MethodPost, "/api/sessions/current/logo", token, body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	var rejected struct {
		Data UploadLogoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rejected))
	assert.False(t, rejected.Data.Accepted)
	assert.Nil(t, rejected.Data.State.Campaign.LogoFile)

	body, ct = multipartBody(t, map[string]string{"brand.png": pngHeader, "extra.png": pngHeader}, []string{"brand.png", "extra.png"})
	w = ts.do(t, http.MethodPost, "/api/sessions/current/logo", token, body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	var accepted struct {
		Data UploadLogoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.True(t, accepted.Data.Accepted)
	logoURL := accepted.Data.State.Campaign.LogoDisplayURL
	assert.Equal(t, "brand.png", accepted.Data.State.Campaign.LogoFile.Name)
	assert.Equal(t, 1, ts.store.Len())

	w = ts.do(t, http.MethodGet, logoURL, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = ts.do(t, http.MethodDelete, "/api/sessions/current/logo", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeState(t, w)
	assert.Nil(t, snap.Campaign.LogoFile)
	assert.Empty(t, snap.Campaign.LogoDisplayURL)

	w = ts.do(t, http.MethodGet, logoURL, "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_DeleteSession(t *testing.T) {
	ts := newTestServer(t)
	token := ts.start(t)
	require.Equal(t, 1, ts.registry.Len())

	w := ts.do(t, http.MethodDelete, "/api/sessions/current", token, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, ts.registry.Len())

	w = ts.do(t, http.MethodGet, "/api/sessions/current", token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_Presets(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/presets", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Sunset"`)
}

func TestPage_FormFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Create Reward Campaign")
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	post := func(path string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(session)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)
		return rec
	}

	w = post("/studio/campaign", url.Values{"name": {"Summer Sale"}, "start_date": {"2024-06-01"}, "end_date": {"2024-05-01"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	w = post("/studio/preset", url.Values{"name": {"Sunset"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	w = post("/studio/design", url.Values{"discount_type": {"fixed"}, "discount_value": {"25"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	w = post("/studio/save", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?saved=1", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/?saved=1", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()
	assert.Contains(t, page, "Summer Sale")
	assert.Contains(t, page, "$25 OFF")
	assert.Contains(t, page, "Campaign saved.")
	assert.Contains(t, page, "end date is before start date")
	assert.Equal(t, 1, ts.registry.Len())
}

func TestPage_StaleCookieRedirects(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/studio/save", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "stale"})
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestPage_CampaignRedemptionCapAndLogoSize(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	claims, err := ts.tokens.Validate(session.Value)
	require.NoError(t, err)
	s, err := ts.registry.Get(claims.SessionID)
	require.NoError(t, err)

	postCampaign := func(cap string) {
		form := url.Values{"name": {"Summer Sale"}, "max_redemptions": {cap}}
		req := httptest.NewRequest(http.MethodPost, "/studio/campaign", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(session)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}

	postCampaign("250")
	snap := s.Snapshot()
	assert.Equal(t, "Summer Sale", snap.Campaign.Name)
	assert.Equal(t, 250, snap.Campaign.Voucher.MaxRedemptions)

	postCampaign("abc")
	assert.Equal(t, 0, s.Snapshot().Campaign.Voucher.MaxRedemptions)

	body, ct := multipartBody(t, map[string]string{"logo.png": strings.Repeat("x", 2048)}, []string{"logo.png"})
	w = ts.do(t, http.MethodPost, "/api/sessions/current/logo", session.Value, body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	_, err = s.SetTab(TabLogo)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "logo.png")
	assert.Contains(t, w.Body.String(), "2.0 KB")
}
