package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adfleet/internal/adapter/exif"
	"adfleet/internal/adapter/memory"
	"adfleet/internal/adapter/usecase"
	"adfleet/internal/core/domain"
)

var jpeg = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00banner on the road")

type testServer struct {
	t       *testing.T
	srv     *httptest.Server
	handler http.Handler
	auth    *Authenticator
	repo    *memory.Repository
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	repo := memory.NewRepository()
	tariffs := domain.TariffTable{domain.VehicleAuto: 70, domain.VehicleCar: 100}
	inv := usecase.NewInventoryUseCase(repo, usecase.InventoryOptions{Tariffs: tariffs}, nil, nil)
	ver := usecase.NewVerificationUseCase(repo, memory.NewPhotoStore(), exif.Decoder{}, memory.NewLocker(),
		usecase.VerificationOptions{Location: time.UTC, MaxPhotoBytes: 1 << 20}, nil, nil)
	earn := usecase.NewEarningsUseCase(repo, tariffs, nil)
	auth := NewAuthenticator("test-secret", "adfleet", time.Second)

	handler := NewHandler(inv, ver, earn, auth, opts, nil).Router()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, handler: handler, auth: auth, repo: repo}
}

func (s *testServer) token(p domain.Principal) string {
	s.t.Helper()
	tok, err := s.auth.Issue(p, time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body any) (*http.Response, map[string]any) {
	s.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, rdr)
	require.NoError(s.t, err)
	return s.send(req, token)
}

func (s *testServer) upload(bannerID, token string, photo []byte, fields map[string]string) (*http.Response, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photo", "banner.jpg")
	require.NoError(s.t, err)
	_, err = fw.Write(photo)
	require.NoError(s.t, err)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	require.NoError(s.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/v1/banners/"+bannerID+"/verifications", &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) (*http.Response, map[string]any) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		var raw json.RawMessage
		if json.NewDecoder(resp.Body).Decode(&raw) == nil && len(raw) > 0 && raw[0] == '{' {
			require.NoError(s.t, json.Unmarshal(raw, &out))
		}
	}
	return resp, out
}

var (
	advertiser = domain.AdvertiserPrincipal{AdvertiserID: "adv-1"}
	driverA    = domain.DriverPrincipal{DriverID: "driver-a", VehicleClass: domain.VehicleAuto}
	driverB    = domain.DriverPrincipal{DriverID: "driver-b", VehicleClass: domain.VehicleAuto}
)

func (s *testServer) createCampaign(banners int) (string, []string) {
	s.t.Helper()
	resp, body := s.do(http.MethodPost, "/api/v1/campaigns", s.token(advertiser), map[string]any{
		"name":          "Diwali",
		"vehicle_class": "auto",
		"duration_days": 10,
		"start_date":    time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
		"banner_count":  banners,
	})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	c := body["campaign"].(map[string]any)
	var ids []string
	for _, id := range body["banner_ids"].([]any) {
		ids = append(ids, id.(string))
	}
	return c["id"].(string), ids
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t, Options{})

	resp, body := s.do(http.MethodGet, "/api/v1/banners/available", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", body["error"])

	resp, _ = s.do(http.MethodGet, "/api/v1/banners/available", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other := NewAuthenticator("other-secret", "adfleet", 0)
	forged, err := other.Issue(driverA, time.Hour)
	require.NoError(t, err)
	resp, _ = s.do(http.MethodGet, "/api/v1/banners/available", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	expired, err := s.auth.Issue(driverA, -time.Hour)
	require.NoError(t, err)
	resp, _ = s.do(http.MethodGet, "/api/v1/banners/available", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = s.do(http.MethodPost, "/api/v1/campaigns", s.token(driverA), map[string]any{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", body["error"])

	resp, _ = s.do(http.MethodGet, "/api/v1/drivers/me/earnings", s.token(advertiser), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBannerLifecycle(t *testing.T) {
	s := newTestServer(t, Options{})
	campaignID, ids := s.createCampaign(3)
	require.Len(t, ids, 3)

	a, b := s.token(driverA), s.token(driverB)
	for _, tok := range []string{a, b} {
		resp, _ := s.do(http.MethodPut, "/api/v1/drivers/me", tok, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp, _ := s.do(http.MethodGet, "/api/v1/banners/available?campaign_id="+campaignID, a, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.do(http.MethodPost, "/api/v1/banners/"+ids[0]+"/claim", a, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "assigned", body["status"])
	assert.Equal(t, "driver-a", body["driver_id"])

	resp, body = s.do(http.MethodPost, "/api/v1/banners/"+ids[0]+"/claim", b, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not-available", body["error"])

	resp, body = s.upload(ids[0], a, jpeg, map[string]string{"captured_at": time.Now().UTC().Format(time.RFC3339)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["is_verified"])
	assert.Equal(t, "verified", body["status"])
	assert.Nil(t, body["message"])

	resp, body = s.upload(ids[0], a, jpeg, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, false, body["is_verified"])
	assert.Equal(t, "verified", body["status"])
	assert.Equal(t, notVerifiedMessage, body["message"])

	resp, body = s.upload(ids[0], b, jpeg, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not-assigned", body["error"])

	resp, body = s.do(http.MethodGet, "/api/v1/campaigns/"+campaignID+"/banners", s.token(advertiser), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, 1.0, stats["verified"])
	assert.Equal(t, 2.0, stats["available"])

	resp, body = s.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/complete", s.token(advertiser), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3.0, body["retired"])

	resp, body = s.do(http.MethodGet, "/api/v1/drivers/me/earnings", a, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 70.0, body["total"])
	assert.Len(t, body["per_campaign"], 1)
}

func TestCampaignOwnership(t *testing.T) {
	s := newTestServer(t, Options{})
	campaignID, ids := s.createCampaign(1)
	intruder := s.token(domain.AdvertiserPrincipal{AdvertiserID: "adv-2"})

	resp, body := s.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/cancel", intruder, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", body["error"])

	resp, _ = s.do(http.MethodGet, "/api/v1/banners/"+ids[0], intruder, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/v1/campaigns/missing/banners", intruder, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	owner := s.token(advertiser)
	resp, body = s.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/banners", owner, map[string]int{"count": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, body["banner_ids"], 2)

	resp, body = s.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/cancel", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3.0, body["retired"])

	resp, body = s.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/cancel", owner, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "campaign-closed", body["error"])

	resp, _ = s.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/banners", owner, map[string]int{"count": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateCampaignValidation(t *testing.T) {
	s := newTestServer(t, Options{})
	owner := s.token(advertiser)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"bad vehicle", map[string]any{"name": "x", "vehicle_class": "bus", "duration_days": 1, "start_date": "2026-10-16", "banner_count": 1}, "invalid-vehicle-class"},
		{"zero banners", map[string]any{"name": "x", "vehicle_class": "car", "duration_days": 1, "start_date": "2026-10-16", "banner_count": 0}, "invalid-count"},
		{"bad date", map[string]any{"name": "x", "vehicle_class": "car", "duration_days": 1, "start_date": "soon", "banner_count": 1}, "invalid-campaign"},
		{"no name", map[string]any{"vehicle_class": "car", "duration_days": 1, "start_date": "2026-10-16", "banner_count": 1}, "invalid-campaign"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(http.MethodPost, "/api/v1/campaigns", owner, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.code, body["error"])
		})
	}
}

func TestVerificationUploadRejections(t *testing.T) {
	s := newTestServer(t, Options{UploadLimitBytes: 1 << 10})
	_, ids := s.createCampaign(1)
	a := s.token(driverA)
	resp, _ := s.do(http.MethodPut, "/api/v1/drivers/me", a, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = s.do(http.MethodPost, "/api/v1/banners/"+ids[0]+"/claim", a, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.upload(ids[0], a, []byte("plain text is not a photo"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid-photo", body["error"])

	big := append(append([]byte{}, jpeg...), bytes.Repeat([]byte{0}, 2<<10)...)
	resp, body = s.upload(ids[0], a, big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "photo-too-large", body["error"])

	resp, body = s.upload(ids[0], a, jpeg, map[string]string{"latitude": "north", "longitude": "77.5"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid-capture", body["error"])
}

func TestUploadRateLimit(t *testing.T) {
	s := newTestServer(t, Options{Uploads: NewRateLimiter(0.001, 1)})
	_, ids := s.createCampaign(1)
	a := s.token(driverA)
	s.do(http.MethodPut, "/api/v1/drivers/me", a, nil)
	s.do(http.MethodPost, "/api/v1/banners/"+ids[0]+"/claim", a, nil)

	resp, _ := s.upload(ids[0], a, jpeg, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := s.upload(ids[0], a, jpeg, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate-limited", body["error"])
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestClientCapture(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Form = map[string][]string{
		"captured_at": {"2026:10:16 08:00:00"},
		"latitude":    {"-33.5"},
		"longitude":   {"151.25"},
	}
	raw, err := clientCapture(req)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, "2026:10:16 08:00:00", raw.DateTime)
	assert.Equal(t, domain.GPSCoordinate{DMS: [3]float64{33.5, 0, 0}, Ref: "S"}, *raw.Latitude)
	assert.Equal(t, domain.GPSCoordinate{DMS: [3]float64{151.25, 0, 0}, Ref: "E"}, *raw.Longitude)

	empty := httptest.NewRequest(http.MethodPost, "/", nil)
	empty.Form = map[string][]string{}
	raw, err = clientCapture(empty)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRegisterDriverBodies(t *testing.T) {
	s := newTestServer(t, Options{})
	tok := s.token(driverA)

	tests := []struct {
		name   string
		body   string
		length int64
		status int
		want   domain.VehicleClass
	}{
		{name: "no body", body: "", length: 0, status: http.StatusNoContent, want: domain.VehicleAuto},
		{name: "chunked empty body", body: "", length: -1, status: http.StatusNoContent, want: domain.VehicleAuto},
		{name: "chunked override", body: `{"vehicle_class":"car"}`, length: -1, status: http.StatusNoContent, want: domain.VehicleCar},
		{name: "malformed", body: `{"vehicle_class":`, length: -1, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/drivers/me", io.NopCloser(strings.NewReader(tt.body)))
			req.ContentLength = tt.length
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := httptest.NewRecorder()

			s.handler.ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusNoContent {
				return
			}
			d, err := s.repo.GetDriver(context.Background(), driverA.DriverID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.VehicleClass)
		})
	}
}
