package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
	"github.com/anonto42/campus-board/backend/internal/services"
	"github.com/anonto42/campus-board/backend/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type apiClient struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	log, _ := test.NewNullLogger()
	events := repositories.NewMemoryClubAdRepository[models.EventAd](models.AdTypeEvent)
	products := repositories.NewMemoryClubAdRepository[models.ProductAd](models.AdTypeProduct)
	others := repositories.NewMemoryClubAdRepository[models.OtherAd](models.AdTypeOther)
	store := repositories.NewMemoryAdEnvelopeRepository()

	deps := Dependencies{
		Events:     events,
		Products:   products,
		Others:     others,
		Users:      repositories.NewMemoryUserRepository(),
		Sync:       services.NewSyncService(store, repositories.NewMemorySyncRunRepository(), nil, log, events, products, others),
		Feed:       services.NewFeedService(store),
		Engagement: services.NewEngagementService(store),
		JWTSecret:  testSecret,
		CORS:       eMiddleware.DefaultCORSConfig,
		Log:        log,
	}

	e := echo.New()
	e.Validator = validators.NewValidator()
	SetupMiddleware(e, deps)
	SetupRoutes(e, deps)
	return &apiClient{t: t, e: e}
}

func (a *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var payload *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		payload = strings.NewReader(string(data))
	} else {
		payload = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *apiClient) signup(email, role string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":       "Test User",
		"email":      email,
		"password":   "correct-horse",
		"role":       role,
		"university": "ACME U",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(a.t, resp.Token)
	return resp.Token
}

type feedResponse struct {
	Count int                 `json:"count"`
	Ads   []models.AdEnvelope `json:"ads"`
}

func decodeFeed(t *testing.T, rec *httptest.ResponseRecorder) feedResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp feedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func feedPath(params url.Values) string {
	return "/api/v1/ads?" + params.Encode()
}

func eventBody(title string) map[string]interface{} {
	return map[string]interface{}{
		"evntAdTitle":       title,
		"evntAdDate":        "2025-04-01T18:00:00Z",
		"evntAdTime":        "18:00",
		"evntAdDescription": "All night coding",
		"university":        "ACME U",
		"contactNumber":     []string{"555-0100"},
		"evntAdTags":        []string{"tech", "coding"},
	}
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestClubAdToFeedFlow(t *testing.T) {
	api := newAPI(t)
	club := api.signup("club@acme.edu", models.RoleClub)
	student := api.signup("student@acme.edu", "")

	rec := api.do(http.MethodPost, "/api/v1/clubs/event-ads", club, eventBody("Hack Night"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.EventAd
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.AdStatusActive, created.Status)

	rec = api.do(http.MethodPost, "/api/v1/ads/force-sync", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"insertedCount":1`)

	feed := decodeFeed(t, api.do(http.MethodGet, feedPath(url.Values{"university": {"ACME U"}, "search": {"hack"}}), "", nil))
	require.Equal(t, 1, feed.Count)
	ad := feed.Ads[0]
	assert.Equal(t, models.AdTypeEvent, ad.AdType)
	assert.Equal(t, "Hack Night", ad.AdData.Headline())
	assert.Equal(t, created.ID, ad.SourceID)
	id := ad.ID.Hex()

	rec = api.do(http.MethodPost, "/api/v1/ads/"+id+"/like", student, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"liked":true,"likesCount":1}`, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/v1/ads/"+id+"/interest", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"interested":true,"interestsCount":1}`, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/v1/ads/"+id+"/share", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"shareCount":1}`, rec.Body.String())

	liked := decodeFeed(t, api.do(http.MethodGet, "/api/v1/ads/liked", student, nil))
	require.Equal(t, 1, liked.Count)
	assert.Equal(t, ad.ID, liked.Ads[0].ID)

	// engagement survives a resync
	rec = api.do(http.MethodPost, "/api/v1/ads/sync", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodGet, "/api/v1/ads/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.AdEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Likes, 1)
	assert.Len(t, got.Interests, 1)
	assert.EqualValues(t, 1, got.ShareCount)

	rec = api.do(http.MethodDelete, "/api/v1/clubs/event-ads/"+created.ID.Hex(), club, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodPost, "/api/v1/ads/force-sync", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodGet, "/api/v1/ads/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFeedValidation(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodGet, feedPath(url.Values{"university": {"ACME U"}, "type": {"job"}}), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	feed := decodeFeed(t, api.do(http.MethodGet, "/api/v1/ads", "", nil))
	assert.Equal(t, 0, feed.Count)
	assert.NotNil(t, feed.Ads)
}

func TestAdLookupErrors(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/ads/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/ads/65f000000000000000000000/share", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEngagementRequiresAuth(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/v1/ads/65f000000000000000000000/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/ads/liked", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClubAdWritesRequireClubRole(t *testing.T) {
	api := newAPI(t)
	student := api.signup("student@acme.edu", models.RoleStudent)

	rec := api.do(http.MethodPost, "/api/v1/clubs/event-ads", student, eventBody("Hack Night"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/clubs/event-ads", student, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClubAdValidationAndReplace(t *testing.T) {
	api := newAPI(t)
	club := api.signup("club@acme.edu", models.RoleClub)

	body := eventBody("")
	rec := api.do(http.MethodPost, "/api/v1/clubs/event-ads", club, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/clubs/event-ads", club, eventBody("Hack Night"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.EventAd
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	update := eventBody("Hack Night II")
	update["evntAdStatus"] = models.AdStatusInactive
	rec = api.do(http.MethodPut, "/api/v1/clubs/event-ads/"+created.ID.Hex(), club, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var replaced models.EventAd
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replaced))
	assert.Equal(t, created.ID, replaced.ID)
	assert.True(t, created.CreatedAt.Equal(replaced.CreatedAt))
	assert.Equal(t, models.AdStatusInactive, replaced.Status)

	// active-only sync leaves the inactive ad out
	rec = api.do(http.MethodPost, "/api/v1/ads/sync", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"insertedCount":0`)
}

func TestSignInAndProfile(t *testing.T) {
	api := newAPI(t)
	api.signup("student@acme.edu", "")

	rec := api.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "student@acme.edu", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "Student@acme.edu", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = api.do(http.MethodGet, "/api/v1/profile", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"university":"ACME U"`)
	assert.Contains(t, rec.Body.String(), `"role":"student"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = api.do(http.MethodPut, "/api/v1/profile", resp.Token, map[string]string{"university": "Other U"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"university":"Other U"`)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/profile", "", nil).Code)

	rec = api.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "Again", "email": "student@acme.edu", "password": "correct-horse", "university": "ACME U",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSyncDiagnostics(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/v1/ads/force-sync", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/ads/sync/runs?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = api.do(http.MethodGet, "/api/v1/ads/sync/runs?limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/ads/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sources":{"event":0,"product":0,"other":0},"aggregate":0}`, rec.Body.String())
}
