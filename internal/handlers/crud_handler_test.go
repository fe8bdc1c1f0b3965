package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meteora/internal/clients"
	"meteora/internal/models"
	"meteora/internal/repository"
	"meteora/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubWeatherClient фиксированные ответы провайдера для тестов роутинга
type stubWeatherClient struct {
	geo     *clients.GeoLocation
	current *clients.CurrentWeather
}

func (s *stubWeatherClient) Geocode(ctx context.Context, city, state, country string) (*clients.GeoLocation, error) {
	if s.geo == nil {
		return nil, clients.ErrLocationNotFound
	}
	return s.geo, nil
}

func (s *stubWeatherClient) CurrentByCoords(ctx context.Context, lat, lon float64) (*clients.CurrentWeather, error) {
	return s.current, nil
}

func (s *stubWeatherClient) CurrentByZip(ctx context.Context, zipCode, country string) (*clients.CurrentWeather, error) {
	return s.current, nil
}

func (s *stubWeatherClient) Forecast(ctx context.Context, lat, lon float64) ([]clients.ForecastEntry, error) {
	return nil, nil
}

type testEnv struct {
	router *gin.Engine
	repo   repository.SearchRepository
}

func newTestEnv(t *testing.T, weather clients.OpenWeatherClient) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WeatherSearch{}, &models.WeatherResult{}))

	repo := repository.NewSearchRepository(db)
	searchService := service.NewSearchService(repo, weather, true)
	historyService := service.NewHistoryService(repo, t.TempDir())

	weatherHandler := NewWeatherHandler(searchService)
	crudHandler := NewCrudHandler(historyService)

	router := gin.New()
	weatherGroup := router.Group("/api/weather")
	{
		weatherGroup.GET("/search/by-city", weatherHandler.SearchByCity)
		weatherGroup.GET("/search/by-zip", weatherHandler.SearchByZip)
		weatherGroup.GET("/search/by-coords", weatherHandler.SearchByCoords)
		weatherGroup.GET("/weather/by-city-range", weatherHandler.SearchByCityRange)

		crudGroup := weatherGroup.Group("/crud")
		{
			crudGroup.GET("/history", crudHandler.GetHistory)
			crudGroup.DELETE("/history/all", crudHandler.DeleteAllHistory)
			crudGroup.GET("/history/export", crudHandler.ExportHistory)
			crudGroup.GET("/history/search/country", crudHandler.FilterByCountry)
			crudGroup.GET("/history/search/city", crudHandler.FilterByCity)
			crudGroup.GET("/history/search/state", crudHandler.FilterByState)
			crudGroup.GET("/history/search/zipcode", crudHandler.FilterByZipcode)
			crudGroup.GET("/history/:id", crudHandler.GetHistoryByID)
			crudGroup.PUT("/history/:id", crudHandler.UpdateHistory)
			crudGroup.DELETE("/history/:id", crudHandler.DeleteHistory)
		}
	}

	return &testEnv{router: router, repo: repo}
}

func (e *testEnv) do(method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed(t *testing.T, city, country string) uint {
	t.Helper()
	ctx := context.Background()

	search := &models.WeatherSearch{
		City:      city,
		Country:   country,
		Lat:       48.85,
		Lon:       2.35,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.repo.CreateSearch(ctx, search))
	require.NoError(t, e.repo.CreateResults(ctx, []models.WeatherResult{
		{SearchID: search.ID, ForecastDatetime: time.Now().UTC(), Temp: 10},
	}))
	return search.ID
}

func TestGetHistory_Empty(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})

	w := env.do(http.MethodGet, "/api/weather/crud/history", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 0, body["total"])
}

func TestGetHistoryByID(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})
	id := env.seed(t, "Paris", "FR")

	w := env.do(http.MethodGet, "/api/weather/crud/history/1", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, id, body["id"])
	assert.Equal(t, "Paris", body["city"])
}

func TestGetHistoryByID_InvalidID(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})

	w := env.do(http.MethodGet, "/api/weather/crud/history/abc", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid search id")
}

func TestGetHistoryByID_NotFound(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})

	w := env.do(http.MethodGet, "/api/weather/crud/history/77", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Search with id 77 not found")
}

func TestDeleteAllHistory_RoutePrecedence(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})
	env.seed(t, "Paris", "FR")
	env.seed(t, "London", "GB")

	// "all" не должен разбираться как :id
	w := env.do(http.MethodDelete, "/api/weather/crud/history/all", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "All searches and results deleted successfully")

	w = env.do(http.MethodGet, "/api/weather/crud/history", "")
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 0, body["total"])
}

func TestUpdateHistory(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})
	env.seed(t, "Paris", "FR")

	w := env.do(http.MethodPut, "/api/weather/crud/history/1", `{"city":"Marseille"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Search updated successfully")
	assert.Contains(t, w.Body.String(), "Marseille")
}

func TestUpdateHistory_InvalidBody(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})
	env.seed(t, "Paris", "FR")

	w := env.do(http.MethodPut, "/api/weather/crud/history/1", `{not json`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestUpdateHistory_EmptyBody(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})
	env.seed(t, "Paris", "FR")

	w := env.do(http.MethodPut, "/api/weather/crud/history/1", `{}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No fields to update")
}

func TestDeleteHistoryByID(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})
	env.seed(t, "Paris", "FR")

	w := env.do(http.MethodDelete, "/api/weather/crud/history/1", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Search deleted successfully")

	w = env.do(http.MethodGet, "/api/weather/crud/history/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterHistory(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})
	env.seed(t, "Paris", "FR")
	env.seed(t, "London", "GB")

	w := env.do(http.MethodGet, "/api/weather/crud/history/search/country?value=fr", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["total"])

	// Пустое значение фильтра отклоняется
	w = env.do(http.MethodGet, "/api/weather/crud/history/search/city", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHistory_CSV(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})
	env.seed(t, "Paris", "FR")

	w := env.do(http.MethodGet, "/api/weather/crud/history/export?format=csv", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "Paris")
}

func TestExportHistory_Empty(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})

	w := env.do(http.MethodGet, "/api/weather/crud/history/export", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No search history to export")
}

func TestSearchByCity_Route(t *testing.T) {
	state := "Ile-de-France"
	env := newTestEnv(t, &stubWeatherClient{
		geo: &clients.GeoLocation{Name: "Paris", State: &state, Country: "FR", Lat: 48.8566, Lon: 2.3522},
		current: &clients.CurrentWeather{
			City: "Paris", Country: "FR", Lat: 48.8566, Lon: 2.3522,
			Temp: 14.5, FeelsLike: 13.9, Humidity: 72,
			Description: "broken clouds", WindSpeed: 4.1,
			ObservedAt: time.Now().UTC(),
		},
	})

	w := env.do(http.MethodGet, "/api/weather/search/by-city?city=Paris&country=FR", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotZero(t, body["search_id"])

	location, ok := body["location"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Paris", location["city"])
}

func TestSearchByCity_RouteNotFound(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})

	w := env.do(http.MethodGet, "/api/weather/search/by-city?city=Nowhere&country=XX", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "City not found")
}

func TestSearchByCoords_RouteInvalidNumber(t *testing.T) {
	env := newTestEnv(t, &stubWeatherClient{})

	w := env.do(http.MethodGet, "/api/weather/search/by-coords?lat=abc&lon=2.35", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "lat must be a valid number")
}
