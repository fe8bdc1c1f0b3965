package service

import (
	"context"
	"errors"
	"log"
	"time"

	"meteora/internal/clients"
	"meteora/internal/models"
	"meteora/internal/repository"
)

type SearchService interface {
	SearchByCity(ctx context.Context, city, country, state string) (*SearchResponse, error)
	SearchByZip(ctx context.Context, zipCode, country string) (*SearchResponse, error)
	SearchByCoords(ctx context.Context, lat, lon float64) (*SearchResponse, error)
	SearchByCityRange(ctx context.Context, city, country, state, startDate, endDate string) (*RangeResponse, error)
	LocateCity(ctx context.Context, city, country, state string) (*LocationInfo, error)
}

type searchService struct {
	repo    repository.SearchRepository
	weather clients.OpenWeatherClient
	persist bool
}

// NewSearchService при persist=false сервис выполняет те же вызовы провайдеров
// и формирует тот же ответ, но ничего не пишет в историю
func NewSearchService(repo repository.SearchRepository, weather clients.OpenWeatherClient, persist bool) SearchService {
	return &searchService{
		repo:    repo,
		weather: weather,
		persist: persist,
	}
}

type LocationInfo struct {
	City    string  `json:"city"`
	State   *string `json:"state,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type WeatherInfo struct {
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"`
}

type SearchResponse struct {
	SearchID uint         `json:"search_id,omitempty"`
	Location LocationInfo `json:"location"`
	Weather  WeatherInfo  `json:"weather"`
}

type ForecastPoint struct {
	Datetime    string  `json:"datetime"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"`
}

type RangeResponse struct {
	City    string          `json:"city"`
	State   *string         `json:"state"`
	Country string          `json:"country"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	Count   int             `json:"count"`
	Data    []ForecastPoint `json:"data"`
}

// Максимальная ширина диапазона прогноза, столько же отдает провайдер
const maxRangeDays = 5

func (s *searchService) SearchByCity(ctx context.Context, city, country, state string) (*SearchResponse, error) {
	if city == "" || country == "" {
		return nil, newValidationError("city and country are required")
	}

	geo, err := s.weather.Geocode(ctx, city, state, country)
	if err != nil {
		return nil, mapGeocodeErr(err)
	}

	current, err := s.weather.CurrentByCoords(ctx, geo.Lat, geo.Lon)
	if err != nil {
		// Еще ничего не записано, компенсация не нужна
		return nil, mapWeatherErr(err)
	}

	resp := &SearchResponse{
		Location: LocationInfo{
			City:    geo.Name,
			State:   geo.State,
			Country: geo.Country,
			Lat:     geo.Lat,
			Lon:     geo.Lon,
		},
		Weather: weatherInfo(current),
	}

	if !s.persist {
		return resp, nil
	}

	now := time.Now().UTC()
	search := &models.WeatherSearch{
		City:      geo.Name,
		State:     geo.State,
		Country:   geo.Country,
		Lat:       geo.Lat,
		Lon:       geo.Lon,
		StartDate: dateOnly(now),
		EndDate:   dateOnly(now),
		CreatedAt: now,
	}

	if err := s.commitSingle(ctx, search, current, now); err != nil {
		return nil, err
	}

	resp.SearchID = search.ID
	return resp, nil
}

func (s *searchService) SearchByZip(ctx context.Context, zipCode, country string) (*SearchResponse, error) {
	if zipCode == "" || country == "" {
		return nil, newValidationError("zip_code and country are required")
	}

	current, err := s.weather.CurrentByZip(ctx, zipCode, country)
	if err != nil {
		return nil, mapWeatherErr(err)
	}

	// Локация берется из ответа провайдера как есть
	resp := &SearchResponse{
		Location: LocationInfo{
			City:    current.City,
			Country: current.Country,
			Lat:     current.Lat,
			Lon:     current.Lon,
		},
		Weather: weatherInfo(current),
	}

	if !s.persist {
		return resp, nil
	}

	now := time.Now().UTC()
	search := &models.WeatherSearch{
		City:      current.City,
		State:     current.State,
		Country:   current.Country,
		ZipCode:   &zipCode,
		Lat:       current.Lat,
		Lon:       current.Lon,
		StartDate: dateOnly(now),
		EndDate:   dateOnly(now),
		CreatedAt: now,
	}

	if err := s.commitSingle(ctx, search, current, now); err != nil {
		return nil, err
	}

	resp.SearchID = search.ID
	return resp, nil
}

func (s *searchService) SearchByCoords(ctx context.Context, lat, lon float64) (*SearchResponse, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, newValidationError("lat must be in [-90, 90] and lon in [-180, 180]")
	}

	current, err := s.weather.CurrentByCoords(ctx, lat, lon)
	if err != nil {
		return nil, mapWeatherErr(err)
	}

	resp := &SearchResponse{
		Location: LocationInfo{
			City:    current.City,
			Country: current.Country,
			Lat:     lat,
			Lon:     lon,
		},
		Weather: weatherInfo(current),
	}

	if !s.persist {
		return resp, nil
	}

	now := time.Now().UTC()
	search := &models.WeatherSearch{
		City:      current.City,
		State:     current.State,
		Country:   current.Country,
		Lat:       lat,
		Lon:       lon,
		StartDate: dateOnly(now),
		EndDate:   dateOnly(now),
		CreatedAt: now,
	}

	if err := s.commitSingle(ctx, search, current, now); err != nil {
		return nil, err
	}

	resp.SearchID = search.ID
	return resp, nil
}

func (s *searchService) SearchByCityRange(ctx context.Context, city, country, state, startDate, endDate string) (*RangeResponse, error) {
	if city == "" || country == "" {
		return nil, newValidationError("city and country are required")
	}

	// Валидация дат до любых внешних вызовов
	start, end, err := resolveRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	geo, err := s.weather.Geocode(ctx, city, state, country)
	if err != nil {
		return nil, mapRangeGeocodeErr(err)
	}

	forecast, err := s.weather.Forecast(ctx, geo.Lat, geo.Lon)
	if err != nil {
		return nil, mapForecastErr(err)
	}

	var searchID uint
	if s.persist {
		search := &models.WeatherSearch{
			City:      geo.Name,
			State:     geo.State,
			Country:   geo.Country,
			Lat:       geo.Lat,
			Lon:       geo.Lon,
			StartDate: start,
			EndDate:   end,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.CreateSearch(ctx, search); err != nil {
			return nil, newRollbackError(err)
		}
		searchID = search.ID
	}

	// Оставляем только записи, чья дата попадает в [start, end]
	var rows []models.WeatherResult
	var points []ForecastPoint
	for _, entry := range forecast {
		day := dateOnly(entry.Datetime)
		if day.Before(start) || day.After(end) {
			continue
		}

		rows = append(rows, models.WeatherResult{
			SearchID:         searchID,
			ForecastDatetime: entry.Datetime,
			Temp:             entry.Temp,
			FeelsLike:        entry.FeelsLike,
			Humidity:         entry.Humidity,
			Description:      entry.Description,
			WindSpeed:        entry.WindSpeed,
		})
		points = append(points, ForecastPoint{
			Datetime:    entry.DatetimeText,
			Temp:        entry.Temp,
			FeelsLike:   entry.FeelsLike,
			Humidity:    entry.Humidity,
			Description: entry.Description,
			WindSpeed:   entry.WindSpeed,
		})
	}

	if s.persist {
		// Пустой набор строк все равно фиксируется: диапазон без прогнозов
		// считается валидным пустым результатом, а не ошибкой
		if err := s.repo.CreateResults(ctx, rows); err != nil {
			s.compensate(ctx, searchID, true)
			return nil, newRollbackError(err)
		}
	}

	return &RangeResponse{
		City:    geo.Name,
		State:   geo.State,
		Country: geo.Country,
		Lat:     geo.Lat,
		Lon:     geo.Lon,
		Count:   len(points),
		Data:    points,
	}, nil
}

func (s *searchService) LocateCity(ctx context.Context, city, country, state string) (*LocationInfo, error) {
	if city == "" || country == "" {
		return nil, newValidationError("city and country are required")
	}

	geo, err := s.weather.Geocode(ctx, city, state, country)
	if err != nil {
		return nil, mapGeocodeErr(err)
	}

	return &LocationInfo{
		City:    geo.Name,
		State:   geo.State,
		Country: geo.Country,
		Lat:     geo.Lat,
		Lon:     geo.Lon,
	}, nil
}

// commitSingle вставка родителя и одного результата, при отказе на втором шаге
// родитель удаляется
func (s *searchService) commitSingle(ctx context.Context, search *models.WeatherSearch, current *clients.CurrentWeather, now time.Time) error {
	if err := s.repo.CreateSearch(ctx, search); err != nil {
		return newRollbackError(err)
	}

	result := models.WeatherResult{
		SearchID:         search.ID,
		ForecastDatetime: now,
		Temp:             current.Temp,
		FeelsLike:        current.FeelsLike,
		Humidity:         current.Humidity,
		Description:      current.Description,
		WindSpeed:        current.WindSpeed,
	}

	if err := s.repo.CreateResults(ctx, []models.WeatherResult{result}); err != nil {
		s.compensate(ctx, search.ID, false)
		return newRollbackError(err)
	}

	return nil
}

// compensate откат по принципу best-effort: ошибки удаления логируются,
// но исходную ошибку не подменяют
func (s *searchService) compensate(ctx context.Context, searchID uint, withResults bool) {
	if withResults {
		if err := s.repo.DeleteResultsBySearchID(ctx, searchID); err != nil {
			log.Printf("compensation: failed to delete results for search %d: %v", searchID, err)
		}
	}
	if err := s.repo.DeleteSearch(ctx, searchID); err != nil {
		log.Printf("compensation: failed to delete search %d: %v", searchID, err)
	}
}

func weatherInfo(current *clients.CurrentWeather) WeatherInfo {
	return WeatherInfo{
		Temp:        current.Temp,
		FeelsLike:   current.FeelsLike,
		Humidity:    current.Humidity,
		Description: current.Description,
		WindSpeed:   current.WindSpeed,
	}
}

func resolveRange(startDate, endDate string) (time.Time, time.Time, error) {
	start := dateOnly(time.Now().UTC())
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return time.Time{}, time.Time{}, newValidationError("Invalid date format (YYYY-MM-DD)")
		}
		start = parsed
	}

	end := start.AddDate(0, 0, maxRangeDays)
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return time.Time{}, time.Time{}, newValidationError("Invalid date format (YYYY-MM-DD)")
		}
		end = parsed
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, newValidationError("start_date must be <= end_date")
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, newValidationError("Range limited to 5 days max")
	}

	return start, end, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func mapGeocodeErr(err error) *APIError {
	var statusErr *clients.StatusError
	switch {
	case errors.Is(err, clients.ErrLocationNotFound):
		return newNotFoundError("City not found")
	case errors.Is(err, clients.ErrNotConfigured):
		return newInternalError("OpenWeather API key not configured")
	case errors.As(err, &statusErr):
		return newUpstreamError(statusErr.Status, "Geocoding API error")
	default:
		return newRollbackError(err)
	}
}

// mapRangeGeocodeErr диапазонный поиск сводит любой отказ геокодера к 404
func mapRangeGeocodeErr(err error) *APIError {
	var statusErr *clients.StatusError
	switch {
	case errors.Is(err, clients.ErrLocationNotFound), errors.As(err, &statusErr):
		return newNotFoundError("City not found")
	case errors.Is(err, clients.ErrNotConfigured):
		return newInternalError("OpenWeather API key not configured")
	default:
		return newRollbackError(err)
	}
}

func mapWeatherErr(err error) *APIError {
	var statusErr *clients.StatusError
	switch {
	case errors.Is(err, clients.ErrNotConfigured):
		return newInternalError("OpenWeather API key not configured")
	case errors.As(err, &statusErr):
		return newUpstreamError(statusErr.Status, "Weather API error")
	default:
		return newRollbackError(err)
	}
}

func mapForecastErr(err error) *APIError {
	var statusErr *clients.StatusError
	switch {
	case errors.Is(err, clients.ErrNotConfigured):
		return newInternalError("OpenWeather API key not configured")
	case errors.As(err, &statusErr):
		return newInternalError("Weather API error")
	default:
		return newRollbackError(err)
	}
}
