package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Классифицированные отказы провайдеров
var (
	// ErrLocationNotFound провайдер не нашел локацию (пустой ответ геокодера)
	ErrLocationNotFound = errors.New("location not found")
	// ErrNotConfigured не задан обязательный ключ API
	ErrNotConfigured = errors.New("API key not configured")
)

// StatusError провайдер ответил не-2xx статусом
type StatusError struct {
	Provider string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d", e.Provider, e.Status)
}

type GeoLocation struct {
	Name    string
	State   *string
	Country string
	Lat     float64
	Lon     float64
}

type CurrentWeather struct {
	City        string
	State       *string
	Country     string
	Lat         float64
	Lon         float64
	Temp        float64
	FeelsLike   float64
	Humidity    int
	Description string
	WindSpeed   float64
	ObservedAt  time.Time
}

type ForecastEntry struct {
	Datetime     time.Time
	DatetimeText string
	Temp         float64
	FeelsLike    float64
	Humidity     int
	Description  string
	WindSpeed    float64
}

type OpenWeatherClient interface {
	Geocode(ctx context.Context, city, state, country string) (*GeoLocation, error)
	CurrentByCoords(ctx context.Context, lat, lon float64) (*CurrentWeather, error)
	CurrentByZip(ctx context.Context, zipCode, country string) (*CurrentWeather, error)
	Forecast(ctx context.Context, lat, lon float64) ([]ForecastEntry, error)
}

type openWeatherClient struct {
	apiKey      string
	geoURL      string
	weatherURL  string
	forecastURL string
	client      *http.Client
}

type OpenWeatherConfig struct {
	APIKey      string
	GeoURL      string
	WeatherURL  string
	ForecastURL string
	Timeout     time.Duration
}

func NewOpenWeatherClient(config OpenWeatherConfig) OpenWeatherClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &openWeatherClient{
		apiKey:      config.APIKey,
		geoURL:      config.GeoURL,
		weatherURL:  config.WeatherURL,
		forecastURL: config.ForecastURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type geoEntry struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   *string `json:"state"`
}

type weatherResponse struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name  string  `json:"name"`
	State *string `json:"state"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		DtTxt string `json:"dt_txt"`
	} `json:"list"`
}

func (c *openWeatherClient) Geocode(ctx context.Context, city, state, country string) (*GeoLocation, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenWeather: %w", ErrNotConfigured)
	}

	// Геокодер принимает "city,state,country" либо "city,country"
	query := city + "," + country
	if state != "" {
		query = city + "," + state + "," + country
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("limit", "1")
	params.Add("appid", c.apiKey)

	var entries []geoEntry
	if err := c.getJSON(ctx, c.geoURL+"?"+params.Encode(), "Geocoding", &entries); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, ErrLocationNotFound
	}

	// Используется только первое совпадение, без доуточнения
	geo := entries[0]
	return &GeoLocation{
		Name:    geo.Name,
		State:   geo.State,
		Country: geo.Country,
		Lat:     geo.Lat,
		Lon:     geo.Lon,
	}, nil
}

func (c *openWeatherClient) CurrentByCoords(ctx context.Context, lat, lon float64) (*CurrentWeather, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenWeather: %w", ErrNotConfigured)
	}

	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Add("appid", c.apiKey)
	params.Add("units", "metric")

	return c.fetchCurrent(ctx, c.weatherURL+"?"+params.Encode())
}

func (c *openWeatherClient) CurrentByZip(ctx context.Context, zipCode, country string) (*CurrentWeather, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenWeather: %w", ErrNotConfigured)
	}

	params := url.Values{}
	params.Add("zip", zipCode+","+country)
	params.Add("appid", c.apiKey)
	params.Add("units", "metric")

	return c.fetchCurrent(ctx, c.weatherURL+"?"+params.Encode())
}

func (c *openWeatherClient) Forecast(ctx context.Context, lat, lon float64) ([]ForecastEntry, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenWeather: %w", ErrNotConfigured)
	}

	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Add("appid", c.apiKey)
	params.Add("units", "metric")

	var data forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"?"+params.Encode(), "Weather", &data); err != nil {
		return nil, err
	}

	entries := make([]ForecastEntry, 0, len(data.List))
	for _, item := range data.List {
		if len(item.Weather) == 0 {
			return nil, fmt.Errorf("no weather conditions in forecast entry")
		}
		entries = append(entries, ForecastEntry{
			Datetime:     time.Unix(item.Dt, 0).UTC(),
			DatetimeText: item.DtTxt,
			Temp:         item.Main.Temp,
			FeelsLike:    item.Main.FeelsLike,
			Humidity:     item.Main.Humidity,
			Description:  item.Weather[0].Description,
			WindSpeed:    item.Wind.Speed,
		})
	}

	return entries, nil
}

func (c *openWeatherClient) fetchCurrent(ctx context.Context, reqURL string) (*CurrentWeather, error) {
	var data weatherResponse
	if err := c.getJSON(ctx, reqURL, "Weather", &data); err != nil {
		return nil, err
	}

	// Ответ без блока weather считается битым, значения по умолчанию не подставляются
	if len(data.Weather) == 0 {
		return nil, fmt.Errorf("no weather conditions returned from API")
	}

	return &CurrentWeather{
		City:        data.Name,
		State:       data.State,
		Country:     data.Sys.Country,
		Lat:         data.Coord.Lat,
		Lon:         data.Coord.Lon,
		Temp:        data.Main.Temp,
		FeelsLike:   data.Main.FeelsLike,
		Humidity:    data.Main.Humidity,
		Description: data.Weather[0].Description,
		WindSpeed:   data.Wind.Speed,
		ObservedAt:  time.Unix(data.Dt, 0).UTC(),
	}, nil
}

func (c *openWeatherClient) getJSON(ctx context.Context, reqURL, provider string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "Meteora/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Provider: provider, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}

	return nil
}
