package models

import (
	"time"
)

// WeatherSearch запись об одном поиске погоды (родительская таблица)
// ВАЖНО: State и ZipCode указатели, потому что NULL и пустая строка это разные значения
type WeatherSearch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	City      string    `gorm:"not null" json:"city"`
	State     *string   `json:"state"`
	Country   string    `gorm:"not null" json:"country"`
	ZipCode   *string   `gorm:"column:zip_code" json:"zip_code,omitempty"`
	Lat       float64   `gorm:"not null" json:"lat"`
	Lon       float64   `gorm:"not null" json:"lon"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Results []WeatherResult `gorm:"foreignKey:SearchID" json:"-"`
}

func (WeatherSearch) TableName() string {
	return "weather_searches"
}

// WeatherResult одно измерение/прогноз, привязанное к поиску
type WeatherResult struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SearchID         uint      `gorm:"index;not null" json:"search_id"`
	ForecastDatetime time.Time `gorm:"not null" json:"forecast_datetime"`
	Temp             float64   `gorm:"type:numeric(6,2)" json:"temp"`
	FeelsLike        float64   `gorm:"type:numeric(6,2)" json:"feels_like"`
	Humidity         int       `json:"humidity"`
	Description      string    `json:"description"`
	WindSpeed        float64   `gorm:"type:numeric(6,2)" json:"wind_speed"`
}

func (WeatherResult) TableName() string {
	return "weather_results"
}

// WeatherSearchUpdate частичное обновление поиска, все поля опциональны
type WeatherSearchUpdate struct {
	City      *string  `json:"city"`
	State     *string  `json:"state"`
	Country   *string  `json:"country"`
	ZipCode   *string  `json:"zip_code"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
}
