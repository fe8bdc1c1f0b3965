package repository

import (
	"context"
	"fmt"
	"strings"

	"meteora/internal/models"

	"gorm.io/gorm"
)

// Колонки, по которым разрешена фильтрация истории
var filterColumns = map[string]string{
	"city":    "city",
	"country": "country",
	"state":   "state",
	"zipcode": "zip_code",
}

type SearchRepository interface {
	CreateSearch(ctx context.Context, search *models.WeatherSearch) error
	CreateResults(ctx context.Context, results []models.WeatherResult) error
	GetSearchByID(ctx context.Context, id uint) (*models.WeatherSearch, error)
	ListSearches(ctx context.Context) ([]models.WeatherSearch, error)
	FilterSearches(ctx context.Context, field, value string) ([]models.WeatherSearch, error)
	ResultsBySearchID(ctx context.Context, searchID uint) ([]models.WeatherResult, error)
	UpdateSearch(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteSearch(ctx context.Context, id uint) error
	DeleteResultsBySearchID(ctx context.Context, searchID uint) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

type searchRepository struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) CreateSearch(ctx context.Context, search *models.WeatherSearch) error {
	return r.db.WithContext(ctx).Create(search).Error
}

func (r *searchRepository) CreateResults(ctx context.Context, results []models.WeatherResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(results, 100).Error
}

func (r *searchRepository) GetSearchByID(ctx context.Context, id uint) (*models.WeatherSearch, error) {
	var search models.WeatherSearch
	err := r.db.WithContext(ctx).
		First(&search, id).
		Error
	if err != nil {
		return nil, err
	}
	return &search, nil
}

func (r *searchRepository) ListSearches(ctx context.Context) ([]models.WeatherSearch, error) {
	var searches []models.WeatherSearch
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&searches).
		Error
	return searches, err
}

// FilterSearches регистронезависимый поиск подстроки; для state значения
// "null"/"none" означают "state отсутствует", а не текст
func (r *searchRepository) FilterSearches(ctx context.Context, field, value string) ([]models.WeatherSearch, error) {
	column, ok := filterColumns[field]
	if !ok {
		return nil, fmt.Errorf("unsupported filter field: %s", field)
	}

	q := r.db.WithContext(ctx)
	if column == "state" && (strings.EqualFold(value, "null") || strings.EqualFold(value, "none")) {
		q = q.Where("state IS NULL")
	} else {
		// LOWER/LIKE вместо ILIKE, работает и на Postgres, и на SQLite
		q = q.Where(fmt.Sprintf("LOWER(%s) LIKE ?", column), "%"+strings.ToLower(value)+"%")
	}

	var searches []models.WeatherSearch
	err := q.Order("created_at DESC").Find(&searches).Error
	return searches, err
}

func (r *searchRepository) ResultsBySearchID(ctx context.Context, searchID uint) ([]models.WeatherResult, error) {
	var results []models.WeatherResult
	err := r.db.WithContext(ctx).
		Where("search_id = ?", searchID).
		Order("forecast_datetime ASC").
		Find(&results).
		Error
	return results, err
}

func (r *searchRepository) UpdateSearch(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.WeatherSearch{}).
		Where("id = ?", id).
		Updates(fields).
		Error
}

func (r *searchRepository) DeleteSearch(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Delete(&models.WeatherSearch{}, id).
		Error
}

func (r *searchRepository) DeleteResultsBySearchID(ctx context.Context, searchID uint) error {
	return r.db.WithContext(ctx).
		Where("search_id = ?", searchID).
		Delete(&models.WeatherResult{}).
		Error
}

// DeleteAll сначала дочерние строки, потом родительские
func (r *searchRepository) DeleteAll(ctx context.Context) error {
	tx := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := tx.Delete(&models.WeatherResult{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.WeatherSearch{}).Error
}

func (r *searchRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WeatherSearch{}).
		Count(&count).
		Error
	return count, err
}
