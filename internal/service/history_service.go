package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"meteora/internal/models"
	"meteora/internal/repository"
	"meteora/internal/utils"

	"gorm.io/gorm"
)

type HistoryService interface {
	GetAll(ctx context.Context) (*HistoryList, error)
	GetByID(ctx context.Context, id uint) (*SearchAggregate, error)
	Filter(ctx context.Context, field, value string) (*FilteredHistoryList, error)
	Update(ctx context.Context, id uint, updates models.WeatherSearchUpdate) (*UpdateResult, error)
	Delete(ctx context.Context, id uint) (*DeleteResult, error)
	DeleteAll(ctx context.Context) error
	Export(ctx context.Context, format string) (string, error)
}

type historyService struct {
	repo      repository.SearchRepository
	outputDir string
}

func NewHistoryService(repo repository.SearchRepository, outputDir string) HistoryService {
	if outputDir == "" {
		outputDir = "./data/exports"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Printf("Failed to create export directory: %v", err)
	}

	return &historyService{
		repo:      repo,
		outputDir: outputDir,
	}
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SearchAggregate поиск вместе со всеми его результатами
type SearchAggregate struct {
	ID          uint                   `json:"id"`
	City        string                 `json:"city"`
	State       *string                `json:"state"`
	Country     string                 `json:"country"`
	ZipCode     *string                `json:"zip_code,omitempty"`
	Coordinates Coordinates            `json:"coordinates"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	CreatedAt   string                 `json:"created_at"`
	WeatherData []models.WeatherResult `json:"weather_data"`
}

type HistoryList struct {
	Total    int               `json:"total"`
	Searches []SearchAggregate `json:"searches"`
}

type FilteredHistoryList struct {
	Total    int               `json:"total"`
	Filter   map[string]string `json:"filter"`
	Searches []SearchAggregate `json:"searches"`
}

type UpdateResult struct {
	Message       string                `json:"message"`
	UpdatedFields []string              `json:"updated_fields"`
	Search        *models.WeatherSearch `json:"search"`
}

type DeletedSearch struct {
	ID        uint   `json:"id"`
	City      string `json:"city"`
	Country   string `json:"country"`
	CreatedAt string `json:"created_at"`
}

type DeleteResult struct {
	Message       string        `json:"message"`
	DeletedSearch DeletedSearch `json:"deleted_search"`
}

func (s *historyService) GetAll(ctx context.Context) (*HistoryList, error) {
	searches, err := s.repo.ListSearches(ctx)
	if err != nil {
		return nil, newInternalError("Database error: " + err.Error())
	}

	aggregates, err := s.aggregate(ctx, searches)
	if err != nil {
		return nil, err
	}

	return &HistoryList{
		Total:    len(aggregates),
		Searches: aggregates,
	}, nil
}

func (s *historyService) GetByID(ctx context.Context, id uint) (*SearchAggregate, error) {
	search, err := s.repo.GetSearchByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError(fmt.Sprintf("Search with id %d not found", id))
		}
		return nil, newInternalError("Database error: " + err.Error())
	}

	results, err := s.repo.ResultsBySearchID(ctx, id)
	if err != nil {
		return nil, newInternalError("Database error: " + err.Error())
	}

	agg := toAggregate(search, results)
	return &agg, nil
}

func (s *historyService) Filter(ctx context.Context, field, value string) (*FilteredHistoryList, error) {
	if value == "" {
		return nil, newValidationError("value query parameter is required")
	}

	searches, err := s.repo.FilterSearches(ctx, field, value)
	if err != nil {
		return nil, newInternalError("Database error: " + err.Error())
	}

	aggregates, err := s.aggregate(ctx, searches)
	if err != nil {
		return nil, err
	}

	return &FilteredHistoryList{
		Total:    len(aggregates),
		Filter:   map[string]string{field: value},
		Searches: aggregates,
	}, nil
}

func (s *historyService) Update(ctx context.Context, id uint, updates models.WeatherSearchUpdate) (*UpdateResult, error) {
	if _, err := s.repo.GetSearchByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError(fmt.Sprintf("Search with id %d not found", id))
		}
		return nil, newInternalError("Database error: " + err.Error())
	}

	fields := map[string]interface{}{}
	if updates.City != nil {
		fields["city"] = *updates.City
	}
	if updates.State != nil {
		fields["state"] = *updates.State
	}
	if updates.Country != nil {
		fields["country"] = *updates.Country
	}
	if updates.ZipCode != nil {
		fields["zip_code"] = *updates.ZipCode
	}
	if updates.Lat != nil {
		fields["lat"] = *updates.Lat
	}
	if updates.Lon != nil {
		fields["lon"] = *updates.Lon
	}

	// Даты нормализуются до календарного дня
	if updates.StartDate != nil {
		parsed, err := parseUpdateDate(*updates.StartDate, "start_date")
		if err != nil {
			return nil, err
		}
		fields["start_date"] = parsed
	}
	if updates.EndDate != nil {
		parsed, err := parseUpdateDate(*updates.EndDate, "end_date")
		if err != nil {
			return nil, err
		}
		fields["end_date"] = parsed
	}

	if len(fields) == 0 {
		return nil, newValidationError("No fields to update")
	}

	if err := s.repo.UpdateSearch(ctx, id, fields); err != nil {
		return nil, newInternalError("Database error: " + err.Error())
	}

	updated, err := s.repo.GetSearchByID(ctx, id)
	if err != nil {
		return nil, newInternalError("Database error: " + err.Error())
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	return &UpdateResult{
		Message:       "Search updated successfully",
		UpdatedFields: names,
		Search:        updated,
	}, nil
}

// Delete удаляет результаты раньше родителя
func (s *historyService) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	search, err := s.repo.GetSearchByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError(fmt.Sprintf("Search with id %d not found", id))
		}
		return nil, newInternalError("Database error: " + err.Error())
	}

	if err := s.repo.DeleteResultsBySearchID(ctx, id); err != nil {
		return nil, newInternalError("Database error: " + err.Error())
	}
	if err := s.repo.DeleteSearch(ctx, id); err != nil {
		return nil, newInternalError("Database error: " + err.Error())
	}

	return &DeleteResult{
		Message: "Search deleted successfully",
		DeletedSearch: DeletedSearch{
			ID:        search.ID,
			City:      search.City,
			Country:   search.Country,
			CreatedAt: search.CreatedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}

func (s *historyService) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return newInternalError("Database error: " + err.Error())
	}
	return nil
}

func (s *historyService) Export(ctx context.Context, format string) (string, error) {
	searches, err := s.repo.ListSearches(ctx)
	if err != nil {
		return "", newInternalError("Database error: " + err.Error())
	}

	if len(searches) == 0 {
		return "", newNotFoundError("No search history to export")
	}

	var rows []utils.HistoryExportRow
	for i := range searches {
		search := &searches[i]
		results, err := s.repo.ResultsBySearchID(ctx, search.ID)
		if err != nil {
			return "", newInternalError("Database error: " + err.Error())
		}
		rows = append(rows, utils.FlattenSearch(search, results)...)
	}

	timestamp := time.Now().UTC().Format("20060102_150405")

	switch format {
	case "csv":
		path := filepath.Join(s.outputDir, fmt.Sprintf("history_export_%s.csv", timestamp))
		if err := utils.CreateHistoryCSV(path, rows); err != nil {
			return "", newInternalError("failed to create CSV file: " + err.Error())
		}
		return path, nil

	case "excel", "xlsx":
		path := filepath.Join(s.outputDir, fmt.Sprintf("history_export_%s.xlsx", timestamp))
		if err := utils.CreateHistoryExcel(path, rows); err != nil {
			return "", newInternalError("failed to create Excel file: " + err.Error())
		}
		return path, nil

	default:
		return "", newValidationError("unsupported format, use 'csv' or 'xlsx'")
	}
}

func (s *historyService) aggregate(ctx context.Context, searches []models.WeatherSearch) ([]SearchAggregate, error) {
	aggregates := make([]SearchAggregate, 0, len(searches))
	for i := range searches {
		search := &searches[i]
		results, err := s.repo.ResultsBySearchID(ctx, search.ID)
		if err != nil {
			return nil, newInternalError("Database error: " + err.Error())
		}
		aggregates = append(aggregates, toAggregate(search, results))
	}
	return aggregates, nil
}

func toAggregate(search *models.WeatherSearch, results []models.WeatherResult) SearchAggregate {
	if results == nil {
		results = []models.WeatherResult{}
	}

	return SearchAggregate{
		ID:      search.ID,
		City:    search.City,
		State:   search.State,
		Country: search.Country,
		ZipCode: search.ZipCode,
		Coordinates: Coordinates{
			Lat: search.Lat,
			Lon: search.Lon,
		},
		StartDate:   search.StartDate.Format("2006-01-02"),
		EndDate:     search.EndDate.Format("2006-01-02"),
		CreatedAt:   search.CreatedAt.UTC().Format(time.RFC3339),
		WeatherData: results,
	}
}

func parseUpdateDate(value, field string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return dateOnly(parsed), nil
	}
	return time.Time{}, newValidationError(field + " must be YYYY-MM-DD or ISO datetime")
}
