package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"meteora/internal/models"
)

// HistoryExportRow плоская строка экспорта: поля поиска + одно измерение
type HistoryExportRow struct {
	SearchID         uint
	City             string
	State            string
	Country          string
	ZipCode          string
	Lat              float64
	Lon              float64
	StartDate        string
	EndDate          string
	CreatedAt        string
	ForecastDatetime string
	Temp             float64
	FeelsLike        float64
	Humidity         int
	Description      string
	WindSpeed        float64
}

var exportHeaders = []string{
	"search_id", "city", "state", "country", "zip_code", "lat", "lon",
	"start_date", "end_date", "created_at",
	"forecast_datetime", "temp", "feels_like", "humidity", "description", "wind_speed",
}

// FlattenSearch разворачивает поиск в строки экспорта, по одной на измерение.
// Поиск без измерений дает одну строку с пустыми погодными колонками.
func FlattenSearch(search *models.WeatherSearch, results []models.WeatherResult) []HistoryExportRow {
	base := HistoryExportRow{
		SearchID:  search.ID,
		City:      search.City,
		Country:   search.Country,
		Lat:       search.Lat,
		Lon:       search.Lon,
		StartDate: search.StartDate.Format("2006-01-02"),
		EndDate:   search.EndDate.Format("2006-01-02"),
		CreatedAt: search.CreatedAt.UTC().Format(time.RFC3339),
	}
	if search.State != nil {
		base.State = *search.State
	}
	if search.ZipCode != nil {
		base.ZipCode = *search.ZipCode
	}

	if len(results) == 0 {
		return []HistoryExportRow{base}
	}

	rows := make([]HistoryExportRow, 0, len(results))
	for _, result := range results {
		row := base
		row.ForecastDatetime = result.ForecastDatetime.UTC().Format("2006-01-02 15:04:05")
		row.Temp = result.Temp
		row.FeelsLike = result.FeelsLike
		row.Humidity = result.Humidity
		row.Description = result.Description
		row.WindSpeed = result.WindSpeed
		rows = append(rows, row)
	}
	return rows
}

func CreateHistoryCSV(filepath string, rows []HistoryExportRow) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.SearchID), 10),
			row.City,
			row.State,
			row.Country,
			row.ZipCode,
			fmt.Sprintf("%.4f", row.Lat),
			fmt.Sprintf("%.4f", row.Lon),
			row.StartDate,
			row.EndDate,
			row.CreatedAt,
			row.ForecastDatetime,
			fmt.Sprintf("%.2f", row.Temp),
			fmt.Sprintf("%.2f", row.FeelsLike),
			strconv.Itoa(row.Humidity),
			row.Description,
			fmt.Sprintf("%.2f", row.WindSpeed),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// CreateHistoryExcel создает Excel файл с историей поисков
func CreateHistoryExcel(filepath string, rows []HistoryExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "History"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for rowIdx, row := range rows {
		rowNum := rowIdx + 2 // Заголовок в первой строке

		values := []interface{}{
			row.SearchID, row.City, row.State, row.Country, row.ZipCode,
			row.Lat, row.Lon, row.StartDate, row.EndDate, row.CreatedAt,
			row.ForecastDatetime, row.Temp, row.FeelsLike, row.Humidity,
			row.Description, row.WindSpeed,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			f.SetCellValue(sheet, cell, value)
		}
	}

	for i := 1; i <= len(exportHeaders); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(sheet, colName, colName, 18)
	}

	createInfoSheet(f, rows)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(filepath)
}

func createInfoSheet(f *excelize.File, rows []HistoryExportRow) {
	f.NewSheet("Info")

	searchIDs := map[uint]struct{}{}
	for _, row := range rows {
		searchIDs[row.SearchID] = struct{}{}
	}

	f.SetCellValue("Info", "A1", "Report Generated")
	f.SetCellValue("Info", "B1", time.Now().UTC().Format("2006-01-02 15:04:05"))
	f.SetCellValue("Info", "A2", "Total Searches")
	f.SetCellValue("Info", "B2", len(searchIDs))
	f.SetCellValue("Info", "A3", "Total Rows")
	f.SetCellValue("Info", "B3", len(rows))
}
