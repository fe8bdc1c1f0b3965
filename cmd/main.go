package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meteora/internal/clients"
	"meteora/internal/config"
	"meteora/internal/handlers"
	"meteora/internal/middleware"
	"meteora/internal/repository"
	"meteora/internal/service"
	"meteora/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Загрузка .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== Weather API Backend Starting ===")

	// Загрузка конфигурации
	cfg := config.Load()

	// Подключение к PostgreSQL
	db, err := database.Connect(database.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// Автомиграция моделей
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Репозитории
	searchRepo := repository.NewSearchRepository(db)

	// Клиенты внешних API. Отсутствие ключа не валит процесс:
	// зависимый эндпоинт вернет ошибку при вызове
	weatherClient := clients.NewOpenWeatherClient(clients.OpenWeatherConfig{
		APIKey:      cfg.OpenWeather.APIKey,
		GeoURL:      cfg.OpenWeather.GeoURL,
		WeatherURL:  cfg.OpenWeather.WeatherURL,
		ForecastURL: cfg.OpenWeather.ForecastURL,
		Timeout:     cfg.OpenWeather.Timeout,
	})
	groqClient := clients.NewGroqClient(clients.GroqConfig{
		APIKey: cfg.Groq.APIKey,
		URL:    cfg.Groq.URL,
		Model:  cfg.Groq.Model,
	})
	youtubeClient := clients.NewYouTubeClient(clients.YouTubeConfig{
		APIKey: cfg.YouTube.APIKey,
		URL:    cfg.YouTube.URL,
	})

	// Сервисы
	searchService := service.NewSearchService(searchRepo, weatherClient, true)
	historyService := service.NewHistoryService(searchRepo, cfg.Export.OutputDir)

	// Хендлеры
	weatherHandler := handlers.NewWeatherHandler(searchService)
	crudHandler := handlers.NewCrudHandler(historyService)
	mapHandler := handlers.NewMapHandler(searchService)
	llmHandler := handlers.NewLLMHandler(groqClient)
	youtubeHandler := handlers.NewYouTubeHandler(youtubeClient)

	// Инициализация Gin
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS для фронтенда
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Weather API is running!"})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := r.Group("/api")

	// Поиск погоды с записью в историю
	weather := api.Group("/weather")
	weather.GET("/search/by-city", weatherHandler.SearchByCity)
	weather.GET("/search/by-zip", weatherHandler.SearchByZip)
	weather.GET("/search/by-coords", weatherHandler.SearchByCoords)
	weather.GET("/weather/by-city-range", weatherHandler.SearchByCityRange)

	// CRUD по истории поисков
	crud := weather.Group("/crud")
	crud.GET("/history", crudHandler.GetHistory)
	crud.DELETE("/history/all", crudHandler.DeleteAllHistory)
	crud.GET("/history/export", crudHandler.ExportHistory)
	crud.GET("/history/search/country", crudHandler.FilterByCountry)
	crud.GET("/history/search/city", crudHandler.FilterByCity)
	crud.GET("/history/search/state", crudHandler.FilterByState)
	crud.GET("/history/search/zipcode", crudHandler.FilterByZipcode)
	crud.GET("/history/:id", crudHandler.GetHistoryByID)
	crud.PUT("/history/:id", crudHandler.UpdateHistory)
	crud.DELETE("/history/:id", crudHandler.DeleteHistory)

	// Геокодирование для карты
	api.GET("/map/search/coords/by-city", mapHandler.GetCoordsByCity)

	// Описания климата и достопримечательностей через LLM
	api.POST("/llm/desc_climate", llmHandler.DescribeClimate)
	api.POST("/llm/desc_locations", llmHandler.DescribePlaces)

	// Поиск видео
	api.GET("/youtube/search_locations", youtubeHandler.SearchLocations)
	api.GET("/youtube/search_weather", youtubeHandler.SearchWeather)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)
		log.Printf("API available at http://localhost:%s/api", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited properly")
}
