package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remold-service/internal/cache"
	"remold-service/internal/config"
	"remold-service/internal/database"
	"remold-service/internal/handlers"
	"remold-service/internal/middleware"
	"remold-service/internal/realtime"
	"remold-service/internal/repository"
	"remold-service/internal/routes"
	"remold-service/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error cargando configuración: %w", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("error creando logger: %w", err)
	}
	defer logger.Sync()

	// Base de datos
	postgresDB, err := database.NewPostgresDB(
		cfg.Database.URL,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
		logger,
	)
	if err != nil {
		return fmt.Errorf("error conectando a PostgreSQL: %w", err)
	}
	defer postgresDB.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir, logger); err != nil {
			return fmt.Errorf("error ejecutando migraciones: %w", err)
		}
	}

	redisDB, err := database.NewRedisDB(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		return fmt.Errorf("error conectando a Redis: %w", err)
	}
	defer redisDB.Close()

	// Repositories
	stockRepo, err := repository.NewStockRepository(postgresDB.DB)
	if err != nil {
		return fmt.Errorf("error creando stock repository: %w", err)
	}
	recetaRepo, err := repository.NewRecetaRepository(postgresDB.DB)
	if err != nil {
		return fmt.Errorf("error creando receta repository: %w", err)
	}
	produccionRepo, err := repository.NewProduccionRepository(postgresDB.DB)
	if err != nil {
		return fmt.Errorf("error creando produccion repository: %w", err)
	}
	usuarioRepo, err := repository.NewUsuarioRepository(postgresDB.DB)
	if err != nil {
		return fmt.Errorf("error creando usuario repository: %w", err)
	}
	finanzasRepo, err := repository.NewFinanzasRepository(postgresDB.DB)
	if err != nil {
		return fmt.Errorf("error creando finanzas repository: %w", err)
	}

	// Cache y realtime
	stockCache := cache.NewStockCache(redisDB.Client, 1000, 5*time.Minute, logger)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()

	hub := realtime.NewHub(redisDB, logger)
	go hub.Run(hubCtx)

	// Services. El dashboard va primero: stock y recetas le invalidan el
	// resumen cacheado tras cada escritura.
	dashboardService := services.NewDashboardService(produccionRepo, stockRepo, recetaRepo, redisDB, stockCache, logger)
	stockService := services.NewStockService(stockRepo, stockCache, hub, dashboardService, logger)
	recetaService := services.NewRecetaService(recetaRepo, produccionRepo, hub, dashboardService, logger)
	produccionService := services.NewProduccionService(produccionRepo, recetaRepo, stockService, hub, logger)
	authService := services.NewAuthService(usuarioRepo, cfg.JWT.Secret, cfg.JWT.ExpiryHours, logger)
	finanzasService := services.NewFinanzasService(finanzasRepo, recetaRepo, stockRepo, logger)

	// HTTP
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	router.Use(cors.New(corsConfig))

	h := &routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, logger),
		Receta:     handlers.NewRecetaHandler(recetaService, logger),
		Produccion: handlers.NewProduccionHandler(produccionService, logger),
		Stock:      handlers.NewStockHandler(stockService, logger),
		Finanzas:   handlers.NewFinanzasHandler(finanzasService, logger),
		Dashboard:  handlers.NewDashboardHandler(dashboardService, logger),
		Realtime:   handlers.NewRealtimeHandler(hub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins, logger),
	}

	healthChecker := middleware.NewHealthChecker(postgresDB, redisDB, logger)
	routes.SetupRoutes(router, h, healthChecker, cfg.JWT.Secret)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		middleware.ServerInfo(cfg.Server.Port, logger)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Error en el servidor HTTP", zap.Error(err))
		}
	}()

	// Apagado controlado
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Apagando servidor...")
	hubCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error apagando el servidor: %w", err)
	}

	logger.Info("Servidor detenido")
	return nil
}
