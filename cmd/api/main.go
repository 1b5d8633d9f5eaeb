package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/motormania/motormania-go/internal/clock"
	"github.com/motormania/motormania-go/internal/config"
	"github.com/motormania/motormania-go/internal/handler"
	"github.com/motormania/motormania-go/internal/middleware"
	"github.com/motormania/motormania-go/internal/repository"
	"github.com/motormania/motormania-go/internal/service"
	"github.com/motormania/motormania-go/internal/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	clk := clock.NewRealClock()
	tokenCfg := token.Config{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
	issuer := token.NewIssuer(tokenCfg, clk)
	validator := token.NewValidator(tokenCfg, clk)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewRefreshTokenRepository(db)
	garageRepo := repository.NewGarageRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	cartRepo := repository.NewCartRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	authService := service.NewAuthService(userRepo, sessionRepo, issuer, validator, clk)
	garageService := service.NewGarageService(garageRepo)
	catalogService := service.NewCatalogService(catalogRepo)
	cartService := service.NewCartService(cartRepo, catalogRepo, clk)
	favoriteService := service.NewFavoriteService(favoriteRepo, catalogRepo)

	authHandler := handler.NewAuthHandler(authService)
	garageHandler := handler.NewGarageHandler(garageService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartService)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/v1/auth/signup", authHandler.HandleSignup)
		r.Post("/api/v1/auth/login", authHandler.HandleLogin)
		r.Post("/api/v1/auth/refresh", authHandler.HandleRefresh)
	})

	r.Get("/api/v1/cars/brands", garageHandler.HandleListBrands)
	r.Get("/api/v1/cars/brands/{brandID}/models", garageHandler.HandleListModels)
	r.Get("/api/v1/products", catalogHandler.HandleListProducts)
	r.Get("/api/v1/products/{productID}", catalogHandler.HandleGetProduct)
	r.Get("/api/v1/categories", catalogHandler.HandleListCategories)
	r.Get("/api/v1/offers", catalogHandler.HandleListOffers)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(validator))

		r.Post("/api/v1/auth/logout", authHandler.HandleLogout)
		r.Get("/api/v1/auth/me", authHandler.HandleMe)

		r.Get("/api/v1/garage", garageHandler.HandleListGarage)
		r.Post("/api/v1/garage", garageHandler.HandleAddCar)
		r.Get("/api/v1/garage/default", garageHandler.HandleDefaultCar)
		r.Post("/api/v1/garage/default/cycle", garageHandler.HandleCycleDefaultCar)
		r.Delete("/api/v1/garage/{carID}", garageHandler.HandleDeleteCar)
		r.Put("/api/v1/garage/{carID}/default", garageHandler.HandleSetDefaultCar)

		r.Get("/api/v1/cart", cartHandler.HandleListCart)
		r.Post("/api/v1/cart", cartHandler.HandleSetCartItem)
		r.Delete("/api/v1/cart/{productID}", cartHandler.HandleRemoveCartItem)
		r.Post("/api/v1/cart/coupon", cartHandler.HandleApplyCoupon)

		r.Get("/api/v1/favorites", favoriteHandler.HandleListFavorites)
		r.Post("/api/v1/favorites/{productID}", favoriteHandler.HandleAddFavorite)
		r.Delete("/api/v1/favorites/{productID}", favoriteHandler.HandleRemoveFavorite)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
