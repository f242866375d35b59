package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/orgfees-backend/api/routes"
	"github.com/ArowuTest/orgfees-backend/internal/config"
	"github.com/ArowuTest/orgfees-backend/internal/handlers"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/logger"
	mongorepo "github.com/ArowuTest/orgfees-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/ArowuTest/orgfees-backend/pkg/jwt"
	"github.com/ArowuTest/orgfees-backend/pkg/mongodb"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Configure(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
	client, err := mongodb.NewClient(ctx, mongodb.Options{
		URI:        cfg.MongoDB.URI,
		Database:   cfg.MongoDB.Database,
		TermPrefix: cfg.MongoDB.TermPrefix,
		Timeout:    cfg.MongoDB.Timeout,
		OnTermOpen: mongorepo.EnsureTermIndexes,
	})
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err := mongorepo.EnsureOriginalIndexes(ctx, client.Original()); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Failed to create indexes")
	}
	cancel()
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()

	db := client.Original()
	userRepo := mongorepo.NewUserRepository(db)
	roleRepo := mongorepo.NewRoleRepository(db)
	orgRepo := mongorepo.NewOrganizationRepository(db)
	sessionRepo := mongorepo.NewSessionRepository(db)
	terms := mongorepo.NewTermResolver(client)

	tokens := jwt.NewTokenService(jwt.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})

	authService := services.NewAuthService(userRepo, roleRepo, sessionRepo, tokens)
	userService := services.NewUserService(userRepo, roleRepo, orgRepo, sessionRepo)
	roleService := services.NewRoleService(roleRepo, userRepo)
	orgService := services.NewOrganizationService(orgRepo, userRepo, terms)
	categoryService := services.NewCategoryService(orgRepo, terms)
	studentService := services.NewStudentService(orgRepo, terms)
	transactionService := services.NewTransactionService(orgRepo, userRepo, terms)
	prelistingService := services.NewPrelistingService(orgRepo, terms, transactionService)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		Authenticator:       authService,
		AuthHandler:         handlers.NewAuthHandler(authService, handlers.CookieConfig{Secure: cfg.Server.CookieSecure, Domain: cfg.Server.CookieDomain}),
		UserHandler:         handlers.NewUserHandler(userService),
		RoleHandler:         handlers.NewRoleHandler(roleService),
		OrganizationHandler: handlers.NewOrganizationHandler(orgService),
		CategoryHandler:     handlers.NewCategoryHandler(categoryService),
		StudentHandler:      handlers.NewStudentHandler(studentService),
		TransactionHandler:  handlers.NewTransactionHandler(transactionService),
		PrelistingHandler:   handlers.NewPrelistingHandler(prelistingService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exiting")
}
