package main

import (
	"context"
	"os"

	"github.com/ArowuTest/orgfees-backend/internal/config"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/logger"
	mongorepo "github.com/ArowuTest/orgfees-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/ArowuTest/orgfees-backend/pkg/mongodb"
	"github.com/spf13/cobra"
)

var configPath string

// app is what every command needs once connected
type app struct {
	cfg      *config.Config
	client   *mongodb.Client
	users    *services.UserService
	students *services.StudentService
}

func connect(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Configure(logger.Config{Level: cfg.Log.Level, Pretty: true})

	client, err := mongodb.NewClient(ctx, mongodb.Options{
		URI:        cfg.MongoDB.URI,
		Database:   cfg.MongoDB.Database,
		TermPrefix: cfg.MongoDB.TermPrefix,
		Timeout:    cfg.MongoDB.Timeout,
		OnTermOpen: mongorepo.EnsureTermIndexes,
	})
	if err != nil {
		return nil, err
	}
	db := client.Original()
	if err := mongorepo.EnsureOriginalIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	userRepo := mongorepo.NewUserRepository(db)
	orgRepo := mongorepo.NewOrganizationRepository(db)
	return &app{
		cfg:    cfg,
		client: client,
		users: services.NewUserService(userRepo, mongorepo.NewRoleRepository(db), orgRepo,
			mongorepo.NewSessionRepository(db)),
		students: services.NewStudentService(orgRepo, mongorepo.NewTermResolver(client)),
	}, nil
}

func (a *app) close() {
	if err := a.client.Disconnect(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
	}
}

// withApp connects before running fn and disconnects afterwards
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, a, args)
	}
}

func main() {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Maintenance commands for the organization fees backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding .env and config.yaml")
	root.AddCommand(seedCommand(), resetPasswordCommand(), importStudentsCommand())

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
