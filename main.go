package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api/handlers"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/config"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const shutdownTimeout = 15 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "pgb-eventscheduler",
		Short: "PGB Event Scheduler API",
		Long:  `Backend for requesting, approving and resourcing provincial government events.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(cleanupCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(resetPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the http api, realtime endpoints and scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	a := handlers.App{Config: *config.New()}
	if err := a.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		zap.S().Infow("event scheduler api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			a.Close(context.Background())
			return err
		}
	case <-ctx.Done():
		zap.S().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Warnw("graceful shutdown failed", "error", err)
	}
	a.Close(shutdownCtx)
	return nil
}

// connected builds an App with its stores and hooks but no http server
func connected() (*handlers.App, error) {
	a := &handlers.App{Config: *config.New()}
	if err := a.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := a.Setup(); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove past availability overrides and complete finished events once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := connected()
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			ctx := cmd.Context()
			res, err := a.Scheduler.CleanupPastAvailability(ctx)
			if err != nil {
				return fmt.Errorf("failed to clean up availability: %w", err)
			}
			completed, err := a.Scheduler.AutoCompleteEvents(ctx)
			if err != nil {
				return fmt.Errorf("failed to complete events: %w", err)
			}
			fmt.Printf("removed %d resource and %d location overrides before %s, completed %d events\n",
				res.ResourceDeleted, res.LocationDeleted, res.Before, completed)
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var req models.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin or superadmin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Role != models.RoleAdmin && req.Role != models.RoleSuperAdmin {
				return fmt.Errorf("role must be %s or %s", models.RoleAdmin, models.RoleSuperAdmin)
			}
			if len(req.Password) < 8 {
				return errors.New("password must be at least 8 characters")
			}
			a, err := connected()
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			user, err := handlers.NewUser(req)
			if err != nil {
				return err
			}
			if err := a.Stores.Users.InsertOne(cmd.Context(), user); err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Printf("created %s %s (%s)\n", user.Role, user.Username, user.ID.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "login name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&req.Role, "role", models.RoleSuperAdmin, "admin or superadmin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func resetPasswordCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an account and reactivate it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 {
				return errors.New("password must be at least 8 characters")
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			a, err := connected()
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			ctx := cmd.Context()
			user, err := a.Stores.Users.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
			if err != nil {
				return fmt.Errorf("failed to find %s: %w", email, err)
			}
			update := bson.M{"$set": bson.M{
				"password":  string(hashed),
				"status":    handlers.UserStatusActive,
				"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
			}}
			if err := a.Stores.Users.UpdateOne(ctx, user.ID, update); err != nil {
				return fmt.Errorf("failed to update password: %w", err)
			}
			fmt.Printf("password reset for %s (%s)\n", user.Username, user.ID.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address of the account")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
