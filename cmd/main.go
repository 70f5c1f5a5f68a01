package main

import (
	"fmt"
	"os"

	"clinic-management/cmd/bootstrap"
	"clinic-management/internal/infrastructure/database"
	"clinic-management/internal/repository"
	"clinic-management/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinic-server",
		Short:         "Clinic appointment booking and management service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(makeSuperAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Initialize application with all dependencies
			app, err := bootstrap.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			// Run the application
			app.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	run := func(step func(*database.Migrator) error) error {
		app, err := bootstrap.NewWithDatabase()
		if err != nil {
			return err
		}
		defer app.Close()

		migrator, err := database.NewMigrator(app.DB, app.Log)
		if err != nil {
			return err
		}
		return step(migrator)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run((*database.Migrator).Up)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run((*database.Migrator).Down)
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert built-in roles, permissions and specializations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.NewWithDatabase()
			if err != nil {
				return err
			}
			defer app.Close()

			return database.NewSeeder(app.DB, app.Log).Seed(cmd.Context())
		},
	}
}

func makeSuperAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "make-super-admin",
		Short: "Grant the super-admin role to an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")

			app, err := bootstrap.NewWithDatabase()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := database.NewSeeder(app.DB, app.Log).MakeSuperAdmin(cmd.Context(), email); err != nil {
				return err
			}

			// Cached permissions would hide the new role until they expire
			if err := app.ConnectRedis(); err != nil {
				app.Log.Warnf("Skipping ACL cache flush: %v", err)
				return nil
			}
			aclCache := service.NewPermissionCache(app.RedisClient, repository.NewRoleRepository(app.DB), app.Log)
			return aclCache.InvalidateAll(cmd.Context())
		},
	}
	cmd.Flags().String("email", "", "Email of the user to promote")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
