package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"minbar/internal/app"
	"minbar/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "minbar",
	Short: "Minbar content enrichment pipeline",
	Long: `Minbar moderates, tags, embeds, and matches posts and job postings.
Run the worker for the pipeline stages, the scheduler for periodic sweeps,
and serve for the read API.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appInstance, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Custom context key type to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(migrateCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database connectivity and other diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		fmt.Println("Checking database connectivity...")
		if err := appInstance.ContentStore.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		fmt.Println("Database connection successful.")

		fmt.Printf("Embedding backend: %s (%s)\n",
			appInstance.EmbeddingService.Name(), appInstance.EmbeddingService.ModelName())
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		if err := appInstance.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Schema up to date.")
		return nil
	},
}
