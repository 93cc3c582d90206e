package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"minbar/internal/apihandlers"
)

var (
	serveAddr string
	servePort string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP read API",
	Long: `Starts an HTTP server exposing content intake, semantic search,
similarity lookups, candidate suggestions, and moderation reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		router := gin.Default()
		apihandlers.NewAPIHandler(appInstance).RegisterRoutes(router)

		listenAddr := fmt.Sprintf("%s:%s", serveAddr, servePort)
		log.WithField("addr", listenAddr).Info("Starting API server")
		if err := router.Run(listenAddr); err != nil {
			return fmt.Errorf("failed to run API server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost", "Address to listen on (e.g., '0.0.0.0' for all interfaces)")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
}
