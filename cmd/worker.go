package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"minbar/internal/app"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background pipeline worker",
	Long:  `Starts the Asynq worker process that runs moderation, tagging, embedding, interest updates, and the notification consumers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		if err := runWorker(appInstance); err != nil {
			log.WithError(err).Error("Worker exited with error")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(appInstance *app.App) error {
	cfg := appInstance.Config

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      cfg.Worker.Queues,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.WithFields(log.Fields{
					"task_type": task.Type(),
					"payload":   string(task.Payload()),
				}).WithError(err).Error("Task failed")
			}),
		},
	)

	mux := asynq.NewServeMux()
	appInstance.PipelineHandlers().Register(mux)

	log.WithFields(log.Fields{
		"concurrency": cfg.Worker.Concurrency,
		"queues":      cfg.Worker.Queues,
	}).Info("Starting pipeline worker")
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start Asynq server: %w", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Info("Shutdown signal received, draining in-flight tasks")
	srv.Stop()
	srv.Shutdown()

	log.Info("Worker shutdown complete")
	return nil
}
