package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"minbar/internal/tasks"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the periodic task scheduler",
	Long:  `Starts the Asynq scheduler that enqueues the unprocessed-content sweep on its configured cadence. Run exactly one scheduler per deployment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()
		cfg := appInstance.Config

		scheduler := asynq.NewScheduler(
			asynq.RedisClientOpt{
				Addr:     cfg.Redis.Address,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
			&asynq.SchedulerOpts{},
		)

		entryID, err := scheduler.Register(
			cfg.Scheduler.SweepSpec,
			asynq.NewTask(tasks.TypeSweepUnprocessed, nil),
			asynq.Queue(tasks.QueuePipeline),
			asynq.MaxRetry(0),
		)
		if err != nil {
			return fmt.Errorf("register sweep schedule: %w", err)
		}
		log.WithFields(log.Fields{
			"entry_id": entryID,
			"spec":     cfg.Scheduler.SweepSpec,
		}).Info("Registered unprocessed-content sweep")

		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		<-shutdown

		log.Info("Shutdown signal received, stopping scheduler")
		scheduler.Shutdown()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}
