package pipeline

import (
	"github.com/hibiken/asynq"

	"minbar/internal/notify"
	"minbar/internal/tasks"
)

// Handlers bundles the pipeline stages for worker registration.
type Handlers struct {
	Coordinator *Coordinator
	Tagging     *TaggingStage
	Embedding   *EmbeddingStage
	Interests   *InterestUpdater
	Sweeper     *Sweeper
}

// Register wires every pipeline task type into the mux, plus the logging
// consumers for the notify queue.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeProcessContent, h.Coordinator.HandleProcessContent)
	mux.HandleFunc(tasks.TypeTagContent, h.Tagging.HandleTagContent)
	mux.HandleFunc(tasks.TypeEmbedContent, h.Embedding.HandleEmbedContent)
	mux.HandleFunc(tasks.TypeSweepUnprocessed, h.Sweeper.HandleSweep)
	mux.HandleFunc(tasks.TypeUpdateInterests, h.Interests.HandleUpdateInterests)
	mux.HandleFunc(tasks.TypeSeedInterests, h.Tagging.HandleSeedInterests)
	notify.LogDeliveryHandlers(mux)
}
