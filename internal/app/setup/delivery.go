package setup

import (
	"github.com/LavaJover/shvark-signal-service/internal/delivery/consumer"
	"github.com/LavaJover/shvark-signal-service/internal/delivery/http/handlers"
	"github.com/gin-gonic/gin"
)

func InitializeRouter(deps *Dependencies, ucs *UseCases) *gin.Engine {
	log := deps.Log.Named("http")
	return handlers.NewRouter(deps.Config.Env, log,
		handlers.NewSignalHandler(ucs.Signal, ucs.Gate, log),
		&handlers.OperationHandler{
			Lifecycle:   ucs.Lifecycle,
			Operations:  deps.Repositories.Operations,
			Prices:      deps.Prices,
			Eligibility: ucs.Eligibility,
			Users:       deps.Users,
			Log:         log,
		},
		&handlers.AffiliateHandler{Usecase: ucs.Affiliate},
	)
}

// InitializeConsumer returns nil when kafka is disabled.
func InitializeConsumer(deps *Dependencies, ucs *UseCases) *consumer.SignalConsumer {
	if deps.Subscriber == nil {
		return nil
	}
	kafkaCfg := deps.Config.KafkaService
	return consumer.NewSignalConsumer(deps.Subscriber, ucs.Signal, kafkaCfg.SignalsTopic, kafkaCfg.GroupID, deps.Log.Named("consumer"))
}
