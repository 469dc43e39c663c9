package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/foodreg/sampletrail/pkg/channels/gochannel"
	"github.com/foodreg/sampletrail/pkg/channels/kafka"
	"github.com/foodreg/sampletrail/pkg/eventbus"
)

// NewEventBus creates an event bus instance based on the provider.
// gochannel keeps events in-process; kafka fans them out across instances.
func NewEventBus(provider string, logger *slog.Logger) *eventbus.WatermillEventBus {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "sampletrail")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	case "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create in-process pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
