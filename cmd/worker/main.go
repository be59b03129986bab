// Command worker consumes telemetry events from Kafka and forwards them to
// Loki, keeping log shipping off the server's request path.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"

	"wtrfll/server/internal/config"
	"wtrfll/server/internal/telemetry"
	"wtrfll/server/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS must be set")
	}
	if cfg.LokiURL == "" {
		log.Fatal("worker: LOKI_URL must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: cfg.KafkaGroupID,
		Topic:   cfg.TelemetryKafkaTopic,
	})
	defer reader.Close()

	sink := loki.NewSink(cfg.LokiURL, map[string]string{"env": cfg.Env, "source": "worker"})

	log.Printf("worker: consuming %s as %s", cfg.TelemetryKafkaTopic, cfg.KafkaGroupID)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Print("worker: shutting down")
				return
			}
			log.Fatalf("worker: read: %v", err)
		}

		var event telemetry.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("worker: skipping malformed event at offset %d: %v", msg.Offset, err)
			continue
		}
		if err := sink.Publish(ctx, &event); err != nil {
			log.Printf("worker: loki push %s: %v", event.Name, err)
		}
	}
}
