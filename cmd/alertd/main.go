package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"ai-helpdesk-be/internal/config"
	"ai-helpdesk-be/pkg/events"
	pkgNats "ai-helpdesk-be/pkg/nats"
)

// Event tail for operators: subscribes to the helpdesk event stream and
// prints escalations, resolutions and reindex runs as they happen.
func main() {
	cfg := config.Load()

	sub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		color.Red("Failed to connect to NATS: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	err = sub.Subscribe("helpdesk.>", "alertd", func(ctx context.Context, event events.Event) error {
		payload, _ := json.Marshal(event.Payload())
		switch event.EventType() {
		case "helpdesk." + events.TypeTicketEscalated:
			color.Red("ESCALATED  %s", payload)
		case "helpdesk." + events.TypeSessionResolved:
			color.Green("RESOLVED   %s", payload)
		case "helpdesk." + events.TypeKnowledgeReindex:
			color.Yellow("REINDEXED  %s", payload)
		default:
			color.White("%s %s", event.EventType(), payload)
		}
		return nil
	})
	if err != nil {
		color.Red("Failed to subscribe: %v", err)
		os.Exit(1)
	}

	color.Cyan("👂 Listening for helpdesk events on %s", cfg.App.NatsURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
