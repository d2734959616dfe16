package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jcmexdev/labeeb-storefront/internal/notify"
	"github.com/jcmexdev/labeeb-storefront/internal/notify/rabbitmq"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/config"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger("order-notifier", cfg.SlogLevel())

	if cfg.RabbitMQ.URL == "" {
		slog.Error("RABBITMQ_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		slog.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		slog.Error("failed to open channel", "error", err)
		os.Exit(1)
	}
	if err := rabbitmq.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		slog.Error("failed to declare queue", "queue", cfg.RabbitMQ.Queue, "error", err)
		os.Exit(1)
	}
	ch.Close()

	tracker := notify.NewTracker()
	var opener notify.Notifier
	if cfg.WhatsApp.OpenLinks {
		opener = notify.OpenerNotifier{}
	}

	handle := func(ctx context.Context, ev notify.OrderPlaced) error {
		tracker.Record(ev)
		slog.InfoContext(ctx, "order notification received",
			"order_id", ev.OrderID,
			"items", len(ev.Items),
			"total", ev.Total.StringFixed(2),
			"whatsapp_url", ev.URL)
		if opener == nil {
			return nil
		}
		if err := opener.Notify(ctx, ev); err != nil {
			// The event is recorded; a missing desktop handler is not worth a redelivery.
			slog.WarnContext(ctx, "could not open whatsapp link", "order_id", ev.OrderID, "error", err)
		}
		return nil
	}

	var wg sync.WaitGroup
	for i := 1; i <= cfg.RabbitMQ.NumWorkers; i++ {
		w, err := rabbitmq.NewWorker(i, conn, cfg.RabbitMQ.Queue, handle)
		if err != nil {
			slog.Error("failed to create worker", "worker", i, "error", err)
			os.Exit(1)
		}
		wg.Add(1)
		go w.Start(ctx, &wg)
	}
	slog.Info("order notifier running", "workers", cfg.RabbitMQ.NumWorkers, "queue", cfg.RabbitMQ.Queue)

	<-ctx.Done()
	slog.Info("shutting down order notifier")
	_ = conn.Close()
	wg.Wait()
	tracker.LogSummary(slog.Default())
}
