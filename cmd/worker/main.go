package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"katalog/internal/config"
	"katalog/internal/repositories"
	"katalog/internal/worker"
	"katalog/pkg/rabbitmq"
)

// The notification worker is a separate deployable unit: it shares no
// in-process state with the API server and communicates with it only
// through the queue.
func main() {
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	productRepo := repositories.NewGORMProductRepository(db)

	var notifier worker.Notifier
	switch cfg.NotifyMode {
	case "email":
		notifier = worker.EmailNotifier{
			Addr: cfg.SMTPAddr,
			From: cfg.EmailFrom,
			To:   cfg.EmailTo,
		}
	default:
		notifier = worker.LogNotifier{}
	}
	processor := worker.NewProcessor(productRepo, notifier)

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close()

	log.Println("Starting notification worker...")
	err = mqClient.Consume(func(msg amqp.Delivery) error {
		return processor.Process(msg.Body)
	})
	if err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Notification worker stopped")
}
