package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"katalog/internal/models"
	"katalog/internal/repositories"
)

// Notifier performs the external effect for one processed job: a log line
// by default, or an outbound email.
type Notifier interface {
	NotifyProductCreated(product *models.Product) error
}

// Processor consumes notification jobs. For each job it re-reads the
// referenced product so the notification carries current state, not the
// state at enqueue time. Processing is idempotent from the consumer's
// perspective: a redelivered job simply notifies again.
type Processor struct {
	products repositories.ProductRepository
	notifier Notifier
}

// NewProcessor creates a Processor.
func NewProcessor(products repositories.ProductRepository, notifier Notifier) *Processor {
	return &Processor{
		products: products,
		notifier: notifier,
	}
}

// Process handles one raw job message. A missing product is a terminal
// failure: it is logged once and nil is returned so the message is acked
// and never retried. Notifier errors are returned so the delivery is
// nacked and redelivered.
func (p *Processor) Process(body []byte) error {
	var job models.NotificationJob
	if err := json.Unmarshal(body, &job); err != nil {
		// Malformed payloads can never succeed; drop them.
		log.Printf("notification processing failed: malformed job %q: %v", body, err)
		return nil
	}

	product, err := p.products.GetByID(job.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("notification processing failed: product %s no longer exists", job.ProductID)
			return nil
		}
		return fmt.Errorf("failed to look up product %s: %w", job.ProductID, err)
	}

	if err := p.notifier.NotifyProductCreated(product); err != nil {
		return fmt.Errorf("failed to notify for product %s: %w", product.ID, err)
	}
	return nil
}
