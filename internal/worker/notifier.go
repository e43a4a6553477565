package worker

import (
	"fmt"
	"log"
	"net/smtp"

	"katalog/internal/models"
)

// LogNotifier records each notification as one log line.
type LogNotifier struct{}

// NotifyProductCreated logs the product's current name, price and stock.
func (LogNotifier) NotifyProductCreated(product *models.Product) error {
	log.Printf("New product created: %s (price: %.2f, stock: %d)", product.Name, product.Price, product.Stock)
	return nil
}

// EmailNotifier sends one notification email per processed job over SMTP.
type EmailNotifier struct {
	Addr string
	From string
	To   string
}

// NotifyProductCreated sends the notification email.
func (n EmailNotifier) NotifyProductCreated(product *models.Product) error {
	subject := fmt.Sprintf("New Product Created: %s", product.Name)
	body := fmt.Sprintf(
		"New Product Alert!\nA new product '%s' with price $%.2f (stock: %d) has been created.",
		product.Name, product.Price, product.Stock,
	)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", n.From, n.To, subject, body)

	if err := smtp.SendMail(n.Addr, nil, n.From, []string{n.To}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send notification email for product %s: %w", product.ID, err)
	}
	return nil
}
