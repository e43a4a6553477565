package models

import "time"

// NotificationJob is the message published to the notification queue when
// a product is created. It is transient: it lives only on the queue, never
// in the store. Delivery is at-least-once, so consumers must tolerate
// seeing the same job twice.
type NotificationJob struct {
	ProductID  string    `json:"product_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
