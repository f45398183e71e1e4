package ports

import (
	"context"

	"github.com/rabbitmq/amqp091-go"

	"client-manager-api/internal/infrastructure/mq"
)

// AuditPublisher receives audit events. Publish must never block the
// request path.
type AuditPublisher interface {
	Publish(e mq.Event) bool
}

type RabbitMQ interface {
	AuditPublisher
	Connect(ctx context.Context, dsn string) error
	Init() error
	PublisherWorker(ctx context.Context)
	GetConn() *amqp091.Connection
}
