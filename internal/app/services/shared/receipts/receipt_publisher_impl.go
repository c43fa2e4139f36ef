package receipts

import (
	"clinicdesk-service/internal/app/contracts"
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpPublisher is the subset of *amqp091.Channel used for publishing.
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type receiptPublisher struct {
	Channel amqpPublisher
	Queue   string
	Log     *zap.Logger
}

// NewReceiptPublisher opens a channel on conn and declares queue as durable.
func NewReceiptPublisher(conn *amqp091.Connection, queue string, logger *zap.Logger) (contracts.ReceiptPublisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		channel.Close()
		return nil, err
	}

	return &receiptPublisher{
		Channel: channel,
		Queue:   queue,
		Log:     logger,
	}, nil
}

func (p *receiptPublisher) PublishReceipt(ctx context.Context, receipt *models.ServiceAssignmentReceipt) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	body, err := json.Marshal(receipt)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	message := amqp091.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    receipt.ID,
		Timestamp:    receipt.SubmittedAt,
		Headers: amqp091.Table{
			"message_type":   "service_assignment_receipt",
			"appointment_id": receipt.AppointmentID,
		},
	}

	err = p.Channel.PublishWithContext(ctx, "", p.Queue, false, false, message)
	if err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, p.Queue)
	}

	p.Log.Info("receiptPublisher.PublishReceipt succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReceiptIDKey, receipt.ID),
		zap.String(constvars.LoggingQueueNameKey, p.Queue),
	)
	return nil
}
