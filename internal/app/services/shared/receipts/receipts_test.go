package receipts

import (
	"clinicdesk-service/internal/app/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingChannel struct {
	queue    string
	messages []amqp091.Publishing
	err      error
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.queue = key
	c.messages = append(c.messages, msg)
	return nil
}

func testReceipt() *models.ServiceAssignmentReceipt {
	total, _ := decimal.NewFromString("250000.50")
	return &models.ServiceAssignmentReceipt{
		ID:            "receipt-1",
		FlowID:        "flow-1",
		AppointmentID: 10,
		Patient:       models.Patient{ID: 7, Name: "Siti"},
		ServiceIDs:    []int64{1, 2},
		TotalAmount:   total,
		ComputedTotal: models.NewMoneyFromInt(300000),
		SubmittedAt:   time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestReceiptPublisher(t *testing.T) {
	t.Run("Publishes persistent JSON with the authoritative total", func(t *testing.T) {
		channel := &recordingChannel{}
		publisher := &receiptPublisher{Channel: channel, Queue: "receipts", Log: zap.NewNop()}

		require.NoError(t, publisher.PublishReceipt(context.Background(), testReceipt()))
		require.Len(t, channel.messages, 1)

		message := channel.messages[0]
		assert.Equal(t, "receipts", channel.queue)
		assert.Equal(t, amqp091.Persistent, message.DeliveryMode)
		assert.Equal(t, "receipt-1", message.MessageId)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(message.Body, &body))
		assert.EqualValues(t, 250000.5, body["total_amount"])
		assert.EqualValues(t, 300000, body["computed_total"])
	})

	t.Run("Publish failure is reported", func(t *testing.T) {
		channel := &recordingChannel{err: errors.New("channel closed")}
		publisher := &receiptPublisher{Channel: channel, Queue: "receipts", Log: zap.NewNop()}

		err := publisher.PublishReceipt(context.Background(), testReceipt())
		assert.ErrorContains(t, err, "receipts")
	})
}

func TestReceiptDocumentConversion(t *testing.T) {
	receipt := testReceipt()

	document, err := toReceiptDocument(receipt)
	require.NoError(t, err)
	assert.Equal(t, "250000.5", document.TotalAmount.String())

	restored, err := document.toModel()
	require.NoError(t, err)
	assert.True(t, receipt.TotalAmount.Equal(restored.TotalAmount))
	assert.True(t, receipt.ComputedTotal.Equal(restored.ComputedTotal))
	assert.Equal(t, receipt.ServiceIDs, restored.ServiceIDs)
}
