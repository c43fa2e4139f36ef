package receipts

import (
	"clinicdesk-service/internal/app/contracts"
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// receiptDocument stores amounts as Decimal128 so they stay exact and sortable in mongo.
type receiptDocument struct {
	ID            string               `bson:"_id"`
	FlowID        string               `bson:"flow_id"`
	AppointmentID int64                `bson:"appointment_id"`
	Patient       models.Patient       `bson:"patient"`
	ServiceIDs    []int64              `bson:"service_ids"`
	TotalAmount   primitive.Decimal128 `bson:"total_amount"`
	ComputedTotal primitive.Decimal128 `bson:"computed_total"`
	SubmittedAt   time.Time            `bson:"submitted_at"`
}

type ReceiptMongoRepository struct {
	Collection *mongo.Collection
}

func NewReceiptMongoRepository(db *mongo.Client, dbName string) contracts.ReceiptRepository {
	return &ReceiptMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionReceipts),
	}
}

func (repo *ReceiptMongoRepository) InsertReceipt(ctx context.Context, receipt *models.ServiceAssignmentReceipt) error {
	document, err := toReceiptDocument(receipt)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err, constvars.MongoCollectionReceipts)
	}
	_, err = repo.Collection.InsertOne(ctx, document)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err, constvars.MongoCollectionReceipts)
	}
	return nil
}

// FindReceiptsByAppointmentID returns receipts newest first.
func (repo *ReceiptMongoRepository) FindReceiptsByAppointmentID(ctx context.Context, appointmentID int64) ([]models.ServiceAssignmentReceipt, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cursor, err := repo.Collection.Find(ctx, bson.M{"appointment_id": appointmentID}, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err, constvars.MongoCollectionReceipts)
	}
	defer cursor.Close(ctx)

	var documents []receiptDocument
	err = cursor.All(ctx, &documents)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err, constvars.MongoCollectionReceipts)
	}

	receipts := make([]models.ServiceAssignmentReceipt, 0, len(documents))
	for _, document := range documents {
		receipt, err := document.toModel()
		if err != nil {
			return nil, exceptions.ErrMongoDBFindDocument(err, constvars.MongoCollectionReceipts)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

func toReceiptDocument(receipt *models.ServiceAssignmentReceipt) (*receiptDocument, error) {
	totalAmount, err := primitive.ParseDecimal128(receipt.TotalAmount.String())
	if err != nil {
		return nil, err
	}
	computedTotal, err := primitive.ParseDecimal128(receipt.ComputedTotal.String())
	if err != nil {
		return nil, err
	}
	return &receiptDocument{
		ID:            receipt.ID,
		FlowID:        receipt.FlowID,
		AppointmentID: receipt.AppointmentID,
		Patient:       receipt.Patient,
		ServiceIDs:    receipt.ServiceIDs,
		TotalAmount:   totalAmount,
		ComputedTotal: computedTotal,
		SubmittedAt:   receipt.SubmittedAt,
	}, nil
}

func (d receiptDocument) toModel() (models.ServiceAssignmentReceipt, error) {
	totalAmount, err := decimal.NewFromString(d.TotalAmount.String())
	if err != nil {
		return models.ServiceAssignmentReceipt{}, err
	}
	computedTotal, err := decimal.NewFromString(d.ComputedTotal.String())
	if err != nil {
		return models.ServiceAssignmentReceipt{}, err
	}
	return models.ServiceAssignmentReceipt{
		ID:            d.ID,
		FlowID:        d.FlowID,
		AppointmentID: d.AppointmentID,
		Patient:       d.Patient,
		ServiceIDs:    d.ServiceIDs,
		TotalAmount:   totalAmount,
		ComputedTotal: computedTotal,
		SubmittedAt:   d.SubmittedAt,
	}, nil
}
