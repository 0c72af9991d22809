package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adham-ELshahed/Memar/internal/models"
)

// MessageFilters scope a listing to one user's correspondence, optionally
// narrowed to an order or RFQ thread.
type MessageFilters struct {
	UserID  string
	OrderID string
	RfqID   string
	Limit   int
	Offset  int
}

// MessageInput is the sender-supplied shape for a new message.
type MessageInput struct {
	RecipientID string   `json:"recipientId" binding:"required"`
	OrderID     string   `json:"orderId"`
	RfqID       string   `json:"rfqId"`
	Subject     string   `json:"subject"`
	Content     string   `json:"content" binding:"required"`
	Attachments []string `json:"attachments"`
}

// IMessageService defines the interface for direct messaging.
type IMessageService interface {
	List(ctx context.Context, filters MessageFilters) (*Page[models.Message], error)
	FindByID(ctx context.Context, messageID string) (*models.Message, error)
	Create(ctx context.Context, senderID string, input *MessageInput) (*models.Message, error)
	MarkDelivered(ctx context.Context, messageID string) error
	MarkRead(ctx context.Context, messageID, recipientID string) (*models.Message, error)
}

const messagesCollection = "messages"

type messageService struct {
	db        *mongo.Database
	scheduler ITaskScheduler
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *mongo.Database, scheduler ITaskScheduler) IMessageService {
	return &messageService{db: db, scheduler: scheduler}
}

// List returns messages the user sent or received, newest first.
func (s *messageService) List(ctx context.Context, filters MessageFilters) (*Page[models.Message], error) {
	collection := s.db.Collection(messagesCollection)

	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": filters.UserID},
		bson.M{"recipient_id": filters.UserID},
	}}
	if filters.OrderID != "" {
		filter["order_id"] = filters.OrderID
	}
	if filters.RfqID != "" {
		filter["rfq_id"] = filters.RfqID
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(filters.Limit)).
		SetSkip(int64(filters.Offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Message{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return &Page[models.Message]{Items: items, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// FindByID finds a message by ID.
func (s *messageService) FindByID(ctx context.Context, messageID string) (*models.Message, error) {
	var message models.Message
	err := s.db.Collection(messagesCollection).FindOne(ctx, bson.M{"_id": messageID}).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding message %s: %w", messageID, err)
	}
	return &message, nil
}

// Create stores a new message in the sent state and enqueues its delivery.
// A failed enqueue does not fail the send; the message stays sent until the
// worker picks it up.
func (s *messageService) Create(ctx context.Context, senderID string, input *MessageInput) (*models.Message, error) {
	if input.RecipientID == senderID {
		return nil, fmt.Errorf("cannot send a message to yourself")
	}

	message := &models.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: input.RecipientID,
		OrderID:     input.OrderID,
		RfqID:       input.RfqID,
		Subject:     input.Subject,
		Content:     input.Content,
		Attachments: input.Attachments,
		Status:      models.MessageStatusSent,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := s.db.Collection(messagesCollection).InsertOne(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to insert message from %s: %w", senderID, err)
	}

	if err := s.scheduler.EnqueueMessageDelivery(message.ID); err != nil {
		log.Printf("Warning: failed to enqueue delivery for message %s: %v", message.ID, err)
	}

	return message, nil
}

// MarkDelivered moves a sent message to delivered. Called by the background
// worker; a message the recipient already read is left alone.
func (s *messageService) MarkDelivered(ctx context.Context, messageID string) error {
	filter := bson.M{"_id": messageID, "status": models.MessageStatusSent}
	update := bson.M{"$set": bson.M{"status": models.MessageStatusDelivered}}
	result, err := s.db.Collection(messagesCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark message %s delivered: %w", messageID, err)
	}
	if result.MatchedCount == 0 {
		// Already delivered or read, or gone. Nothing to do either way.
		return nil
	}
	return nil
}

// MarkRead stamps a message read on behalf of its recipient. Re-reading an
// already-read message refreshes the readAt timestamp.
func (s *messageService) MarkRead(ctx context.Context, messageID, recipientID string) (*models.Message, error) {
	message, err := s.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.RecipientID != recipientID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"status": models.MessageStatusRead, "read_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Message
	err = s.db.Collection(messagesCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": messageID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to mark message %s read: %w", messageID, err)
	}
	return &updated, nil
}
