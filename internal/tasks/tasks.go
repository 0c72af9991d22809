package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// Task types.
const (
	TypeMessageDeliver = "message:deliver"
	TypeRatingRecalc   = "review:recalc_rating"
	TypeLogoThumbnail  = "image:logo_thumbnail"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// Scheduler wraps the asynq client behind the enqueue interface the services
// depend on.
type Scheduler struct {
	client *asynq.Client
}

// NewScheduler creates a Scheduler backed by the given asynq client.
func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client}
}

var _ services.ITaskScheduler = (*Scheduler)(nil)

// MessageDeliverPayload is the payload of a message delivery task.
type MessageDeliverPayload struct {
	MessageID string `json:"message_id"`
}

// RatingRecalcPayload names the targets whose denormalized ratings need
// recomputing. Either field may be empty.
type RatingRecalcPayload struct {
	OrganizationID string `json:"organization_id,omitempty"`
	ProductID      string `json:"product_id,omitempty"`
}

// LogoThumbnailPayload is the payload of a logo processing task.
type LogoThumbnailPayload struct {
	OrganizationID string `json:"organization_id"`
	ObjectKey      string `json:"object_key"`
}

func (s *Scheduler) EnqueueMessageDelivery(messageID string) error {
	payload, err := json.Marshal(MessageDeliverPayload{MessageID: messageID})
	if err != nil {
		return fmt.Errorf("failed to marshal message delivery payload: %w", err)
	}
	_, err = s.client.Enqueue(asynq.NewTask(TypeMessageDeliver, payload), asynq.Queue("critical"))
	if err != nil {
		return fmt.Errorf("failed to enqueue message delivery task: %w", err)
	}
	return nil
}

func (s *Scheduler) EnqueueRatingRecalc(organizationID, productID string) error {
	payload, err := json.Marshal(RatingRecalcPayload{OrganizationID: organizationID, ProductID: productID})
	if err != nil {
		return fmt.Errorf("failed to marshal rating recalc payload: %w", err)
	}
	_, err = s.client.Enqueue(asynq.NewTask(TypeRatingRecalc, payload), asynq.Queue("low"))
	if err != nil {
		return fmt.Errorf("failed to enqueue rating recalc task: %w", err)
	}
	return nil
}

func (s *Scheduler) EnqueueLogoThumbnail(organizationID, objectKey string) error {
	payload, err := json.Marshal(LogoThumbnailPayload{OrganizationID: organizationID, ObjectKey: objectKey})
	if err != nil {
		return fmt.Errorf("failed to marshal logo thumbnail payload: %w", err)
	}
	_, err = s.client.Enqueue(asynq.NewTask(TypeLogoThumbnail, payload), asynq.Queue("images"))
	if err != nil {
		return fmt.Errorf("failed to enqueue logo thumbnail task: %w", err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg            *config.Config
	messageService services.IMessageService
	reviewService  services.IReviewService
	orgService     services.IOrganizationService
	s3Client       *s3.Client
}

func NewTaskProcessor(
	cfg *config.Config,
	messageService services.IMessageService,
	reviewService services.IReviewService,
	orgService services.IOrganizationService,
	s3Client *s3.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		messageService: messageService,
		reviewService:  reviewService,
		orgService:     orgService,
		s3Client:       s3Client,
	}
}

// SetupServer configures and starts an Asynq server instance. The caller
// shuts it down.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isImageWorker bool, isBgWorker bool) *asynq.Server {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
				"images":   5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				fmt.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v\n", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()

	if isBgWorker {
		mux.HandleFunc(TypeMessageDeliver, processor.HandleMessageDeliverTask)
		mux.HandleFunc(TypeRatingRecalc, processor.HandleRatingRecalcTask)
		fmt.Println("Registered background task handlers.")
	}

	if isImageWorker {
		mux.HandleFunc(TypeLogoThumbnail, processor.HandleLogoThumbnailTask)
		fmt.Println("Registered image processing task handlers.")
	}

	if !isBgWorker && !isImageWorker {
		fmt.Println("Running in API mode, no task server started.")
		return nil
	}

	if err := srv.Start(mux); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	return srv
}

// --- Task Handlers ---

// HandleMessageDeliverTask moves a freshly sent message to delivered.
func (p *TaskProcessor) HandleMessageDeliverTask(ctx context.Context, t *asynq.Task) error {
	var payload MessageDeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal message delivery payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.MessageID == "" {
		return fmt.Errorf("message delivery payload carries no message id: %w", asynq.SkipRetry)
	}

	if err := p.messageService.MarkDelivered(ctx, payload.MessageID); err != nil {
		return fmt.Errorf("failed to deliver message %s: %w", payload.MessageID, err)
	}
	return nil
}

// HandleRatingRecalcTask recomputes denormalized ratings for the targets in
// the payload.
func (p *TaskProcessor) HandleRatingRecalcTask(ctx context.Context, t *asynq.Task) error {
	var payload RatingRecalcPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal rating recalc payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.OrganizationID == "" && payload.ProductID == "" {
		return fmt.Errorf("rating recalc payload names no target: %w", asynq.SkipRetry)
	}

	if err := p.reviewService.RecalculateRatings(ctx, payload.OrganizationID, payload.ProductID); err != nil {
		return fmt.Errorf("failed to recalculate ratings: %w", err)
	}
	return nil
}

// HandleLogoThumbnailTask downloads a freshly uploaded organization logo,
// shrinks it to the configured maximum dimension, re-encodes it as JPEG and
// writes the thumbnail next to the original. The organization's logo URL is
// then pointed at the thumbnail.
func (p *TaskProcessor) HandleLogoThumbnailTask(ctx context.Context, t *asynq.Task) error {
	var payload LogoThumbnailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal logo thumbnail payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Processing logo task: ObjectKey=%s, OrganizationID=%s", payload.ObjectKey, payload.OrganizationID)

	getObjectOutput, err := p.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.AwsS3Bucket),
		Key:    aws.String(payload.ObjectKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Printf("S3 object %s not found, likely upload failed or key incorrect.", payload.ObjectKey)
			return fmt.Errorf("s3 object not found: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("failed to download logo from S3: %w", err)
	}
	defer getObjectOutput.Body.Close()

	imgData, err := io.ReadAll(getObjectOutput.Body)
	if err != nil {
		return fmt.Errorf("failed to read logo data for key %s: %w", payload.ObjectKey, err)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded logo %s, format: %s, size: %dx%d", payload.ObjectKey, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxDim := uint(p.cfg.LogoMaxDimension)
	thumb := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode logo thumbnail: %w", err)
	}

	thumbKey := thumbnailKey(payload.ObjectKey)
	_, err = p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.AwsS3Bucket),
		Key:         aws.String(thumbKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload logo thumbnail %s: %w", thumbKey, err)
	}

	if payload.OrganizationID != "" {
		org, err := p.orgService.FindByID(ctx, payload.OrganizationID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return fmt.Errorf("organization %s gone: %w", payload.OrganizationID, asynq.SkipRetry)
			}
			return err
		}
		_, err = p.orgService.Update(ctx, org.ID, org.UserID, map[string]interface{}{
			"logo_url": "/objects/" + thumbKey,
		})
		if err != nil {
			return fmt.Errorf("failed to point organization %s at thumbnail: %w", payload.OrganizationID, err)
		}
	}

	log.Printf("Logo task processed: ObjectKey=%s, Thumbnail=%s", payload.ObjectKey, thumbKey)
	return nil
}

// thumbnailKey derives the thumbnail object key from the original key,
// keeping it in the same prefix.
func thumbnailKey(objectKey string) string {
	if idx := strings.LastIndex(objectKey, "."); idx > strings.LastIndex(objectKey, "/") {
		objectKey = objectKey[:idx]
	}
	return objectKey + "_thumb.jpg"
}
