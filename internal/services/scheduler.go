package services

// ITaskScheduler enqueues background work. Implemented by the task client;
// services depend on this interface so tests can swap in a recorder.
type ITaskScheduler interface {
	EnqueueMessageDelivery(messageID string) error
	EnqueueRatingRecalc(organizationID, productID string) error
	EnqueueLogoThumbnail(organizationID, objectKey string) error
}
