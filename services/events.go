package services

const (
	EventPostCreated  = "post_created"
	EventPostUpdated  = "post_updated"
	EventPostDeleted  = "post_deleted"
	EventCommentAdded = "comment_added"
)

// EventPublisher receives post lifecycle notifications.
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}
