package events

const (
	// MESSAGE_SENT is published by chat servers when a message is stored.
	MESSAGE_SENT = "MESSAGE_SENT"

	TOPIC_RENAMED = "TOPIC_RENAMED"

	TOPIC_SUGGESTION_REQUESTED = "TOPIC_SUGGESTION_REQUESTED"
	TOPIC_SUGGESTION_OFFERED   = "TOPIC_SUGGESTION_OFFERED"
	TOPIC_SUGGESTION_APPLIED   = "TOPIC_SUGGESTION_APPLIED"
	TOPIC_SUGGESTION_DISMISSED = "TOPIC_SUGGESTION_DISMISSED"
)

// Subject is the NATS subject an event type is published on.
func Subject(eventType string) string {
	return "events." + eventType
}
