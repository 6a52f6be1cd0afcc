package publisher

// Message is one discount record bound for downstream consumers
type Message struct {
	RunID   string
	Site    string
	Payload []byte
}

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish publishes a message to a stream
	Publish(msg Message) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
