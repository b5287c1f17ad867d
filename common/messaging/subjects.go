package messaging

// Names for the durable event queue. There is a single work queue between
// ingestion and processing; horizontal scaling is achieved by running more
// processor instances against the same durable consumer.
const (
	// StreamEventQueue is the durable stream backing the event queue.
	StreamEventQueue = "EVENT_QUEUE"

	// SubjectEventQueue carries pending envelopes from ingestor to processor.
	SubjectEventQueue = "events.queue"

	// ConsumerEventProcessor is the durable consumer shared by processor instances.
	ConsumerEventProcessor = "event-processor"
)
