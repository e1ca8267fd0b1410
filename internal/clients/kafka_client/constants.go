package kafka_client

import "time"

const (
	KAFKA_TOPIC_EMOTION_REQUESTS = "emotion-requests" // text waiting to be classified
	KAFKA_TOPIC_EMOTION_RESULTS  = "emotion-results"  // classified analyses
)

const (
	MAX_RETRIES  = 5
	RETRY_DELAY  = 2 * time.Second
	POLL_TIMEOUT = 500 * time.Millisecond
	FLUSH_MS     = 5000
)
