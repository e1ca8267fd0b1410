package clients

import "time"

const (
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "emotiflow-client/1.0 (+https://github.com/spacesedan/emotiflow)"

	MODEL_ID_HEADER  = "grpc-metadata-mm-model-id"
	HEALTHCHECK_TEXT = "health check"
)
