package kafka_client

import "github.com/spacesedan/emotiflow/config"

type KafkaConfig struct {
	Broker  string
	GroupID string
	Topic   string
}

func GetKafkaConfig(cfg config.Config) KafkaConfig {
	broker := cfg.KafkaBroker
	if broker == "" {
		broker = "localhost:29092"
	}
	return KafkaConfig{
		Broker:  broker,
		GroupID: cfg.KafkaGroupID,
		Topic:   KAFKA_TOPIC_EMOTION_REQUESTS,
	}
}
