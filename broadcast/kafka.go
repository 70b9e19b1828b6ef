package broadcast

import (
	"strings"

	wkafka "github.com/ThreeDotsLabs/watermill-kafka/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/code19m/errx"

	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/meta"
)

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Brokers string `yaml:"brokers" validate:"required"`
	// If not set defaults to the service name.
	ClientID     string `yaml:"client_id"`
	SaslUsername string `yaml:"sasl_username"`
	SaslPassword string `yaml:"sasl_password" mask:"true"`
}

// NewKafkaPublisher returns a publisher writing to Kafka. Messages are
// partitioned by command name, so the events of one command keep their
// order within a partition.
func NewKafkaPublisher(cfg KafkaConfig, l logger.Logger) (message.Publisher, error) {
	saramaCfg := wkafka.DefaultSaramaSyncPublisherConfig()

	saramaCfg.ClientID = cfg.ClientID
	if saramaCfg.ClientID == "" {
		saramaCfg.ClientID, _ = meta.Service()
	}

	// Only SASL/PLAIN is supported.
	if cfg.SaslUsername != "" && cfg.SaslPassword != "" {
		saramaCfg.Net.SASL.Enable = true
		saramaCfg.Net.SASL.User = cfg.SaslUsername
		saramaCfg.Net.SASL.Password = cfg.SaslPassword
	}

	publisher, err := wkafka.NewPublisher(
		strings.Split(cfg.Brokers, ","),
		wkafka.NewWithPartitioningMarshaler(partitionKey),
		saramaCfg,
		NewLoggerAdapter(l.Named("kafka")),
	)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"brokers": cfg.Brokers}))
	}

	return publisher, nil
}

func partitionKey(_ string, msg *message.Message) (string, error) {
	key := msg.Metadata.Get(MetadataCommand)
	if key == "" {
		return "", errx.New("message has no command metadata",
			errx.WithCode(CodeMalformedMessage),
			errx.WithDetails(errx.D{"message_uuid": msg.UUID}),
		)
	}
	return key, nil
}
