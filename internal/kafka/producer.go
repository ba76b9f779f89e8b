package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-registration/internal/config"
	"ms-registration/internal/models"
)

// Producer streams registration lifecycle records. In mock mode nothing is
// written; messages are printed so local runs work without a broker.
type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
	Mock   bool
}

func NewProducer(brokers []string, topics config.TopicConfig, mock bool) *Producer {
	if mock {
		return &Producer{Topics: topics, Mock: true}
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics}
}

func (p *Producer) publish(topic, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if p.Mock {
		fmt.Printf("Mock publish to Kafka [%s]: %s\n", topic, string(msgBytes))
		return nil
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

// PublishEventCreated streams an event creation record.
func (p *Producer) PublishEventCreated(event models.Event) error {
	return p.publish(p.Topics.EventCreated, event.ID, event)
}

// PublishEnrollmentCreated streams an enrollment record.
func (p *Producer) PublishEnrollmentCreated(enrollment models.Enrollment) error {
	return p.publish(p.Topics.EnrollmentCreated, enrollment.ID, enrollment)
}

// PublishEnrollmentCancelled streams an unenrollment record.
func (p *Producer) PublishEnrollmentCancelled(enrollment models.Enrollment) error {
	return p.publish(p.Topics.EnrollmentCancelled, enrollment.ID, enrollment)
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}
	return nil
}
