package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer публикует события бронирований в Kafka.
// Nil-значение безопасно: все методы становятся no-op,
// что позволяет отключать Kafka через конфиг.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer создает продюсер для заданного топика
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish отправляет событие, ключ партиционирования — код бронирования
func (p *Producer) Publish(ctx context.Context, event ReservationEvent) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Code),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("events: write message: %w", err)
	}

	return nil
}

// Close закрывает врайтер
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
