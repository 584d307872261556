// Package kafka publishes state energy profiles to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/state-energy-map/internal/config"
	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// Writer produces one message per state profile.
// It implements pipeline.ProfilePublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured profile topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaProfileTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// profileMessage is the JSON value of a published profile.
type profileMessage struct {
	domain.StateEnergyProfile
	Name        string    `json:"name"`
	DataYear    string    `json:"data_year"`
	GeneratedAt time.Time `json:"generated_at"`
}

// PublishProfiles serializes every joined profile and writes them in a single
// WriteMessages call. It returns the number of messages written.
func (w *Writer) PublishProfiles(ctx context.Context, data domain.MapData) (int, error) {
	profiles := data.Profiles()
	if len(profiles) == 0 {
		return 0, nil
	}
	msgs := make([]kafkago.Message, len(profiles))
	for i := range profiles {
		msg, err := serializeToMessage(profiles[i], data.Year, data.GeneratedAt)
		if err != nil {
			return 0, err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish profiles: %w", err)
	}
	w.logger.Debug("profiles published", "topic", w.writer.Topic, "count", len(msgs))
	return len(msgs), nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a profile into a Kafka message keyed by state.
func serializeToMessage(p domain.StateEnergyProfile, year string, generatedAt time.Time) (kafkago.Message, error) {
	name, _ := domain.StateName(p.Abbreviation)
	data, err := json.Marshal(profileMessage{
		StateEnergyProfile: p,
		Name:               name,
		DataYear:           year,
		GeneratedAt:        generatedAt.UTC(),
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize profile %s: %w", p.Abbreviation, err)
	}
	return kafkago.Message{
		Key:   []byte(p.Abbreviation),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(p.Category)},
			{Key: "status", Value: []byte(p.Status)},
			{Key: "data_year", Value: []byte(year)},
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
