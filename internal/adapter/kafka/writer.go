// Package kafka publishes fishing-zone alerts to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/pfz-engine/internal/config"
	"github.com/couchcryptid/pfz-engine/internal/observability"
	"github.com/couchcryptid/pfz-engine/internal/predictor"
)

// AlertWriter publishes predictions whose composite score reaches the
// alert threshold. Messages are keyed by rounded coordinates so repeat
// alerts for the same spot land on the same partition.
type AlertWriter struct {
	writer    *kafkago.Writer
	threshold float64
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewAlertWriter creates a Kafka producer for the configured alert topic.
func NewAlertWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *AlertWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AlertWriter{
		writer:    w,
		threshold: cfg.AlertScoreThreshold,
		metrics:   metrics,
		logger:    logger,
	}
}

// Publish sends the prediction if it qualifies as an alert. Returns
// whether a message was written.
func (w *AlertWriter) Publish(ctx context.Context, pred predictor.Prediction) (bool, error) {
	if pred.Scores.Total < w.threshold {
		return false, nil
	}

	msg, err := serializeToMessage(pred)
	if err != nil {
		return false, err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return false, fmt.Errorf("publish alert: %w", err)
	}

	if w.metrics != nil {
		w.metrics.AlertsPublished.Inc()
	}
	w.logger.Info("pfz alert published",
		"lat", pred.Lat, "lon", pred.Lon,
		"score", pred.Scores.Total,
	)
	return true, nil
}

// PublishBatch sends every qualifying prediction in one write. Returns
// the number of alerts written.
func (w *AlertWriter) PublishBatch(ctx context.Context, preds []predictor.Prediction) (int, error) {
	var msgs []kafkago.Message
	for _, pred := range preds {
		if pred.Scores.Total < w.threshold {
			continue
		}
		msg, err := serializeToMessage(pred)
		if err != nil {
			return 0, err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish alerts: %w", err)
	}
	if w.metrics != nil {
		w.metrics.AlertsPublished.Add(float64(len(msgs)))
	}
	return len(msgs), nil
}

func (w *AlertWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a prediction into a Kafka message.
func serializeToMessage(pred predictor.Prediction) (kafkago.Message, error) {
	data, err := json.Marshal(pred)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%.4f,%.4f", pred.Lat, pred.Lon)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "level", Value: []byte(pred.Scores.Level())},
			{Key: "predicted_at", Value: []byte(pred.Time.Format(time.RFC3339))},
		},
	}, nil
}
