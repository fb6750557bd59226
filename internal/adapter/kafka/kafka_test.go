package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pfz-engine/internal/observability"
	"github.com/couchcryptid/pfz-engine/internal/predictor"
)

func TestSerializeToMessage(t *testing.T) {
	at := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	pred := predictor.Prediction{
		Lat:  22.5,
		Lon:  121.0,
		Time: at,
		Scores: predictor.Scores{
			Total:   84.5,
			Habitat: 90,
		},
		Confidence: 0.82,
	}

	msg, err := serializeToMessage(pred)
	require.NoError(t, err)

	assert.Equal(t, []byte("22.5000,121.0000"), msg.Key)
	assert.Contains(t, string(msg.Value), `"total":84.5`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "level", msg.Headers[0].Key)
	assert.Equal(t, []byte("excellent"), msg.Headers[0].Value)
	assert.Equal(t, "predicted_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(at.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestAlertWriter_ThresholdGate(t *testing.T) {
	w := &AlertWriter{
		threshold: 80,
		metrics:   observability.NewMetricsForTesting(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	t.Run("below threshold is skipped", func(t *testing.T) {
		published, err := w.Publish(context.Background(), predictor.Prediction{
			Scores: predictor.Scores{Total: 79.9},
		})
		require.NoError(t, err)
		assert.False(t, published)
	})

	t.Run("batch with no qualifiers writes nothing", func(t *testing.T) {
		n, err := w.PublishBatch(context.Background(), []predictor.Prediction{
			{Scores: predictor.Scores{Total: 10}},
			{Scores: predictor.Scores{Total: 50}},
		})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
