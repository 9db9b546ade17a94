package kafka_test

import (
	"testing"

	"tablebook/infras/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func TestMessageRoundTrip(t *testing.T) {
	msg := kafka.Message{Key: "b1", Value: event{Type: "booking.created", ID: "b1"}}

	raw, err := msg.ToKafkaMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("b1"), raw.Key)
	assert.JSONEq(t, `{"type":"booking.created","id":"b1"}`, string(raw.Value))

	decoded, err := kafka.Decode[event](raw)
	require.NoError(t, err)
	assert.Equal(t, event{Type: "booking.created", ID: "b1"}, decoded)
}

func TestToKafkaMessage_Unmarshalable(t *testing.T) {
	msg := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := msg.ToKafkaMessage()
	assert.Error(t, err)
}
