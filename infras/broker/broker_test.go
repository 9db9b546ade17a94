package broker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tablebook/config"
	"tablebook/infras/broker"
	"tablebook/infras/kafka"
	"tablebook/infras/kafka/mocks"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestNew_SelectsNoop(t *testing.T) {
	for _, driver := range []string{"", broker.DriverNone, "carrier-pigeon"} {
		cfg := &config.Config{}
		cfg.Broker.Driver = driver

		assert.IsType(t, broker.Noop{}, broker.New(cfg), driver)
	}
}

func TestNoop(t *testing.T) {
	b := broker.Noop{}

	assert.NoError(t, b.Publish(context.Background(), "k", struct{}{}))
	assert.NoError(t, b.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.NoError(t, b.Subscribe(ctx, nil))
}

func TestKafkaBroker_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	b := broker.NewKafka(client, "booking.events")

	event := map[string]string{"type": "booking.created"}

	client.EXPECT().
		SendMessages(gomock.Any(), "booking.events", kafka.Message{Key: "b1", Value: event}).
		Return(nil)
	assert.NoError(t, b.Publish(context.Background(), "b1", event))

	client.EXPECT().
		SendMessages(gomock.Any(), "booking.events", gomock.Any()).
		Return(errors.New("broker down"))
	assert.ErrorContains(t, b.Publish(context.Background(), "b1", event), "broker down")
}
