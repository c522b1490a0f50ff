package pubsub

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newFakePublisher(t *testing.T) (*Publisher, *pstest.Server) {
	t.Helper()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "briefing-test",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.NoError(t, err)
	_, err = client.CreateTopic(ctx, "crawl-events")
	require.NoError(t, err)

	pub := New(client)
	t.Cleanup(func() { _ = pub.Close() })
	return pub, srv
}

func TestPublishSendsJSON(t *testing.T) {
	pub, srv := newFakePublisher(t)

	id, err := pub.Publish(context.Background(), "crawl-events", map[string]any{"keyword": "6G", "total_count": 3})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	var got map[string]any
	require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
	require.Equal(t, "6G", got["keyword"])
	require.EqualValues(t, 3, got["total_count"])
}

func TestPublishValidation(t *testing.T) {
	pub, _ := newFakePublisher(t)

	_, err := pub.Publish(context.Background(), "", map[string]any{})
	require.ErrorContains(t, err, "topic is required")

	_, err = pub.Publish(context.Background(), "crawl-events", func() {})
	require.ErrorContains(t, err, "marshal payload")

	_, err = New(nil).Publish(context.Background(), "crawl-events", 1)
	require.Error(t, err)
}

func TestPublishUnknownTopicFails(t *testing.T) {
	pub, _ := newFakePublisher(t)

	_, err := pub.Publish(context.Background(), "missing", map[string]any{"x": 1})
	require.Error(t, err)
}

func TestCarrierRoundTrip(t *testing.T) {
	t.Parallel()

	carrier := &pubsubCarrier{attrs: map[string]string{}}
	var _ propagation.TextMapCarrier = carrier
	carrier.Set("traceparent", "00-abc-def-01")
	require.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	require.Equal(t, []string{"traceparent"}, carrier.Keys())
}

func TestDialRequiresProject(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), "")
	require.Error(t, err)
}
