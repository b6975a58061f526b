package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

func sampleEvent() Event {
	return NewNotificationEvent(domain.FeedItem{
		ProviderID: "backend",
		URL:        " https://news.test/a ",
		Title:      " Headline ",
		SourceName: "US",
	}, time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("IST", 19800)))
}

func TestNewNotificationEvent(t *testing.T) {
	evt := sampleEvent()

	assert.Equal(t, EventTypeNotificationAdded, evt.Type)
	assert.Equal(t, "https://news.test/a", evt.URL)
	assert.Equal(t, "Headline", evt.Title)
	assert.Equal(t, hashURL("https://news.test/a"), evt.ID)
	assert.Len(t, evt.ID, 40)
	assert.Equal(t, time.UTC, evt.SeenAt.Location())
}

func TestHTTPPublisher(t *testing.T) {
	var (
		got    Event
		header string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Token")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.Title == "fail" {
			http.Error(w, "nope", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := sanitizePublisherConfig(PublisherConfig{ID: "hook", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{
		URL:     srv.URL,
		Headers: map[string]string{"X-Token": "abc"},
	}})
	pub, err := newHTTPPublisher(context.Background(), cfg, nil)
	require.NoError(t, err)

	evt := sampleEvent()
	require.NoError(t, pub.Publish(context.Background(), evt))
	assert.Equal(t, evt.URL, got.URL)
	assert.Equal(t, "abc", header)

	evt.Title = "fail"
	err = pub.Publish(context.Background(), evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

type fakeSQS struct{ input *sqs.SendMessageInput }

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

type fakeSNS struct{ err error }

func (f *fakeSNS) Publish(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return nil, f.err
}

func TestQueueSenders(t *testing.T) {
	evt := sampleEvent()

	sqsClient := &fakeSQS{}
	pub := &queuePublisher{
		id:       "q",
		typ:      TypeQueue,
		provider: QueueProviderAWSSQS,
		sender:   &sqsSender{queueURL: "https://sqs.test/q", client: sqsClient},
		log:      ensureLogger(nil),
	}
	require.NoError(t, pub.Publish(context.Background(), evt))
	assert.Equal(t, "https://sqs.test/q", aws.ToString(sqsClient.input.QueueUrl))
	attrs := sqsClient.input.MessageAttributes
	assert.Equal(t, EventTypeNotificationAdded, aws.ToString(attrs["event_type"].StringValue))
	assert.Equal(t, evt.ID, aws.ToString(attrs["event_id"].StringValue))
	assert.Equal(t, "backend", aws.ToString(attrs["provider_id"].StringValue))
	assert.Equal(t, "String", aws.ToString(attrs["provider_id"].DataType))

	var body Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(sqsClient.input.MessageBody)), &body))
	assert.Equal(t, evt.ID, body.ID)

	pub.provider = QueueProviderAWSSNS
	pub.sender = &snsSender{topicARN: "arn", client: &fakeSNS{err: errors.New("throttled")}}
	err := pub.Publish(context.Background(), evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aws-sns")
	assert.Contains(t, err.Error(), "throttled")
	assert.NoError(t, pub.Close())
}

func TestQueueMessageOmitsEmptyProvider(t *testing.T) {
	evt := sampleEvent()
	evt.ProviderID = ""

	msg, err := newQueueMessage(evt)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"event_type": EventTypeNotificationAdded, "event_id": evt.ID}, msg.Attributes)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
	err    error
	closed bool
}

func (p *recordingPublisher) ID() string   { return "rec" }
func (p *recordingPublisher) Type() string { return "test" }

func (p *recordingPublisher) Publish(ctx context.Context, evt Event) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestDispatcherDeliversToEveryPublisher(t *testing.T) {
	a := &recordingPublisher{}
	b := &recordingPublisher{err: errors.New("down")}
	d := NewDispatcher([]Publisher{a, b}, 4, nil)

	require.NoError(t, d.Enqueue(sampleEvent()))
	require.NoError(t, d.Enqueue(sampleEvent()))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 2, a.count())
	assert.Equal(t, 2, b.count())
	assert.True(t, a.closed)
	assert.ErrorIs(t, d.Enqueue(sampleEvent()), ErrDispatcherClosed)
	assert.NoError(t, d.Close(context.Background()))
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	slow := &recordingPublisher{block: make(chan struct{})}
	d := NewDispatcher([]Publisher{slow}, 1, nil)

	// the worker takes the first event and blocks; the second fills the buffer
	require.NoError(t, d.Enqueue(sampleEvent()))
	assert.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, d.Enqueue(sampleEvent()))
	assert.Error(t, d.Enqueue(sampleEvent()))

	close(slow.block)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 2, slow.count())
}
