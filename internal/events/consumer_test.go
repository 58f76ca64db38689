package events

import (
	"context"
	"errors"
	"testing"
	"treehouse-service/internal/models"

	"github.com/rabbitmq/amqp091-go"
)

type fakeProfileWriter struct {
	profiles  map[string]*models.UserProfile
	creates   int
	createErr error
}

func newFakeProfileWriter() *fakeProfileWriter {
	return &fakeProfileWriter{profiles: make(map[string]*models.UserProfile)}
}

func (f *fakeProfileWriter) FindByUID(ctx context.Context, uid string) (*models.UserProfile, error) {
	if p, ok := f.profiles[uid]; ok {
		return p, nil
	}
	return nil, errors.New("mongo: no documents in result")
}

func (f *fakeProfileWriter) Create(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.creates++
	f.profiles[profile.UID] = profile
	return profile, nil
}

func newTestConsumer(writer *fakeProfileWriter) *EventConsumer {
	return &EventConsumer{
		userRepository: writer,
		shutdown:       make(chan struct{}),
	}
}

func TestProcessMessageCreatesProfile(t *testing.T) {
	writer := newFakeProfileWriter()
	c := newTestConsumer(writer)

	msg := amqp091.Delivery{
		RoutingKey: "user.registered",
		Body:       []byte(`{"user_id":"u1","email":"u1@example.com"}`),
	}

	if err := c.processMessage(msg); err != nil {
		t.Fatalf("processMessage: %v", err)
	}

	profile, ok := writer.profiles["u1"]
	if !ok {
		t.Fatal("profile was not created")
	}
	if profile.Email != "u1@example.com" {
		t.Errorf("email = %s", profile.Email)
	}
}

func TestProcessMessageDuplicateDelivery(t *testing.T) {
	writer := newFakeProfileWriter()
	writer.profiles["u1"] = &models.UserProfile{UID: "u1"}
	c := newTestConsumer(writer)

	msg := amqp091.Delivery{
		RoutingKey: "user.registered",
		Body:       []byte(`{"user_id":"u1","email":"u1@example.com"}`),
	}

	if err := c.processMessage(msg); err != nil {
		t.Fatalf("processMessage: %v", err)
	}
	if writer.creates != 0 {
		t.Errorf("creates = %d, want 0 for an existing uid", writer.creates)
	}
}

// A body that will never parse must be classified for dropping, not
// requeued into a permanent redelivery loop.
func TestProcessMessageMalformedBodyDropped(t *testing.T) {
	writer := newFakeProfileWriter()
	c := newTestConsumer(writer)

	testCases := []struct {
		name string
		body []byte
	}{
		{"truncated json", []byte(`{"user_id":"u1"`)},
		{"not json", []byte("oops")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := amqp091.Delivery{RoutingKey: "user.registered", Body: tc.body}

			err := c.processMessage(msg)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, errMalformedPayload) {
				t.Errorf("err = %v, want it classified as a malformed payload", err)
			}
		})
	}

	if writer.creates != 0 {
		t.Errorf("creates = %d, want 0", writer.creates)
	}
}

// A transient store failure is not a malformed payload; the message
// should go back on the queue for another attempt.
func TestProcessMessageTransientFailureRequeued(t *testing.T) {
	writer := newFakeProfileWriter()
	writer.createErr = errors.New("connection reset")
	c := newTestConsumer(writer)

	msg := amqp091.Delivery{
		RoutingKey: "user.registered",
		Body:       []byte(`{"user_id":"u1","email":"u1@example.com"}`),
	}

	err := c.processMessage(msg)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, errMalformedPayload) {
		t.Error("a store failure must not be classified as a malformed payload")
	}
}

func TestProcessMessageUnknownRoutingKey(t *testing.T) {
	writer := newFakeProfileWriter()
	c := newTestConsumer(writer)

	msg := amqp091.Delivery{RoutingKey: "user.deleted", Body: []byte(`{}`)}

	if err := c.processMessage(msg); err != nil {
		t.Errorf("unknown routing keys are acknowledged, got %v", err)
	}
}
