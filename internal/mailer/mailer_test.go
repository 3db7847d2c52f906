// AngelaMos | 2026
// mailer_test.go

package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type recordingTransport struct {
	sent []Message
	err  error
}

func (t *recordingTransport) Deliver(_ context.Context, _ string, msg Message) error {
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, msg)
	return nil
}

func TestSend_Delivers(t *testing.T) {
	transport := &recordingTransport{}
	svc := New("from@test", transport, nil)

	err := svc.Send(context.Background(), Message{To: "a@test", Subject: "hi"})
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "a@test", transport.sent[0].To)
}

func TestSend_RejectsEmptyRecipient(t *testing.T) {
	svc := New("from@test", &recordingTransport{}, nil)

	err := svc.Send(context.Background(), Message{Subject: "hi"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestSend_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	transport := &recordingTransport{err: errors.New("smtp down")}
	svc := New("from@test", transport, nil)
	ctx := context.Background()

	for range breakerTripFailuresForTest {
		err := svc.Send(ctx, Message{To: "a@test"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	err := svc.Send(ctx, Message{To: "a@test"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

const breakerTripFailuresForTest = 5
