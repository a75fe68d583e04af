package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

var errConnectionClosed = errors.New("connection closed")

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Push(ctx context.Context, sessionID, text string) error {
	args := m.Called(ctx, sessionID, text)
	return args.Error(0)
}

func (m *mockOutboxRepo) Drain(ctx context.Context, sessionID string) ([]string, error) {
	args := m.Called(ctx, sessionID)
	messages, _ := args.Get(0).([]string)

	return messages, args.Error(1)
}

func TestNotifier_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("Delivers to a live speaker", func(t *testing.T) {
		// Given: A session with a connected speaker
		outbox := &mockOutboxRepo{}
		notifier := NewNotifier(discardLogger(), outbox)

		speaker := &replies{}
		unregister := notifier.Register("s1", speaker)
		defer unregister()

		// When: Notifying the session
		err := notifier.Notify(ctx, "s1", "готово")

		// Then: The speaker got the message and the outbox was not used
		require.NoError(t, err)
		assert.Equal(t, []string{"готово"}, speaker.texts)
		outbox.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Stores the message when nobody is connected", func(t *testing.T) {
		// Given: No live speaker
		outbox := &mockOutboxRepo{}
		outbox.On("Push", ctx, "s2", "готово").Return(nil).Once()
		notifier := NewNotifier(discardLogger(), outbox)

		// When: Notifying the session
		err := notifier.Notify(ctx, "s2", "готово")

		// Then: The message lands in the outbox
		require.NoError(t, err)
		outbox.AssertExpectations(t)
	})

	t.Run("Falls back to the outbox when the live speaker fails", func(t *testing.T) {
		// Given: A broken connection
		outbox := &mockOutboxRepo{}
		outbox.On("Push", ctx, "s3", "готово").Return(nil).Once()
		notifier := NewNotifier(discardLogger(), outbox)

		broken := entity.SpeakerFunc(func(context.Context, string) error { return errConnectionClosed })
		defer notifier.Register("s3", broken)()

		// When: Notifying the session
		err := notifier.Notify(ctx, "s3", "готово")

		// Then: The message lands in the outbox
		require.NoError(t, err)
		outbox.AssertExpectations(t)
	})

	t.Run("Unregistered speakers no longer receive", func(t *testing.T) {
		// Given: A speaker that disconnected
		outbox := &mockOutboxRepo{}
		outbox.On("Push", ctx, "s4", "готово").Return(nil).Once()
		notifier := NewNotifier(discardLogger(), outbox)

		speaker := &replies{}
		notifier.Register("s4", speaker)()

		// When: Notifying the session
		err := notifier.Notify(ctx, "s4", "готово")

		// Then: Only the outbox got the message
		require.NoError(t, err)
		assert.Empty(t, speaker.texts)
		assert.Empty(t, notifier.live)
		outbox.AssertExpectations(t)
	})
}

func TestNotifier_Pending(t *testing.T) {
	ctx := context.Background()

	// Given: Two stored messages
	outbox := &mockOutboxRepo{}
	outbox.On("Drain", ctx, "s1").Return([]string{"раз", "два"}, nil).Once()
	notifier := NewNotifier(discardLogger(), outbox)

	// When: Reading pending messages
	messages, err := notifier.Pending(ctx, "s1")

	// Then: They are returned in order
	require.NoError(t, err)
	assert.Equal(t, []string{"раз", "два"}, messages)
}
