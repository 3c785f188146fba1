package chat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mufawter/pkg/models"
)

type askerFunc func(ctx context.Context, question string) (*models.ChatReply, error)

func (f askerFunc) Ask(ctx context.Context, question string) (*models.ChatReply, error) {
	return f(ctx, question)
}

func TestNewSessionGreets(t *testing.T) {
	s := NewSession(nil, "en")
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, WelcomeID, msgs[0].ID)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "invoice assistant")

	assert.Contains(t, NewSession(nil, "fr").Messages()[0].Content, "مرحبًا")
}

func TestSend(t *testing.T) {
	s := NewSession(askerFunc(func(_ context.Context, q string) (*models.ChatReply, error) {
		assert.Equal(t, "total this month?", q)
		return &models.ChatReply{Reply: "300 SAR", Invoices: []models.Invoice{{ID: 1}}}, nil
	}), "en")

	msg, err := s.Send(context.Background(), "  total this month?  ")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "300 SAR", msg.Content)
	assert.Len(t, msg.Invoices, 1)
	assert.NotEmpty(t, msg.ID)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "total this month?", msgs[1].Content)
	assert.NotEqual(t, msgs[1].ID, msgs[2].ID)
	assert.False(t, s.Busy())
}

func TestSendEmptyAnswer(t *testing.T) {
	s := NewSession(askerFunc(func(context.Context, string) (*models.ChatReply, error) {
		return &models.ChatReply{}, nil
	}), "en")

	msg, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I couldn't get an answer.", msg.Content)
}

func TestSendFailure(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewSession(askerFunc(func(context.Context, string) (*models.ChatReply, error) {
		return nil, boom
	}), "ar")

	msg, err := s.Send(context.Background(), "كم صرفت؟")
	assert.ErrorIs(t, err, boom)
	assert.True(t, msg.Failed)
	assert.Contains(t, msg.Content, "عذرًا")
	assert.Len(t, s.Messages(), 3)
	assert.False(t, s.Busy())
}

func TestSendEmptyQuestion(t *testing.T) {
	s := NewSession(nil, "en")

	_, err := s.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Len(t, s.Messages(), 1)
}

func TestSendWhileBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewSession(askerFunc(func(context.Context, string) (*models.ChatReply, error) {
		close(started)
		<-release
		return &models.ChatReply{Answer: "done"}, nil
	}), "en")

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		done <- err
	}()

	<-started
	assert.True(t, s.Busy())
	_, err := s.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, s.Messages(), 3, "the rejected question is not recorded")
}

func TestSaveAndLoad(t *testing.T) {
	s := NewSession(askerFunc(func(context.Context, string) (*models.ChatReply, error) {
		return &models.ChatReply{Answer: "42"}, nil
	}), "en")
	_, err := s.Send(context.Background(), "answer?")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "transcript.json")
	require.NoError(t, s.Save(path))

	restored := NewSession(nil, "en")
	require.NoError(t, restored.Load(path))

	got := restored.Messages()
	require.Len(t, got, 3)
	assert.Equal(t, "42", got[2].Content)
	assert.True(t, s.Messages()[2].Timestamp.Equal(got[2].Timestamp))
}
