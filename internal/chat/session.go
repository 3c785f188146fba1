// Package chat keeps a question-and-answer session over the user's invoices.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"mufawter/internal/logger"
	"mufawter/pkg/models"
)

var (
	// ErrBusy is returned when a question is sent while another is in flight.
	ErrBusy = errors.New("a question is already being answered")

	// ErrEmptyQuestion is returned for blank questions. Nothing is recorded.
	ErrEmptyQuestion = errors.New("question is empty")
)

// Role is who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// WelcomeID is the ID of the greeting that opens every new session.
const WelcomeID = "welcome"

// Message is one entry of the transcript.
type Message struct {
	ID        string           `json:"id"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Invoices  []models.Invoice `json:"invoices,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Failed    bool             `json:"failed,omitempty"`
}

// Asker answers a question. *api.Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string) (*models.ChatReply, error)
}

type texts struct {
	welcome  string
	noAnswer string
	failure  string
}

var localized = map[string]texts{
	"ar": {
		welcome:  "مرحبًا! أنا مساعدك الذكي لتحليل الفواتير. اسألني أي سؤال عن فواتيرك مثل:\n\n• ما هو إجمالي مصروفاتي هذا الشهر؟\n• ما أكثر متجر أشتري منه؟\n• كم فاتورة لدي من المطاعم؟",
		noAnswer: "عذرًا، لم أتمكن من الحصول على إجابة.",
		failure:  "عذرًا، حدث خطأ أثناء معالجة سؤالك. الرجاء المحاولة مرة أخرى.",
	},
	"en": {
		welcome:  "Hi! I'm your invoice assistant. Ask me anything about your invoices, for example:\n\n• What did I spend this month?\n• Which store do I buy from most?\n• How many restaurant invoices do I have?",
		noAnswer: "Sorry, I couldn't get an answer.",
		failure:  "Sorry, something went wrong while answering your question. Please try again.",
	},
}

// Session holds the transcript and guards against overlapping questions.
type Session struct {
	asker    Asker
	text     texts
	inFlight atomic.Bool
	now      func() time.Time

	mu       sync.Mutex
	messages []Message

	log zerolog.Logger
}

// NewSession starts a session that opens with a localized greeting.
func NewSession(asker Asker, locale string) *Session {
	text, ok := localized[locale]
	if !ok {
		text = localized["ar"]
	}
	s := &Session{
		asker: asker,
		text:  text,
		now:   time.Now,
		log:   logger.WithComponent("chat"),
	}
	s.messages = []Message{{
		ID:        WelcomeID,
		Role:      RoleAssistant,
		Content:   text.welcome,
		Timestamp: s.now(),
	}}
	return s
}

// Send records the question, asks it and records the answer. On failure an
// apology is recorded and returned together with the error. Only one
// question may be in flight at a time.
func (s *Session) Send(ctx context.Context, question string) (Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Message{}, ErrEmptyQuestion
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return Message{}, ErrBusy
	}
	defer s.inFlight.Store(false)

	s.append(Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   question,
		Timestamp: s.now(),
	})

	start := time.Now()
	reply, err := s.asker.Ask(ctx, question)
	if err != nil {
		s.log.Error().Err(err).Msg("Chat question failed")
		msg := s.append(Message{
			ID:        uuid.NewString(),
			Role:      RoleAssistant,
			Content:   s.text.failure,
			Timestamp: s.now(),
			Failed:    true,
		})
		return msg, err
	}

	content := strings.TrimSpace(reply.Text())
	if content == "" {
		content = s.text.noAnswer
	}

	s.log.Debug().
		Int("invoices", len(reply.Invoices)).
		Dur("duration", time.Since(start)).
		Msg("Chat question answered")

	return s.append(Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Invoices:  reply.Invoices,
		Timestamp: s.now(),
	}), nil
}

// Busy reports whether a question is in flight.
func (s *Session) Busy() bool {
	return s.inFlight.Load()
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

func (s *Session) append(m Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return m
}

// Save writes the transcript as indented JSON.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(s.Messages(), "", "  ")
	if err != nil {
		return fmt.Errorf("chat: encode transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("chat: write transcript: %w", err)
	}
	return nil
}

// Load replaces the transcript with one saved by Save.
func (s *Session) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("chat: read transcript: %w", err)
	}
	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("chat: decode transcript: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = messages
	return nil
}
