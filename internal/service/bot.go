package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/sentencebot/internal/auth"
	"github.com/timmy/sentencebot/internal/catalog"
	"github.com/timmy/sentencebot/internal/domain"
	"github.com/timmy/sentencebot/internal/logger"
	"github.com/timmy/sentencebot/internal/quote"
)

// Outcome is the result of handling one inbound message.
type Outcome = domain.ReplyStatus

const (
	OutcomeReplied      = domain.ReplyStatusReplied
	OutcomeNotAQuote    = domain.ReplyStatusNotAQuote
	OutcomeUnauthorized = domain.ReplyStatusUnauthorized
	OutcomeFailed       = domain.ReplyStatusFailed
)

// ErrNotStarted is returned by HandleMessage before the gate was built.
var ErrNotStarted = errors.New("bot not started")

// ContactSource lists the contacts known to the messaging session.
type ContactSource interface {
	GetContacts(ctx context.Context) ([]domain.Contact, error)
}

// Replier delivers a generated image as a reply to the event it answers.
type Replier interface {
	Reply(ctx context.Context, event domain.MessageEvent, media domain.EncodedImage) error
}

// Renderer composes the reply image.
type Renderer interface {
	Compose(ctx context.Context, spec domain.RenderSpec) (domain.EncodedImage, error)
}

// HistoryRecorder persists reply metadata.
type HistoryRecorder interface {
	Create(ctx context.Context, record *domain.ReplyRecord) error
}

// BotConfig holds configuration for the bot.
type BotConfig struct {
	AllowedContacts []string
}

// Bot answers quoted sentences from authorized contacts with a captioned image.
type Bot struct {
	names    []string
	catalog  *catalog.Catalog
	rng      catalog.Random
	renderer Renderer
	history  HistoryRecorder
	logger   *logger.Logger
	gate     atomic.Pointer[auth.Gate]
}

// NewBot creates a new bot. history may be nil to disable the reply history.
// Parameters:
//   - cfg: allow-list configuration.
//   - cat: background catalog, read-only.
//   - rng: random source used to pick backgrounds.
//   - renderer: image composer.
//   - history: optional reply history store.
//   - log: fallback logger when the context carries none.
// Returns:
//   - *Bot: bot that must be started before handling messages.
func NewBot(
	cfg *BotConfig,
	cat *catalog.Catalog,
	rng catalog.Random,
	renderer Renderer,
	history HistoryRecorder,
	log *logger.Logger,
) *Bot {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Bot{
		names:    append([]string(nil), cfg.AllowedContacts...),
		catalog:  cat,
		rng:      rng,
		renderer: renderer,
		history:  history,
		logger:   log,
	}
}

// log returns a logger from context if available, otherwise returns the bot's logger
func (b *Bot) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != logger.GetDefault() {
		return l
	}
	return b.logger
}

// Start builds the authorization gate from the session's contact list.
func (b *Bot) Start(ctx context.Context, contacts ContactSource) error {
	return b.Refresh(ctx, contacts)
}

// Refresh rebuilds the authorization gate. The previous gate keeps serving
// lookups until the new one is ready and stays in place if the fetch fails.
func (b *Bot) Refresh(ctx context.Context, contacts ContactSource) error {
	start := time.Now()
	list, err := contacts.GetContacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch contacts: %w", err)
	}

	gate := auth.Build(b.names, list)
	b.gate.Store(gate)

	logger.With(logger.Fields{
		logger.FieldCount: gate.Len(),
		"contacts":        len(list),
	}).WithDuration(start).Info(ctx, "Authorization gate built")
	return nil
}

// Gate returns the current authorization gate, nil before Start.
func (b *Bot) Gate() *auth.Gate {
	return b.gate.Load()
}

// Backgrounds returns the number of backgrounds replies are drawn from.
func (b *Bot) Backgrounds() int {
	return b.catalog.Len()
}

// HandleMessage runs the reply pipeline for one inbound message.
// Failures are logged and reported as OutcomeFailed together with the cause;
// they never affect other messages.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - event: the inbound message.
//   - replier: delivers the generated image.
// Returns:
//   - Outcome: what the bot did with the message.
//   - error: cause of an OutcomeFailed, nil otherwise.
func (b *Bot) HandleMessage(ctx context.Context, event domain.MessageEvent, replier Replier) (Outcome, error) {
	start := time.Now()
	ctx = b.log(ctx).WithFields(logger.Fields{
		logger.FieldMessageID: event.ID,
		logger.FieldSenderID:  event.SenderID,
		logger.FieldChat:      event.Chat.Name,
	}).WithContext(ctx)

	if event.Chat.IsGroup {
		b.log(ctx).Infof("chat - group: %s", event.Body)
	} else {
		b.log(ctx).Infof("chat - private: %s", event.Body)
	}

	sentence, err := quote.Extract(event.Body)
	if err != nil {
		return OutcomeNotAQuote, nil
	}

	record := &domain.ReplyRecord{
		ID:        uuid.New().String(),
		MessageID: event.ID,
		SenderID:  event.SenderID,
		ChatName:  event.Chat.Name,
		IsGroup:   event.Chat.IsGroup,
		Sentence:  sentence.String(),
	}

	outcome, err := b.reply(ctx, event, sentence, replier, record)
	record.Status = outcome
	record.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		record.Error = err.Error()
		logger.With(logger.Fields{
			"background": record.Background,
		}).WithStatus(string(outcome)).WithDuration(start).Error(ctx, "Failed to reply: %v", err)
	} else if outcome == OutcomeReplied {
		logger.With(logger.Fields{
			"background": record.Background,
			"author":     record.Author,
		}).WithStatus(string(outcome)).WithSize(record.PayloadSize).WithDuration(start).Info(ctx, "Reply sent")
	} else {
		b.log(ctx).Debug("Sender not authorized, ignoring quote")
	}

	b.record(ctx, record)
	return outcome, err
}

func (b *Bot) reply(
	ctx context.Context,
	event domain.MessageEvent,
	sentence quote.Sentence,
	replier Replier,
	record *domain.ReplyRecord,
) (Outcome, error) {
	gate := b.gate.Load()
	if gate == nil {
		return OutcomeFailed, ErrNotStarted
	}
	if !gate.IsAuthorized(event.SenderID) {
		return OutcomeUnauthorized, nil
	}

	background, err := b.catalog.Select(b.rng)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to select background: %w", err)
	}
	record.Background = background.Location

	author := quote.DeriveAuthor(background)
	record.Author = author

	media, err := b.renderer.Compose(ctx, domain.RenderSpec{
		Background: background,
		Sentence:   sentence.String(),
		Author:     author,
	})
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to compose image: %w", err)
	}
	record.PayloadSize = len(media.Payload)

	if err := replier.Reply(ctx, event, media); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to deliver reply: %w", err)
	}
	return OutcomeReplied, nil
}

func (b *Bot) record(ctx context.Context, record *domain.ReplyRecord) {
	if b.history == nil {
		return
	}
	if err := b.history.Create(ctx, record); err != nil {
		b.log(ctx).WithError(err).Warn("Failed to record reply history")
	}
}
