package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/sentencebot/internal/catalog"
	"github.com/timmy/sentencebot/internal/compose"
	"github.com/timmy/sentencebot/internal/domain"
	"golang.org/x/image/font/basicfont"
)

type fakeContacts struct {
	contacts []domain.Contact
	err      error
}

func (f *fakeContacts) GetContacts(context.Context) ([]domain.Contact, error) {
	return f.contacts, f.err
}

type fakeReplier struct {
	mu      sync.Mutex
	replies []domain.EncodedImage
	failN   int
}

func (f *fakeReplier) Reply(_ context.Context, _ domain.MessageEvent, media domain.EncodedImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failN > 0 {
		f.failN--
		return errors.New("gateway unavailable")
	}
	f.replies = append(f.replies, media)
	return nil
}

func (f *fakeReplier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.replies)
}

type memoryHistory struct {
	mu      sync.Mutex
	records []domain.ReplyRecord
}

func (m *memoryHistory) Create(_ context.Context, record *domain.ReplyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *record)
	return nil
}

func writeBackground(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newTestBot(t *testing.T, history HistoryRecorder) *Bot {
	t.Helper()
	dir := t.TempDir()
	writeBackground(t, dir, "Albert-Einstein.png")

	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	composer := compose.NewWithFace(compose.DefaultConfig(), catalog.DirOpener{}, basicfont.Face7x13)
	t.Cleanup(func() { composer.Close() })

	bot := NewBot(&BotConfig{AllowedContacts: []string{"Maria", "Family"}}, cat, catalog.NewRandom(1), composer, history, nil)
	err = bot.Start(context.Background(), &fakeContacts{contacts: []domain.Contact{
		{ID: "maria@c.us", Name: "maria", IsMyContact: true},
		{ID: "family@g.us", Name: "Family", IsGroup: true},
		{ID: "stranger@c.us", Name: "Stranger", IsMyContact: true},
	}})
	require.NoError(t, err)
	return bot
}

func TestHandleMessageRepliesToQuote(t *testing.T) {
	history := &memoryHistory{}
	bot := newTestBot(t, history)
	replier := &fakeReplier{}

	outcome, err := bot.HandleMessage(context.Background(), domain.MessageEvent{
		ID:       "m1",
		SenderID: "maria@c.us",
		Body:     `"Life is short."`,
		Chat:     domain.Chat{ID: "maria@c.us", Name: "Maria"},
	}, replier)
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplied, outcome)

	require.Equal(t, 1, replier.count())
	media := replier.replies[0]
	assert.Equal(t, domain.MimeTypePNG, media.MimeType)
	data, err := media.Bytes()
	require.NoError(t, err)
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	require.Len(t, history.records, 1)
	record := history.records[0]
	assert.Equal(t, OutcomeReplied, record.Status)
	assert.Equal(t, `"Life is short."`, record.Sentence)
	assert.Equal(t, "Albert Einstein", record.Author)
	assert.Equal(t, len(media.Payload), record.PayloadSize)
	assert.NotEmpty(t, record.ID)
}

func TestHandleMessageIgnoresPlainText(t *testing.T) {
	history := &memoryHistory{}
	bot := newTestBot(t, history)
	replier := &fakeReplier{}

	outcome, err := bot.HandleMessage(context.Background(), domain.MessageEvent{
		SenderID: "maria@c.us",
		Body:     "Life is short.",
	}, replier)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotAQuote, outcome)
	assert.Zero(t, replier.count())
	assert.Empty(t, history.records)
}

func TestHandleMessageUnauthorized(t *testing.T) {
	history := &memoryHistory{}
	bot := newTestBot(t, history)
	replier := &fakeReplier{}

	for _, sender := range []string{"stranger@c.us", "unknown@c.us"} {
		outcome, err := bot.HandleMessage(context.Background(), domain.MessageEvent{
			SenderID: sender,
			Body:     `"Life is short."`,
		}, replier)
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnauthorized, outcome)
	}
	assert.Zero(t, replier.count())
	require.Len(t, history.records, 2)
	assert.Equal(t, OutcomeUnauthorized, history.records[0].Status)
}

func TestHandleMessageFailureDoesNotStopLaterMessages(t *testing.T) {
	history := &memoryHistory{}
	bot := newTestBot(t, history)
	replier := &fakeReplier{failN: 1}
	event := domain.MessageEvent{SenderID: "family@g.us", Body: "“Stay curious”", Chat: domain.Chat{IsGroup: true}}

	outcome, err := bot.HandleMessage(context.Background(), event, replier)
	assert.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)

	outcome, err = bot.HandleMessage(context.Background(), event, replier)
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplied, outcome)
	assert.Equal(t, 1, replier.count())

	require.Len(t, history.records, 2)
	assert.Equal(t, OutcomeFailed, history.records[0].Status)
	assert.Contains(t, history.records[0].Error, "gateway unavailable")
}

func TestHandleMessageRenderFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644))
	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	composer := compose.NewWithFace(compose.DefaultConfig(), catalog.DirOpener{}, basicfont.Face7x13)
	defer composer.Close()

	bot := NewBot(&BotConfig{AllowedContacts: []string{"Maria"}}, cat, catalog.NewRandom(1), composer, nil, nil)
	require.NoError(t, bot.Start(context.Background(), &fakeContacts{contacts: []domain.Contact{
		{ID: "maria@c.us", Name: "Maria", IsMyContact: true},
	}}))

	replier := &fakeReplier{}
	outcome, err := bot.HandleMessage(context.Background(), domain.MessageEvent{SenderID: "maria@c.us", Body: `'hi'`}, replier)
	assert.Equal(t, OutcomeFailed, outcome)
	var renderErr *compose.RenderError
	assert.ErrorAs(t, err, &renderErr)
	assert.Zero(t, replier.count())
}

func TestHandleMessageBeforeStart(t *testing.T) {
	cat := catalog.New("test", []domain.ImageEntry{{Title: "a", Format: "png", Location: "a.png"}})
	bot := NewBot(&BotConfig{}, cat, catalog.NewRandom(1), nil, nil, nil)

	outcome, err := bot.HandleMessage(context.Background(), domain.MessageEvent{SenderID: "x", Body: `"x"`}, &fakeReplier{})
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Nil(t, bot.Gate())
}

func TestRefreshKeepsGateOnError(t *testing.T) {
	bot := newTestBot(t, nil)
	before := bot.Gate()
	require.Equal(t, 2, before.Len())

	err := bot.Refresh(context.Background(), &fakeContacts{err: errors.New("session closed")})
	assert.Error(t, err)
	assert.Same(t, before, bot.Gate())

	require.NoError(t, bot.Refresh(context.Background(), &fakeContacts{contacts: []domain.Contact{
		{ID: "maria2@c.us", Name: "MARIA", IsMyContact: true},
	}}))
	assert.Equal(t, 1, bot.Gate().Len())
	assert.True(t, bot.Gate().IsAuthorized("maria2@c.us"))
	assert.False(t, bot.Gate().IsAuthorized("maria@c.us"))
}

func TestHandleMessageConcurrent(t *testing.T) {
	bot := newTestBot(t, &memoryHistory{})
	replier := &fakeReplier{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := bot.HandleMessage(context.Background(), domain.MessageEvent{
				SenderID: "maria@c.us",
				Body:     `"Concurrency is not parallelism"`,
			}, replier)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, replier.count())
}
