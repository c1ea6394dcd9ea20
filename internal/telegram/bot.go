// Package telegram is a long-polling Telegram front end for the fact
// checker. Each chat owns one factcheck.Form.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anatolykoptev/go_factcheck/internal/backend"
	"github.com/anatolykoptev/go_factcheck/internal/engine"
	"github.com/anatolykoptev/go_factcheck/internal/factcheck"
	"github.com/anatolykoptev/go_factcheck/internal/history"
)

const pollTimeout = 60

// sender is the part of BotAPI used to reply.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// chat is one conversation's form and its pending "Processing..." message.
type chat struct {
	form         *factcheck.Form
	processingID int
}

// Bot answers fact-check requests.
type Bot struct {
	api    *tgbotapi.BotAPI
	send   sender
	checks backend.API
	rec    history.Recorder

	mu    sync.Mutex
	chats map[int64]*chat
}

// New connects to Telegram with token. rec may be nil.
func New(token string, httpClient *http.Client, checks backend.API, rec history.Recorder) (*Bot, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	slog.Info("telegram: authorized", slog.String("bot", api.Self.UserName))
	b := newBot(api, checks, rec)
	b.api = api
	return b, nil
}

func newBot(s sender, checks backend.API, rec history.Recorder) *Bot {
	return &Bot{
		send:   s,
		checks: checks,
		rec:    rec,
		chats:  make(map[int64]*chat),
	}
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if b.api == nil {
		return errors.New("telegram: bot not connected")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.Close()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				b.handle(ctx, msg)
			}(update.Message)
		}
	}
}

// Close closes every chat's form.
func (b *Bot) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, c := range b.chats {
		c.form.Close()
		delete(b.chats, id)
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	engine.IncrTelegramMessages()
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.reply(chatID, helpText)
		case "check":
			b.check(ctx, chatID, msg.CommandArguments())
		default:
			b.reply(chatID, "Unknown command. Use /help.")
		}
		return
	}

	url := extractURL(msg.Text)
	if url == "" {
		b.reply(chatID, "Send a YouTube link or use /check <url>.")
		return
	}
	b.check(ctx, chatID, url)
}

func (b *Bot) check(ctx context.Context, chatID int64, url string) {
	c := b.chat(chatID)
	st, err := c.form.Submit(ctx, url)
	switch {
	case errors.Is(err, factcheck.ErrSubmissionInFlight):
		b.reply(chatID, "Still processing the previous video, please wait.")
		return
	case err != nil:
		return
	}
	b.deliver(chatID, c, st)
}

// chat returns the chat's state, creating its form on first use.
func (b *Bot) chat(chatID int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.chats[chatID]; ok {
		return c
	}
	c := &chat{}
	opts := []factcheck.Option{factcheck.WithObserver(b.onState(chatID, c))}
	if b.rec != nil {
		opts = append(opts, factcheck.WithRecorder(b.rec))
	}
	c.form = factcheck.New(b.checks, opts...)
	b.chats[chatID] = c
	return c
}

// onState posts "Processing..." when a submission starts.
func (b *Bot) onState(chatID int64, c *chat) func(factcheck.State) {
	var wasLoading bool
	return func(st factcheck.State) {
		if st.Loading && !wasLoading {
			if m, err := b.send.Send(tgbotapi.NewMessage(chatID, "Processing...")); err == nil {
				c.processingID = m.MessageID
			}
		}
		wasLoading = st.Loading
	}
}

// deliver replaces the "Processing..." message with the outcome and sends
// the thumbnail and claims.
func (b *Bot) deliver(chatID int64, c *chat, st factcheck.State) {
	status := statusText(st)
	if c.processingID != 0 {
		if _, err := b.send.Send(tgbotapi.NewEditMessageText(chatID, c.processingID, status)); err != nil {
			b.reply(chatID, status)
		}
		c.processingID = 0
	} else {
		b.reply(chatID, status)
	}

	if thumb := st.Thumbnail(); thumb != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(thumb))
		photo.Caption = st.URL
		if _, err := b.send.Send(photo); err != nil {
			slog.Warn("telegram: send photo failed", slog.Any("error", err))
		}
	}
	if len(st.Claims) > 0 {
		for _, part := range splitMessage(formatClaims(st.Claims), maxMessageLen) {
			b.reply(chatID, part)
		}
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.send.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Warn("telegram: send failed", slog.Int64("chat", chatID), slog.Any("error", err))
	}
}
