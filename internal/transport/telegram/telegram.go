// Package telegram implements transport.Sink over Telegram, grounded
// on original_source/main.py's aiogram.Bot usage (send_message /
// edit_message_text) — the closest idiomatic Go equivalent being
// github.com/go-telegram-bot-api/telegram-bot-api/v5.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sink is a transport.Sink backed by a Telegram bot.
type Sink struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

// New builds a Sink authenticated with the given bot token.
func New(token string, log *zap.Logger) (*Sink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: new bot: %w", err)
	}
	return &Sink{bot: bot, log: log}, nil
}

// Send posts text to chatID and returns the sent message's id as the
// handle Edit later takes.
func (s *Sink) Send(ctx context.Context, chatID, text string) (string, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("telegram: invalid chat id %q: %w", chatID, err)
	}
	msg := tgbotapi.NewMessage(id, text)
	sent, err := s.bot.Send(msg)
	if err != nil {
		return "", fmt.Errorf("telegram: send: %w", err)
	}
	return strconv.Itoa(sent.MessageID), nil
}

// Updates opens the bot's long-polling update channel, so callers
// driving an inbound message loop reuse this Sink's bot connection
// instead of authenticating a second one for the same token.
func (s *Sink) Updates(timeoutSeconds int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSeconds
	return s.bot.GetUpdatesChan(u)
}

// Edit replaces the text of a previously sent message.
func (s *Sink) Edit(ctx context.Context, chatID, handle, text string) error {
	chat, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", chatID, err)
	}
	msgID, err := strconv.Atoi(handle)
	if err != nil {
		return fmt.Errorf("telegram: invalid message handle %q: %w", handle, err)
	}
	edit := tgbotapi.NewEditMessageText(chat, msgID, text)
	if _, err := s.bot.Send(edit); err != nil {
		return fmt.Errorf("telegram: edit: %w", err)
	}
	return nil
}
