// Package telegram adapts the Telegram Bot API (long polling) to the
// gateway message pipeline: inbound updates become pipeline messages and
// pipeline replies go back to the originating chat.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/config"
)

const (
	// maxVoiceBytes caps voice note downloads.
	maxVoiceBytes = 20 << 20

	downloadMaxRetries = 3
)

// Handler runs one inbound message through the pipeline and returns the
// reply to deliver.
type Handler func(ctx context.Context, msg bus.IncomingMessage) bus.OutboundMessage

// Channel connects to Telegram via the Bot API using long polling.
type Channel struct {
	bot     *telego.Bot
	cfg     config.TelegramConfig
	handler Handler

	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// New creates a Telegram channel from config.
func New(cfg config.TelegramConfig, handler Handler) (*Channel, error) {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Channel{bot: bot, cfg: cfg, handler: handler}, nil
}

// Start begins long polling for Telegram updates until Stop is called.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("starting telegram bot (polling mode)")

	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})

	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	slog.Info("telegram bot connected", "username", c.bot.Username())

	go func() {
		defer close(c.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				if update.Message != nil {
					c.handleMessage(pollCtx, update.Message)
				}
			}
		}
	}()

	return nil
}

// Stop cancels long polling and waits for the polling goroutine to exit so
// Telegram releases the getUpdates lock before a new instance starts.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping telegram bot")
	if c.pollCancel != nil {
		c.pollCancel()
	}
	if c.pollDone != nil {
		select {
		case <-c.pollDone:
			slog.Info("telegram bot stopped")
		case <-time.After(10 * time.Second):
			slog.Warn("telegram polling goroutine did not exit within timeout")
		}
	}
	return nil
}

// handleMessage converts one Telegram message to a pipeline message, runs
// the handler, and delivers the reply.
func (c *Channel) handleMessage(ctx context.Context, msg *telego.Message) {
	if msg.From == nil {
		return
	}

	in := bus.IncomingMessage{
		Channel:  "telegram",
		SenderID: senderKey(msg.From),
		ChatID:   strconv.FormatInt(msg.Chat.ID, 10),
		Text:     msg.Text,
	}

	if msg.Voice != nil {
		path, err := c.downloadVoice(ctx, msg.Voice.FileID)
		if err != nil {
			slog.Warn("voice download failed", "chat_id", in.ChatID, "error", err)
		} else {
			defer os.Remove(path)
			in.Attachments = append(in.Attachments, bus.Attachment{Type: "audio", Ref: path})
		}
	}

	_ = c.bot.SendChatAction(ctx, tu.ChatAction(tu.ID(msg.Chat.ID), telego.ChatActionTyping))

	out := c.handler(ctx, in)
	if out.Text == "" {
		return
	}
	if _, err := c.bot.SendMessage(ctx, tu.Message(tu.ID(msg.Chat.ID), out.Text)); err != nil {
		slog.Error("telegram send failed", "chat_id", in.ChatID, "error", err)
	}
}

// senderKey is the lookup key for the user store. Telegram never exposes
// phone numbers, so users are provisioned by their numeric Telegram ID.
func senderKey(from *telego.User) string {
	return strconv.FormatInt(from.ID, 10)
}

// downloadVoice fetches a voice note by file_id and stores it in a temp
// file. The caller removes the file after handling.
func (c *Channel) downloadVoice(ctx context.Context, fileID string) (string, error) {
	var file *telego.File
	var err error
	for attempt := 1; attempt <= downloadMaxRetries; attempt++ {
		file, err = c.bot.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
		if err == nil {
			break
		}
		if attempt < downloadMaxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("get file info after %d attempts: %w", downloadMaxRetries, err)
	}
	if file.FilePath == "" {
		return "", fmt.Errorf("empty file path for file_id %s", fileID)
	}
	if int64(file.FileSize) > maxVoiceBytes {
		return "", fmt.Errorf("voice note too large: %d bytes", file.FileSize)
	}

	downloadURL := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", c.cfg.Token, file.FilePath)
	resp, err := http.Get(downloadURL)
	if err != nil {
		return "", fmt.Errorf("download voice: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	ext := filepath.Ext(file.FilePath)
	if ext == "" {
		ext = ".oga"
	}
	tmpFile, err := os.CreateTemp("", "concierge_voice_*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer tmpFile.Close()

	written, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxVoiceBytes+1))
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("save voice: %w", err)
	}
	if written > maxVoiceBytes {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("voice exceeds max size during download: %d bytes", written)
	}
	return tmpFile.Name(), nil
}
