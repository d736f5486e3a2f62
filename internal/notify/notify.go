// Package notify delivers run summaries to the configured channel.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/goalkit/goalkit/internal/config"
)

// TokenEnv is the environment variable holding the Telegram bot token. The
// token never lives in the settings file.
const TokenEnv = "GOALKIT_TELEGRAM_TOKEN"

// Message is one notification payload.
type Message struct {
	Title string
	Lines []string
}

// Text flattens the message for plain-text channels.
func (m Message) Text() string {
	var b strings.Builder
	b.WriteString(m.Title)
	for _, l := range m.Lines {
		b.WriteString("\n")
		b.WriteString(l)
	}
	return b.String()
}

// Notifier delivers a message to one channel.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// New builds the notifier the config names. Unknown channels fall back to
// the log notifier so a typo never silences a pipeline.
func New(cfg config.NotificationConfig) Notifier {
	switch cfg.Channel {
	case "telegram":
		n, err := NewTelegram(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("telegram notifier unavailable, falling back to log")
			return LogNotifier{}
		}
		return n
	default:
		return LogNotifier{}
	}
}

// LogNotifier writes the message to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, m Message) error {
	log.Info().Str("title", m.Title).Strs("lines", m.Lines).Msg("notification")
	return nil
}

// TelegramNotifier posts messages through the Bot API.
type TelegramNotifier struct {
	token  string
	chatID string
	apiURL string
	client *http.Client
}

// NewTelegram reads the bot token from the environment and the chat id from
// config.
func NewTelegram(cfg config.NotificationConfig) (*TelegramNotifier, error) {
	token := os.Getenv(TokenEnv)
	if token == "" {
		return nil, fmt.Errorf("telegram channel configured but %s is not set", TokenEnv)
	}
	if cfg.TelegramChatID == "" {
		return nil, fmt.Errorf("telegram channel configured without notifications.telegram_chat_id")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramNotifier{
		token:  token,
		chatID: cfg.TelegramChatID,
		apiURL: "https://api.telegram.org",
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, m Message) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    m.Text(),
	})
	if err != nil {
		return fmt.Errorf("encode telegram payload: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api returned %s", resp.Status)
	}
	log.Debug().Str("chat_id", t.chatID).Msg("telegram notification sent")
	return nil
}
