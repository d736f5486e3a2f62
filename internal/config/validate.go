package config

import (
	"fmt"
	"time"
)

var knownChannels = map[string]bool{
	"log":      true,
	"telegram": true,
}

// Validate checks the configuration for values no pipeline step could run with.
func (c Config) Validate() error {
	if c.Project.Timezone != "" {
		if _, err := time.LoadLocation(c.Project.Timezone); err != nil {
			return fmt.Errorf("project.timezone: %w", err)
		}
	}
	if c.Streaks.WindowDays <= 0 {
		return fmt.Errorf("streaks.window_days must be > 0, got %d", c.Streaks.WindowDays)
	}
	if !knownChannels[c.Notifications.Channel] {
		return fmt.Errorf("notifications.channel must be one of log|telegram, got %q", c.Notifications.Channel)
	}
	if c.Notifications.Channel == "telegram" && c.Notifications.TelegramChatID == "" {
		return fmt.Errorf("notifications.telegram_chat_id is required for the telegram channel")
	}
	for name, rel := range c.Paths {
		if rel == "" {
			return fmt.Errorf("paths.%s must not be empty", name)
		}
	}
	return nil
}
