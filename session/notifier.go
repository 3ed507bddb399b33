package session

import "github.com/rs/zerolog/log"

// Notifier surfaces user facing messages, such as a toast in a UI
type Notifier interface {
	Error(message string)
}

// LogNotifier writes notifications to the global zerolog logger
type LogNotifier struct{}

func (LogNotifier) Error(message string) {
	log.Error().Str("notification", message).Msg("session error")
}
