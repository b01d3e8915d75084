package ui

import (
	"fmt"

	"github.com/akiyoshi81/risingstones-checkin-bot/internal/domain/model"
)

// Notifier surfaces one-shot outcomes on the account's spinner. It is handed
// to the worker at construction; nothing in the worker reaches for package
// state directly.
type Notifier struct {
	session *model.Session
}

func NewNotifier(session *model.Session) *Notifier {
	return &Notifier{session: session}
}

func (n *Notifier) SessionExpired() {
	UpdateStatus(*n.session, "Session expired, login required", 0)
}

func (n *Notifier) LoginSucceeded() {
	UpdateStatus(*n.session, "Login succeeded, session cookie saved", 0)
}

func (n *Notifier) CheckInResult(success bool, message string) {
	if success {
		SetSpinnerSuccess(*n.session, fmt.Sprintf("✓ %s", firstLine(message)))
		return
	}
	UpdateStatus(*n.session, fmt.Sprintf("✗ %s", firstLine(message)), 0)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
