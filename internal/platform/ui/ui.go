package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/akiyoshi81/risingstones-checkin-bot/internal/domain/model"
)

var (
	multi    *pterm.MultiPrinter
	spinners = make(map[int]*pterm.SpinnerPrinter)
	mu       sync.Mutex
)

func StartUISystem() {
	m, _ := pterm.DefaultMultiPrinter.Start()
	multi = m
}

func StopUISystem() {
	if multi != nil {
		multi.Stop()
	}
}

func UpdateStatus(session model.Session, status string, remainingDelay time.Duration) {
	mu.Lock()
	defer mu.Unlock()

	if multi == nil {
		return
	}

	delayStr := FormatDelay(remainingDelay)
	loginStatus := defaultString(session.LoginStatus, "WAITING")
	checkInStatus := defaultString(session.CheckInStatus, "WAITING")

	content := fmt.Sprintf(`
=============== Account %d ================
Account       : %s

Session       : %s
Daily Check-In: %s
Rewards       : %d claimed

Last Result   : %s

Status   : %s
Delay    : %s
===========================================`,
		session.AccIdx+1,
		session.Account,
		sessionLabel(session),
		checkInStatus,
		session.RewardsClaimed,
		defaultString(session.LastMessage, "-"),
		defaultString(status, loginStatus),
		delayStr)

	if spinner, ok := spinners[session.AccIdx]; ok {
		spinner.UpdateText(content)
	} else {
		spinner, _ := pterm.DefaultSpinner.
			WithWriter(multi.NewWriter()).
			WithRemoveWhenDone(false).
			Start(content)
		spinners[session.AccIdx] = spinner
	}
}

func SetSpinnerSuccess(session model.Session, finalMessage string) {
	mu.Lock()
	spinner, ok := spinners[session.AccIdx]
	mu.Unlock()
	if ok {
		UpdateStatus(session, finalMessage, 0)
		spinner.Success()
	}
}

func SetSpinnerError(session model.Session, finalMessage string) {
	mu.Lock()
	spinner, ok := spinners[session.AccIdx]
	mu.Unlock()
	if ok {
		UpdateStatus(session, finalMessage, 0)
		spinner.Fail()
	}
}

func FormatDelay(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d H %02d M %02d S", h, m, s)
}

func defaultString(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}

func sessionLabel(session model.Session) string {
	if strings.TrimSpace(session.Cookie) == "" {
		return "NOT AUTHENTICATED"
	}
	if session.CookieSavedAt != nil {
		return fmt.Sprintf("COOKIE SAVED %s", session.CookieSavedAt.Format("01-02 15:04"))
	}
	return "AUTHENTICATED"
}
