package worker

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	adhttp "github.com/akiyoshi81/risingstones-checkin-bot/internal/adapters/http"
	"github.com/akiyoshi81/risingstones-checkin-bot/internal/config"
	"github.com/akiyoshi81/risingstones-checkin-bot/internal/domain/model"
	"github.com/akiyoshi81/risingstones-checkin-bot/internal/platform/logger"
	"github.com/akiyoshi81/risingstones-checkin-bot/internal/platform/ui"
	"github.com/akiyoshi81/risingstones-checkin-bot/internal/storage/checkinlog"
	"github.com/akiyoshi81/risingstones-checkin-bot/pkg/utils"
)

const (
	statusWaiting    = "WAITING"
	statusInProgress = "IN PROGRESS"
	statusDone       = "DONE"
)

// Protocol pacing. These values were measured against the live service and
// encode its anti-automation expectations; treat them as part of the wire
// protocol, not tunables.
const (
	pushDelayMin    = 1 * time.Second
	pushDelayMax    = 3 * time.Second
	pollMaxAttempts = 30
	pollInterval    = 1 * time.Second
	warmUpSpacing   = 200 * time.Millisecond
	claimSpacing    = 1 * time.Second
	maxRedirectHops = 20
)

// Timing lets tests compress the protocol delays; production workers run on
// defaultTiming.
type Timing struct {
	PushDelayMin  time.Duration
	PushDelayMax  time.Duration
	PollInterval  time.Duration
	WarmUpSpacing time.Duration
	ClaimSpacing  time.Duration
}

func defaultTiming() Timing {
	return Timing{
		PushDelayMin:  pushDelayMin,
		PushDelayMax:  pushDelayMax,
		PollInterval:  pollInterval,
		WarmUpSpacing: warmUpSpacing,
		ClaimSpacing:  claimSpacing,
	}
}

// Events receives the one-shot outcomes the presentation layer cares about.
// Implementations are injected at construction.
type Events interface {
	SessionExpired()
	LoginSucceeded()
	CheckInResult(success bool, message string)
}

type noopEvents struct{}

func (noopEvents) SessionExpired()            {}
func (noopEvents) LoginSucceeded()            {}
func (noopEvents) CheckInResult(bool, string) {}

type Worker struct {
	api     *adhttp.APIClient
	svc     config.Service
	cfg     config.Config
	store   *checkinlog.Store
	session *model.Session
	log     *logger.ClassLogger
	events  Events
	timing  Timing

	loginBusy   atomic.Bool
	checkInBusy atomic.Bool
}

func New(api *adhttp.APIClient, svc config.Service, cfg config.Config, store *checkinlog.Store, session *model.Session, log *logger.ClassLogger, events Events) *Worker {
	if events == nil {
		events = noopEvents{}
	}
	return &Worker{
		api:     api,
		svc:     svc,
		cfg:     cfg,
		store:   store,
		session: session,
		log:     log,
		events:  events,
		timing:  defaultTiming(),
	}
}

func handleError(log *logger.ClassLogger, retryDelay time.Duration, err error) (shouldStop bool) {
	errMsg := err.Error()
	fatalSubstrings := []string{
		"invalid account input",
		"database path is required",
	}

	for _, sub := range fatalSubstrings {
		if strings.Contains(errMsg, sub) {
			log.Log(fmt.Sprintf("FATAL: %s. Worker will stop.", errMsg), 0)
			return true
		}
	}

	log.Log(fmt.Sprintf("%s, retrying after %s", errMsg, retryDelay), int(retryDelay/time.Millisecond))
	return false
}

// Run owns one account for the lifetime of the process: restore the persisted
// session, then tick the daily check-in schedule forever.
func Run(account config.Account, index int, cfg config.Config, svc config.Service, store *checkinlog.Store) {
	session := &model.Session{
		Account:       account.Name,
		AccIdx:        index,
		LoginStatus:   statusWaiting,
		CheckInStatus: statusWaiting,
	}
	log := logger.NewNamed(fmt.Sprintf("Check-In - Account %d", index+1), session)

	api := adhttp.NewAPIClient(cfg.UserAgent, svc.WebBase, log)
	w := New(api, svc, cfg, store, session, log, ui.NewNotifier(session))

	cookie, savedAt, lastAt, err := store.LoadSession(account.Name)
	if err != nil {
		log.Log(fmt.Sprintf("FATAL: could not load saved session: %v", err), 0)
		ui.SetSpinnerError(*session, "Worker stopped")
		return
	}
	session.Cookie = cookie
	session.CookieSavedAt = savedAt
	session.LastCheckInAt = lastAt
	api.SetSessionCookie(cookie)

	retryDelay := time.Duration(cfg.RetryDelayedSec) * time.Second
	tick := time.Duration(cfg.TickMinutes) * time.Minute

	for {
		if err := w.Tick(); err != nil {
			if handleError(log, retryDelay, err) {
				ui.SetSpinnerError(*session, "Worker stopped")
				return
			}
			continue
		}
		log.Log(fmt.Sprintf("Schedule idle, next check in %s", tick), int(tick/time.Millisecond))
	}
}

// Tick runs one scheduled pass: skip when today's check-in is already done,
// probe the stored session for expiry, re-login when needed, then check in.
func (w *Worker) Tick() error {
	if !w.cfg.AutoCheckIn {
		w.log.JustLog("Auto check-in disabled, idling")
		return nil
	}

	if !utils.ShouldSignInToday(w.session.LastCheckInAt) {
		w.session.CheckInStatus = statusDone
		w.log.JustLog("Already checked in today, skipping")
		return nil
	}

	needLogin := !w.api.HasSessionCookie()
	if !needLogin && !w.ProbeSession() {
		needLogin = true
	}

	if needLogin {
		if ok := w.TriggerLogin(); !ok {
			return fmt.Errorf("push login did not complete")
		}
	}

	ok, msg := w.TriggerCheckIn()
	if !ok {
		return fmt.Errorf("check-in failed: %s", msg)
	}
	return nil
}

// TriggerLogin starts a push-login attempt unless one is already in flight
// for this account; a re-entrant call is logged and dropped, never queued.
func (w *Worker) TriggerLogin() bool {
	if !w.loginBusy.CompareAndSwap(false, true) {
		w.log.JustLog("Login already in flight, ignoring trigger")
		return false
	}
	defer w.loginBusy.Store(false)
	return w.performPushLogin()
}

// TriggerCheckIn runs the check-in and reward flow unless one is already in
// flight; the same drop-not-queue rule as TriggerLogin applies.
func (w *Worker) TriggerCheckIn() (bool, string) {
	if !w.checkInBusy.CompareAndSwap(false, true) {
		w.log.JustLog("Check-in already in flight, ignoring trigger")
		return false, "check-in already in progress"
	}
	defer w.checkInBusy.Store(false)
	return w.runCheckIn()
}

// wait renders a countdown on the status panel for the duration of a pacing
// delay; the countdown is the delay.
func (w *Worker) wait(msg string, d time.Duration) {
	if d <= 0 {
		return
	}
	w.log.Log(msg, int(d/time.Millisecond))
}
