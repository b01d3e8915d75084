package worker

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	adhttp "github.com/akiyoshi81/risingstones-checkin-bot/internal/adapters/http"
	"github.com/akiyoshi81/risingstones-checkin-bot/internal/domain/model"
	"github.com/akiyoshi81/risingstones-checkin-bot/pkg/utils"
)

// Business codes of the check-in endpoint. 10001 and 10301 both mean the
// day's check-in is effectively satisfied, so they count as success.
const (
	codeLoggedIn         = 10000
	codeCheckInOK        = 10000
	codeAlreadyCheckedIn = 10001
	codeRateLimited      = 10301
)

type apiEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type rewardListResponse struct {
	Code int                    `json:"code"`
	Msg  string                 `json:"msg"`
	Data []model.SignRewardItem `json:"data"`
}

// ProbeSession asks the service whether the stored cookie still represents a
// live session. Only this probe may classify a session as expired; check-in
// failure codes never do. Scheduled runs call it before trusting the cookie,
// manual runs go straight to the check-in.
func (w *Worker) ProbeSession() bool {
	if !w.api.HasSessionCookie() {
		w.raiseExpired("No saved session cookie")
		return false
	}

	body, err := w.api.Fetch(w.svc.APIBase+"/api/home/GHome/isLogin?tempsuid="+utils.NewTempSUID(), nil)
	if err != nil {
		w.raiseExpired(fmt.Sprintf("Session probe failed: %v", err))
		return false
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		w.raiseExpired("Session probe failed: malformed response")
		return false
	}
	if env.Code != codeLoggedIn {
		w.raiseExpired("Session cookie expired, login required")
		return false
	}
	return true
}

// runCheckIn performs the daily check-in and then claims every claimable
// reward of the current month, strictly in server order with a pacing gap
// between claims. The last-check-in timestamp is only advanced when the whole
// sequence finishes cleanly.
func (w *Worker) runCheckIn() (bool, string) {
	if !w.api.HasSessionCookie() {
		w.raiseExpired("Not authenticated, check-in skipped")
		return false, "not authenticated"
	}

	w.session.CheckInStatus = statusInProgress
	w.log.Log("Checking in")

	outcome := w.requestSignIn()
	if !outcome.Success {
		w.session.CheckInStatus = statusWaiting
		w.session.LastMessage = outcome.Message
		w.events.CheckInResult(false, outcome.Message)
		return false, outcome.Message
	}

	results := []string{fmt.Sprintf("check-in: %s", outcome.Message)}
	w.log.JustLog(fmt.Sprintf("Check-in result: %s", outcome.Message))

	month := utils.CurrentMonth()
	rewards, err := w.fetchRewardList(month)
	if err != nil {
		msg := fmt.Sprintf("failed to fetch reward list: %v", err)
		w.session.CheckInStatus = statusWaiting
		w.session.LastMessage = msg
		w.events.CheckInResult(false, msg)
		return false, msg
	}
	w.log.LogObject(fmt.Sprintf("Reward list for %s", month), rewards)

	claimed := 0
	for _, reward := range rewards {
		if reward.IsGet != model.RewardAvailable {
			continue
		}
		claimMsg, err := w.claimReward(reward.ID, month)
		if err != nil {
			msg := fmt.Sprintf("failed to claim %s: %v", reward.ItemName, err)
			w.session.CheckInStatus = statusWaiting
			w.session.LastMessage = msg
			w.events.CheckInResult(false, strings.Join(append(results, msg), "\n"))
			return false, msg
		}
		claimed++
		line := fmt.Sprintf("claim %s: %s", reward.ItemName, claimMsg)
		results = append(results, line)
		w.log.JustLog(line)
		w.wait("Pacing before next claim", w.timing.ClaimSpacing)
	}

	report := strings.Join(results, "\n")
	now := utils.ChinaNow()
	w.session.LastCheckInAt = &now
	w.session.RewardsClaimed = claimed
	w.session.LastMessage = report
	w.session.CheckInStatus = statusDone

	if w.store != nil {
		if err := w.store.MarkCheckIn(w.session.Account, now, claimed, report); err != nil {
			w.log.JustLog(fmt.Sprintf("Warning: failed to record check-in: %v", err))
		}
	}

	w.events.CheckInResult(true, report)
	return true, report
}

func (w *Worker) requestSignIn() model.SignInOutcome {
	tempSUID := utils.NewTempSUID()
	endpoint := w.svc.APIBase + "/api/home/sign/signIn?tempsuid=" + tempSUID

	body, err := w.api.Fetch(endpoint, &adhttp.FetchOptions{
		Method:   "POST",
		FormBody: url.Values{"tempsuid": {tempSUID}},
		AdditionalHeaders: map[string]string{
			"Origin":           w.svc.WebBase,
			"X-Requested-With": "XMLHttpRequest",
		},
	})
	if err != nil {
		return model.SignInOutcome{Message: fmt.Sprintf("check-in request failed: %v", err)}
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return model.SignInOutcome{Message: "check-in response could not be parsed"}
	}

	formatted := fmt.Sprintf("(%d)%s", env.Code, env.Msg)
	switch env.Code {
	case codeCheckInOK, codeAlreadyCheckedIn, codeRateLimited:
		return model.SignInOutcome{Success: true, Message: formatted}
	default:
		return model.SignInOutcome{Message: formatted}
	}
}

func (w *Worker) fetchRewardList(month string) ([]model.SignRewardItem, error) {
	endpoint := w.svc.APIBase + "/api/home/sign/signRewardList?month=" + month + "&tempsuid=" + utils.NewTempSUID()

	body, err := w.api.Fetch(endpoint, nil)
	if err != nil {
		return nil, err
	}

	var res rewardListResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("malformed reward list: %w", err)
	}
	return res.Data, nil
}

func (w *Worker) claimReward(id int, month string) (string, error) {
	tempSUID := utils.NewTempSUID()
	endpoint := w.svc.APIBase + "/api/home/sign/getSignReward?tempsuid=" + tempSUID

	body, err := w.api.Fetch(endpoint, &adhttp.FetchOptions{
		Method: "POST",
		FormBody: url.Values{
			"id":       {strconv.Itoa(id)},
			"month":    {month},
			"tempsuid": {tempSUID},
		},
		AdditionalHeaders: map[string]string{
			"Origin":           w.svc.WebBase,
			"X-Requested-With": "XMLHttpRequest",
		},
	})
	if err != nil {
		return "", err
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Msg != "" {
		return env.Msg, nil
	}
	return string(body), nil
}

func (w *Worker) raiseExpired(msg string) {
	w.log.Log(msg)
	w.events.SessionExpired()
}
