package worker

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	adhttp "github.com/akiyoshi81/risingstones-checkin-bot/internal/adapters/http"
	"github.com/akiyoshi81/risingstones-checkin-bot/pkg/utils"
)

const (
	pushCodeOK           = 0
	pushCodeCompanionApp = -14001710
	pollCodePending      = -10516808
	minTicketLength      = 5
)

// loginQuery is the canonical handshake query. The same encoded form is
// replayed verbatim on all three legs of the push-login protocol; only the
// endpoint path changes.
type loginQuery struct {
	Callback       string `url:"callback"`
	InputUserID    string `url:"inputUserId"`
	AppID          string `url:"appId"`
	AreaID         string `url:"areaId"`
	ServiceURL     string `url:"serviceUrl"`
	ProductVersion string `url:"productVersion"`
	FrameType      string `url:"frameType"`
	Locale         string `url:"locale"`
	Version        string `url:"version"`
	Tag            string `url:"tag"`
	AuthenSource   string `url:"authenSource"`
	ProductID      string `url:"productId"`
	Scene          string `url:"scene"`
	Usage          string `url:"usage"`
	BizType        string `url:"bizType"`
	Source         string `url:"source"`
	Timestamp      string `url:"_"`
}

type pushResponse struct {
	ReturnCode    int      `json:"return_code"`
	ErrorType     int      `json:"error_type"`
	ReturnMessage string   `json:"return_message"`
	Data          pushData `json:"data"`
}

type pushData struct {
	PushMsgSerialNum string `json:"pushMsgSerialNum"`
	MappedErrorCode  int    `json:"mappedErrorCode"`
	FailReason       string `json:"failReason"`
	Ticket           string `json:"ticket"`
}

func (w *Worker) buildLoginQuery() (string, error) {
	q := loginQuery{
		Callback:       "checkAccountType_JSONPMethod",
		InputUserID:    w.session.Account,
		AppID:          w.svc.AppID,
		AreaID:         w.svc.AreaID,
		ServiceURL:     w.svc.LoginExchangeURL(),
		ProductVersion: "v5",
		FrameType:      "3",
		Locale:         "zh_CN",
		Version:        "21",
		Tag:            "20",
		AuthenSource:   "2",
		ProductID:      "2",
		Scene:          "login",
		Usage:          "aliCode",
		BizType:        "",
		Source:         "pc",
		Timestamp:      strconv.FormatInt(time.Now().UnixMilli(), 10),
	}
	return utils.EncodeURLParams(q)
}

// performPushLogin drives the out-of-band confirmation protocol to
// completion: account-type probe, push dispatch, bounded confirmation
// polling, then ticket exchange. Nothing is persisted until the whole
// pipeline succeeds.
func (w *Worker) performPushLogin() bool {
	restQuery, err := w.buildLoginQuery()
	if err != nil {
		w.log.Log(fmt.Sprintf("Login failed: %v", err))
		return false
	}

	w.session.LoginStatus = statusInProgress
	jar := adhttp.NewLoginJar()

	// Health probe; the response is irrelevant and failure does not abort.
	w.log.Log("Checking account type")
	if _, err := w.api.LoginGet(w.svc.CASBase+"/checkAccountType.jsonp?"+restQuery, jar, nil); err != nil {
		w.log.JustLog(fmt.Sprintf("Account type probe failed (ignored): %v", err))
	}

	// Human-paced randomized gap before the push goes out. The service
	// flags dispatches that arrive too fast after the probe.
	w.wait("Preparing push confirmation", utils.RandomDuration(w.timing.PushDelayMin, w.timing.PushDelayMax))

	res, err := w.api.LoginGet(w.svc.CASBase+"/sendPushMessage.jsonp?"+restQuery, jar, nil)
	if err != nil {
		w.loginFailed(fmt.Sprintf("Push dispatch failed: %v", err))
		return false
	}

	dispatch, ok := decodePushResponse(res.Body)
	if !ok {
		w.loginFailed("Push dispatch failed: malformed response")
		return false
	}
	if dispatch.ReturnCode != pushCodeOK {
		if dispatch.ReturnCode == pushCodeCompanionApp {
			w.loginFailed("Open the Daoyu mobile app first, then try again")
		} else {
			w.loginFailed(fmt.Sprintf("(%d)%s", dispatch.ReturnCode, dispatch.ReturnMessage))
		}
		return false
	}

	w.log.Log("Push sent, waiting for confirmation on the phone")
	return w.pollForConfirmation(restQuery, jar)
}

// pollForConfirmation polls the confirmation endpoint up to pollMaxAttempts
// times. Transport and decode hiccups count as pending iterations; only an
// explicit non-pending error code aborts early.
func (w *Worker) pollForConfirmation(restQuery string, jar *adhttp.LoginJar) bool {
	pollURL := w.svc.CASBase + "/pushMessageLogin.jsonp?" + restQuery

	for attempt := 0; attempt < pollMaxAttempts; attempt++ {
		res, err := w.api.LoginGet(pollURL, jar, nil)
		if err == nil {
			poll, decoded := decodePushResponse(res.Body)
			if decoded {
				if len(poll.Data.Ticket) > minTicketLength {
					w.log.Log("Confirmed, building session")
					if !w.finalizeSession(poll.Data.Ticket, jar) {
						w.loginFailed("Login failed: could not capture session cookie")
						return false
					}
					w.session.LoginStatus = statusDone
					w.log.Log("Login succeeded, session cookie saved")
					w.events.LoginSucceeded()
					return true
				}
				if poll.Data.MappedErrorCode != 0 && poll.Data.MappedErrorCode != pollCodePending {
					w.loginFailed(fmt.Sprintf("(%d)%s", poll.Data.MappedErrorCode, poll.Data.FailReason))
					return false
				}
			}
		}

		w.wait(fmt.Sprintf("Waiting for confirmation (%d/%d)", attempt+1, pollMaxAttempts), w.timing.PollInterval)
	}

	w.loginFailed("Login timed out waiting for confirmation")
	return false
}

// finalizeSession trades the ticket for browser session cookies: chase the
// redirect chain by hand harvesting Set-Cookie at every hop, hit the landing
// page, replay the warm-up sequence, then pull the session cookie out of the
// jar and persist it.
func (w *Worker) finalizeSession(ticket string, jar *adhttp.LoginJar) bool {
	currentURL := w.svc.LoginExchangeURL() + "&ticket=" + url.QueryEscape(ticket)

	for hop := 0; hop < maxRedirectHops; hop++ {
		w.log.JustLog(fmt.Sprintf("Following redirect (%d/%d)", hop+1, maxRedirectHops))

		res, err := w.api.LoginGet(currentURL, jar, nil)
		if err != nil {
			w.log.JustLog(fmt.Sprintf("Redirect hop failed: %v", err))
			break
		}
		if !res.IsRedirect() {
			break
		}

		next, err := resolveLocation(currentURL, res.Location)
		if err != nil {
			w.log.JustLog(fmt.Sprintf("Unresolvable redirect %q: %v", res.Location, err))
			break
		}
		currentURL = next
	}

	// Some session cookies are only issued on direct navigation to the
	// landing page, even when the redirect chain already ended there.
	if _, err := w.api.LoginGet(w.svc.LandingURL(), jar, nil); err != nil {
		w.log.JustLog(fmt.Sprintf("Landing page request failed: %v", err))
	}

	w.runWarmUpSequence(jar)

	value := jar.Named(w.svc.SessionCookieName)
	if strings.TrimSpace(value) == "" {
		return false
	}

	cookie := w.svc.SessionCookieName + "=" + value
	now := time.Now()
	w.session.Cookie = cookie
	w.session.CookieSavedAt = &now
	w.api.SetSessionCookie(cookie)

	if w.store != nil {
		if err := w.store.SaveCookie(w.session.Account, cookie, now); err != nil {
			w.log.JustLog(fmt.Sprintf("Warning: failed to persist session cookie: %v", err))
		}
	}
	return true
}

// runWarmUpSequence replays the fixed set of authenticated endpoints a real
// browser hits right after login. The calls exist solely to make the server
// finish issuing session cookies; individual failures are ignored.
func (w *Worker) runWarmUpSequence(jar *adhttp.LoginJar) {
	warmUpPaths := []string{
		"/api/common/getHotSearchList",
		"/api/home/GHome/isLogin",
		"/api/home/groupAndRole/getCharacterBindInfo?platform=2",
		"/api/home/recruit/getJobConfigList",
		"/api/home/sysMsg/getTip",
		"/api/home/sign/signRewardList?month=" + utils.CurrentMonth(),
	}

	headers := map[string]string{
		"Origin":           w.svc.WebBase,
		"X-Requested-With": "XMLHttpRequest",
	}

	for _, path := range warmUpPaths {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		full := w.svc.APIBase + path + sep + "tempsuid=" + utils.NewTempSUID()

		if _, err := w.api.LoginGet(full, jar, headers); err != nil {
			w.log.JustLog(fmt.Sprintf("Warm-up call %s failed (ignored): %v", path, err))
		}

		w.wait("Warming up session", w.timing.WarmUpSpacing)
	}
}

func (w *Worker) loginFailed(msg string) {
	w.session.LoginStatus = statusWaiting
	w.log.Log(msg)
}

func decodePushResponse(body []byte) (pushResponse, bool) {
	var res pushResponse
	jsonText := utils.GetJSONFromJSONP(string(body))
	if jsonText == "" {
		return res, false
	}
	if err := json.Unmarshal([]byte(jsonText), &res); err != nil {
		return res, false
	}
	return res, true
}

func resolveLocation(current, location string) (string, error) {
	loc, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	if loc.IsAbs() {
		return loc.String(), nil
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(loc).String(), nil
}
