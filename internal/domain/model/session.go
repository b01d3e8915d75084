package model

import "time"

// Session is the per-account state shared between the worker, the logger and
// the terminal UI. Cookie holds the single session-cookie assignment
// ("ff14risingstones=<value>") or "" when unauthenticated; it is only
// replaced by a successful login finalization.
type Session struct {
	Account        string
	AccIdx         int
	Cookie         string
	CookieSavedAt  *time.Time
	LastCheckInAt  *time.Time
	LoginStatus    string
	CheckInStatus  string
	RewardsClaimed int
	LastMessage    string
}

// SignRewardItem is an immutable snapshot of one entry in the current month's
// reward list. IsGet: -1 requirements unmet, 0 claimable, 1 already claimed.
type SignRewardItem struct {
	ID        int    `json:"id"`
	BeginDate string `json:"begin_date"`
	EndDate   string `json:"end_date"`
	Rule      int    `json:"rule"`
	ItemName  string `json:"item_name"`
	ItemPic   string `json:"item_pic"`
	Num       int    `json:"num"`
	ItemDesc  string `json:"item_desc"`
	IsGet     int    `json:"is_get"`
}

const (
	RewardUnmet     = -1
	RewardAvailable = 0
	RewardGotten    = 1
)

// SignInOutcome is the transient result of one check-in call.
type SignInOutcome struct {
	Success        bool
	Message        string
	SessionExpired bool
}
