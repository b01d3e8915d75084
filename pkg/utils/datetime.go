package utils

import "time"

// The check-in day rolls over at midnight China Standard Time regardless of
// where the bot runs.
var chinaZone = loadChinaZone()

func loadChinaZone() *time.Location {
	if loc, err := time.LoadLocation("Asia/Shanghai"); err == nil {
		return loc
	}
	return time.FixedZone("CST", 8*60*60)
}

func ChinaNow() time.Time {
	return time.Now().In(chinaZone)
}

// CurrentMonth returns the current month in China time, formatted the way the
// reward-list endpoint expects it (YYYY-MM).
func CurrentMonth() string {
	return ChinaNow().Format("2006-01")
}

// ShouldSignInToday reports whether a check-in is still due: true when no
// prior check-in is recorded, or when the last one happened on an earlier
// China-time calendar day than today.
func ShouldSignInToday(lastCheckIn *time.Time) bool {
	if lastCheckIn == nil {
		return true
	}
	now := ChinaNow()
	last := lastCheckIn.In(chinaZone)
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	if ly != ny {
		return ly < ny
	}
	if lm != nm {
		return lm < nm
	}
	return ld < nd
}
