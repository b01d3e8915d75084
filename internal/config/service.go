package config

// Service pins down the external origins of one target deployment. Tests
// point these at local fake servers.
type Service struct {
	Name              string
	CASBase           string
	APIBase           string
	WebBase           string
	SessionCookieName string
	AppID             string
	AreaID            string
}

var RisingStones = Service{
	Name:              "FF14 Rising Stones",
	CASBase:           "https://w.cas.sdo.com/authen",
	APIBase:           "https://apiff14risingstones.web.sdo.com",
	WebBase:           "https://ff14risingstones.web.sdo.com",
	SessionCookieName: "ff14risingstones",
	AppID:             "6788",
	AreaID:            "1",
}

// LandingURL is the page whose direct navigation triggers the final batch of
// session cookies.
func (s Service) LandingURL() string {
	return s.WebBase + "/pc/index.html"
}

// LoginExchangeURL is where a push-login ticket is traded for browser
// session cookies. It doubles as the serviceUrl parameter of the handshake
// query.
func (s Service) LoginExchangeURL() string {
	return s.APIBase + "/api/home/GHome/login?redirectUrl=" + s.LandingURL()
}
