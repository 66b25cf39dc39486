package garmin

import (
	"fmt"
	"net/url"
)

const (
	defaultConnectURL = "https://connect.garmin.com"
	defaultSSOURL     = "https://sso.garmin.com/sso"
	defaultCSSURL     = "https://static.garmincdn.com/com.garmin.connect/ui/css/gauth-custom-v1.2-min.css"
)

// endpoints derives every service URL from the two base hosts so tests can
// point the whole client at a local server.
type endpoints struct {
	connect string
	sso     string
}

func (e endpoints) login() string {
	redirect := e.connect + "/post-auth/login"
	params := url.Values{
		"service":                         {redirect},
		"webhost":                         {e.connect},
		"source":                          {e.connect + "/en-US/signin"},
		"redirectAfterAccountLoginUrl":    {redirect},
		"redirectAfterAccountCreationUrl": {redirect},
		"gauthHost":                       {e.sso},
		"locale":                          {"en_US"},
		"id":                              {"gauth-widget"},
		"cssUrl":                          {defaultCSSURL},
		"clientId":                        {"GarminConnect"},
		"rememberMeShown":                 {"true"},
		"rememberMeChecked":               {"false"},
		"createAccountShown":              {"true"},
		"openCreateAccount":               {"false"},
		"usernameShown":                   {"false"},
		"displayNameShown":                {"false"},
		"consumeServiceTicket":            {"false"},
		"initialFocus":                    {"true"},
		"embedWidget":                     {"false"},
		"generateExtraServiceTicket":      {"false"},
	}
	return e.sso + "/login?" + params.Encode()
}

func (e endpoints) postAuth(ticket string) string {
	return e.connect + "/modern/activities?ticket=" + url.QueryEscape(ticket)
}

func (e endpoints) search(start, limit int) string {
	params := url.Values{
		"start": {fmt.Sprint(start)},
		"limit": {fmt.Sprint(limit)},
	}
	return e.connect + "/modern/proxy/activitylist-service/activities/search/activities?" + params.Encode()
}

// totalProbe is the legacy search service whose envelope reports totalFound.
func (e endpoints) totalProbe() string {
	return e.connect + "/proxy/activity-search-service-1.2/json/activities?start=0&limit=1"
}

func (e endpoints) activity(id int64) string {
	return fmt.Sprintf("%s/modern/proxy/activity-service/activity/%d", e.connect, id)
}

func (e endpoints) device(installationID int64) string {
	return fmt.Sprintf("%s/modern/proxy/device-service/deviceservice/app-info/%d", e.connect, installationID)
}

func (e endpoints) exportGPX(id int64) string {
	return fmt.Sprintf("%s/modern/proxy/download-service/export/gpx/activity/%d?full=true", e.connect, id)
}

func (e endpoints) exportTCX(id int64) string {
	return fmt.Sprintf("%s/modern/proxy/download-service/export/tcx/activity/%d?full=true", e.connect, id)
}

func (e endpoints) original(id int64) string {
	return fmt.Sprintf("%s/proxy/download-service/files/activity/%d", e.connect, id)
}
