package garmin

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"gcexport/internal/services"
)

// ticketPattern matches the service ticket embedded in the redirect URL of a
// successful login response.
var ticketPattern = regexp.MustCompile(`\?ticket=([-\w]+)"`)

// Authenticate performs the four-step login handshake: prime session cookies
// from the login page, submit the credential form, extract the short-lived
// ticket from the response body, then exchange it at the post-auth endpoint to
// finalize the session. A missing ticket is an authentication failure (wrong
// credentials, or the login page changed shape) and aborts before any data is
// fetched.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	c.logger.Info("requesting login page")
	if _, err := c.do(ctx, c.endpoints.login(), nil); err != nil {
		return fmt.Errorf("request login page: %w", err)
	}

	form := url.Values{
		"username":            {username},
		"password":            {password},
		"embed":               {"true"},
		"lt":                  {"e1s1"},
		"_eventId":            {"submit"},
		"displayNameRequired": {"false"},
	}
	c.logger.Info("submitting credentials")
	body, err := c.do(ctx, c.endpoints.login(), form)
	if err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	match := ticketPattern.FindSubmatch(body)
	if match == nil {
		return services.Wrap(services.ErrAuthentication, "session", "login",
			"no ticket in login response; check username and password", nil)
	}
	ticket := string(match[1])
	c.logger.Debug("login ticket extracted", "ticket", ticket)

	c.logger.Info("finalizing authentication")
	if _, err := c.do(ctx, c.endpoints.postAuth(ticket), nil); err != nil {
		return fmt.Errorf("exchange login ticket: %w", err)
	}
	return nil
}
