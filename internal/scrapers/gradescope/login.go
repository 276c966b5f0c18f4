package gradescope

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// Login signs the channel in. On success every later request carries the
// csrf header from the landing page. On failure the header set is left as
// it was and ErrInvalidCredentials is returned.
func (c *Client) Login(ctx context.Context, email, password string) error {
	c.tel.ReportDebug("login", email)

	loginError := func(err error) error {
		return fmt.Errorf("gradescope scraper: login failed: %w", err)
	}

	doc, err := c.FetchDocument(ctx, "/")
	if err != nil {
		c.reportFetch(report_client_login, err)
		return loginError(err)
	}
	token := doc.Find(loginPage.Token).AttrOr(loginPage.TokenAttr, "")
	if token == "" {
		err := structureError(loginPage.Name, loginPage.Token, nil)
		c.tel.ReportBroken(report_client_login, err)
		return loginError(err)
	}

	httpClient := c.Http.GetClient()
	checkRedirect := httpClient.CheckRedirect
	var hops []int
	httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if req.Response != nil {
			hops = append(hops, req.Response.StatusCode)
		}
		if checkRedirect == nil {
			return nil
		}
		return checkRedirect(req, via)
	}
	defer func() {
		httpClient.CheckRedirect = checkRedirect
	}()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"utf8":                     "✓",
			"session[email]":           email,
			"session[password]":        password,
			"session[remember_me]":     "0",
			"commit":                   "Log In",
			"session[remember_me_sso]": "0",
			"authenticity_token":       token,
		}).
		Post(loginPage.LoginEndpoint)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		c.tel.ReportBroken(report_client_login, fmt.Errorf("post credentials: %w", err))
		return loginError(err)
	}

	if len(hops) == 0 || hops[0] != http.StatusFound {
		c.tel.ReportWarning(report_client_login, ErrInvalidCredentials, res.StatusCode(), hops)
		return loginError(ErrInvalidCredentials)
	}

	landing, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("parse landing page: %w", err))
		return loginError(err)
	}
	csrf := landing.Find(loginPage.CsrfMeta).AttrOr(loginPage.CsrfMetaAttr, "")
	if csrf == "" {
		err := structureError(loginPage.Name, loginPage.CsrfMeta, nil)
		c.tel.ReportBroken(report_client_login, err)
		return loginError(err)
	}

	c.Http.SetHeader(loginPage.CsrfHeader, csrf)
	return nil
}
