package gradescope

import (
	"context"
	"net/http"
	"testing"

	"gradescope-scraper/lib/testutil"

	"github.com/stretchr/testify/require"
)

func newLoginSite(t testing.TB) *testutil.Site {
	site := testutil.NewSite(t)
	site.Page("GET /{$}", loginHtml)
	site.Page("GET /account", accountRolesHtml)
	site.Handle("POST /login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("session[password]") != "hunter2" {
			// a failed login renders the form again
			w.Header().Set("content-type", "text/html")
			w.Write([]byte(loginHtml))
			return
		}
		http.Redirect(w, r, "/account", http.StatusFound)
	})
	return site
}

func TestLogin(t *testing.T) {
	site := newLoginSite(t)
	client, _ := newTestClient(t, site)

	err := client.Login(context.Background(), "ada@example.edu", "hunter2")
	require.NoError(t, err)
	require.True(t, client.Authenticated())
	require.Equal(t, "session-csrf", client.Http.Header.Get("X-CSRF-Token"))

	posts := site.Find(http.MethodPost, "/login")
	require.Len(t, posts, 1)
	form, err := posts[0].Form()
	require.NoError(t, err)
	require.Equal(t, "login-token", form.Get("authenticity_token"))
	require.Equal(t, "ada@example.edu", form.Get("session[email]"))
	require.Equal(t, "hunter2", form.Get("session[password]"))
	require.Equal(t, "0", form.Get("session[remember_me]"))
	require.Equal(t, "Log In", form.Get("commit"))
	require.Equal(t, "✓", form.Get("utf8"))

	// later requests carry the csrf header
	site.Reset()
	_, err = client.ListCourses(context.Background())
	require.NoError(t, err)
	requests := site.Find(http.MethodGet, "/account")
	require.Len(t, requests, 1)
	require.Equal(t, "session-csrf", requests[0].Header.Get("X-CSRF-Token"))
}

func TestLoginInvalidCredentials(t *testing.T) {
	site := newLoginSite(t)
	client, _ := newTestClient(t, site)

	err := client.Login(context.Background(), "ada@example.edu", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.False(t, client.Authenticated())
	require.Empty(t, client.Http.Header.Get("X-CSRF-Token"))
}

func TestLoginMissingToken(t *testing.T) {
	site := testutil.NewSite(t)
	site.Page("GET /{$}", "<html><body>maintenance</body></html>")
	client, _ := newTestClient(t, site)

	err := client.Login(context.Background(), "ada@example.edu", "hunter2")
	require.ErrorIs(t, err, ErrUnexpectedStructure)
	require.Empty(t, site.Find(http.MethodPost, "/login"))
}
