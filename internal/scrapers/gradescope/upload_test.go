package gradescope

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"gradescope-scraper/lib/testutil"

	"github.com/stretchr/testify/require"
)

func newUploadSite(t testing.TB, redirect string) *testutil.Site {
	site := testutil.NewSite(t)
	site.Page("GET /courses/111", courseStaffHtml)
	site.Redirect("POST /courses/111/assignments/3001/submissions", redirect)
	site.Page("GET /courses/111/assignments/3001/submissions", "<p>submissions</p>")
	site.Page("GET /courses/111/assignments/3001/submissions/8001", "<p>submission</p>")
	return site
}

func TestUploadAssignment(t *testing.T) {
	site := newUploadSite(t, "/courses/111/assignments/3001/submissions/8001")
	client, _ := newTestClient(t, site)

	leaderboard := "speedrunners"
	url, err := client.UploadAssignment(
		context.Background(),
		"111", "3001",
		[]UploadFile{
			{Name: "/home/ada/hw/notes.txt", Content: strings.NewReader("hello")},
			{Name: "report", Content: strings.NewReader("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")},
		},
		&leaderboard,
		nil,
	)
	require.NoError(t, err)
	require.Equal(t, site.URL()+"/courses/111/assignments/3001/submissions/8001", url)

	posts := site.Find(http.MethodPost, "/courses/111/assignments/3001/submissions")
	require.Len(t, posts, 1)
	require.Equal(t, site.URL()+"/courses/111", posts[0].Header.Get("referer"))

	parts, err := posts[0].Parts()
	require.NoError(t, err)
	require.Len(t, parts, 6)

	require.Equal(t, "utf8", parts[0].Name)
	require.Equal(t, "authenticity_token", parts[1].Name)
	require.Equal(t, "course-csrf", parts[1].Value)
	require.Equal(t, "submission[method]", parts[2].Name)
	require.Equal(t, "upload", parts[2].Value)

	require.Equal(t, "submission[files][]", parts[3].Name)
	require.Equal(t, "notes.txt", parts[3].FileName)
	require.True(t, strings.HasPrefix(parts[3].ContentType, "text/plain"))
	require.Equal(t, "hello", parts[3].Value)

	// no extension, the type is sniffed from the content
	require.Equal(t, "report", parts[4].FileName)
	require.Equal(t, "application/pdf", parts[4].ContentType)

	require.Equal(t, "submission[leaderboard_name]", parts[5].Name)
	require.Equal(t, "speedrunners", parts[5].Value)
}

func TestUploadAssignmentRejected(t *testing.T) {
	testCases := []struct {
		name     string
		redirect string
	}{
		{name: "back to course", redirect: "/courses/111"},
		{name: "back to submissions", redirect: "/courses/111/assignments/3001/submissions"},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			site := newUploadSite(t, test.redirect)
			client, _ := newTestClient(t, site)

			owner := "5001"
			url, err := client.UploadAssignment(
				context.Background(),
				"111", "3001",
				[]UploadFile{{Name: "main.txt", Content: strings.NewReader("print(1)")}},
				nil,
				&owner,
			)
			require.NoError(t, err)
			require.Empty(t, url)

			parts, err := site.Find(http.MethodPost, "/courses/111/assignments/3001/submissions")[0].Parts()
			require.NoError(t, err)
			last := parts[len(parts)-1]
			require.Equal(t, "submission[owner_id]", last.Name)
			require.Equal(t, "5001", last.Value)
		})
	}
}
