package gradescope

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gradescope-scraper/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestUpdateAssignmentDates(t *testing.T) {
	site := testutil.NewSite(t)
	site.Page("GET /courses/111/assignments/3001/edit", editAssignmentHtml)
	site.Page("POST /courses/111/assignments/3001", "<p>saved</p>")
	client, _ := newTestClient(t, site)

	release := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2025, 2, 8, 23, 59, 30, 0, time.UTC)

	testCases := []struct {
		name     string
		dates    Dates
		expected map[string]string
	}{
		{
			name:  "without late due date",
			dates: Dates{Release: &release, Due: &due},
			expected: map[string]string{
				"assignment[release_date_string]":    "2025-02-01T09:00",
				"assignment[due_date_string]":        "2025-02-08T23:59",
				"assignment[allow_late_submissions]": "0",
				"assignment[hard_due_date_string]":   "",
			},
		},
		{
			name:  "with late due date",
			dates: Dates{Due: &release, LateDue: &due},
			expected: map[string]string{
				"assignment[release_date_string]":    "",
				"assignment[due_date_string]":        "2025-02-01T09:00",
				"assignment[allow_late_submissions]": "1",
				"assignment[hard_due_date_string]":   "2025-02-08T23:59",
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			site.Reset()

			ok, err := client.UpdateAssignmentDates(context.Background(), "111", "3001", test.dates)
			require.NoError(t, err)
			require.True(t, ok)

			// the form token is fetched right before posting
			requests := site.Requests()
			require.Len(t, requests, 2)
			require.Equal(t, "/courses/111/assignments/3001/edit", requests[0].Path)

			post := requests[1]
			require.Equal(t, http.MethodPost, post.Method)
			require.Equal(t, "/courses/111/assignments/3001", post.Path)
			require.Equal(t, site.URL()+"/courses/111/assignments/3001/edit", post.Header.Get("referer"))

			parts, err := post.Parts()
			require.NoError(t, err)
			fields := map[string]string{}
			var names []string
			for _, p := range parts {
				fields[p.Name] = p.Value
				names = append(names, p.Name)
			}
			require.Equal(t, []string{
				"utf8",
				"_method",
				"authenticity_token",
				"assignment[release_date_string]",
				"assignment[due_date_string]",
				"assignment[allow_late_submissions]",
				"assignment[hard_due_date_string]",
				"commit",
			}, names)
			require.Equal(t, "patch", fields["_method"])
			require.Equal(t, "edit-token", fields["authenticity_token"])
			require.Equal(t, "Save", fields["commit"])
			for name, value := range test.expected {
				require.Equal(t, value, fields[name], name)
			}
		})
	}
}

func TestUpdateAssignmentDatesRejected(t *testing.T) {
	site := testutil.NewSite(t)
	site.Page("GET /courses/111/assignments/3001/edit", editAssignmentHtml)
	site.Respond("POST /courses/111/assignments/3001", http.StatusUnprocessableEntity, "text/html", "<p>invalid</p>")
	client, _ := newTestClient(t, site)

	due := time.Date(2025, 2, 8, 23, 59, 0, 0, time.UTC)
	ok, err := client.UpdateAssignmentDates(context.Background(), "111", "3001", Dates{Due: &due})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateAssignmentDatesMissingToken(t *testing.T) {
	site := testutil.NewSite(t)
	site.Page("GET /courses/111/assignments/3001/edit", "<form></form>")
	client, _ := newTestClient(t, site)

	_, err := client.UpdateAssignmentDates(context.Background(), "111", "3001", Dates{})
	require.ErrorIs(t, err, ErrUnexpectedStructure)
	require.Empty(t, site.Find(http.MethodPost, "/courses/111/assignments/3001"))
}
