package gradescope

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"gradescope-scraper/lib/testutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	_ "time/tzdata"
)

func TestParseExtensions(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(extensionsHtml))
	require.NoError(t, err)

	extensions, err := parseExtensions(doc)
	require.NoError(t, err)
	require.Len(t, extensions, 2)

	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ada := extensions["5001"]
	require.Equal(t, "5001", ada.UserId)
	require.Equal(t, "Ada Lovelace", ada.StudentName)
	require.Equal(t, "/courses/111/assignments/3001/extensions/55", ada.DeletePath)
	require.Nil(t, ada.ReleaseDate)
	// the wall clock of the value is kept, the zone is the student's
	requireTime(t, time.Date(2024, 9, 10, 23, 59, 0, 0, newYork), ada.DueDate)
	require.Equal(t, "America/New_York", ada.DueDate.Location().String())
	requireTime(t, time.Date(2024, 9, 12, 23, 59, 0, 0, newYork), ada.LateDueDate)

	alan := extensions["5002"]
	require.Equal(t, "Alan Turing", alan.StudentName)
	requireTime(t, time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC), alan.ReleaseDate)
	require.Nil(t, alan.DueDate)
	require.Nil(t, alan.LateDueDate)
}

func TestParseExtensionsEmptyTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<table class="js-overridesTable"><thead><tr><th>Name</th></tr></thead><tbody></tbody></table>`,
	))
	require.NoError(t, err)

	extensions, err := parseExtensions(doc)
	require.NoError(t, err)
	require.Empty(t, extensions)
}

func TestParseExtensionsMissingTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<p>Extensions are disabled</p>"))
	require.NoError(t, err)

	_, err = parseExtensions(doc)
	require.ErrorIs(t, err, ErrUnexpectedStructure)
}

func TestListExtensions(t *testing.T) {
	site := testutil.NewSite(t)
	site.Page("GET /courses/111/assignments/3001/extensions", extensionsHtml)
	client, _ := newTestClient(t, site)

	extensions, err := client.ListExtensions(context.Background(), "111", "3001")
	require.NoError(t, err)
	require.Len(t, extensions, 2)

	_, err = client.ListExtensions(context.Background(), "111", "3002")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDatesValidate(t *testing.T) {
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := jan1.Add(24 * time.Hour)
	jan3 := jan2.Add(24 * time.Hour)

	testCases := []struct {
		name     string
		dates    Dates
		expected error
	}{
		{name: "none", dates: Dates{}, expected: ErrNoDates},
		{name: "due only", dates: Dates{Due: &jan2}},
		{name: "ordered", dates: Dates{Release: &jan1, Due: &jan2, LateDue: &jan3}},
		{name: "equal", dates: Dates{Release: &jan1, Due: &jan1, LateDue: &jan1}},
		{name: "release after due", dates: Dates{Release: &jan2, Due: &jan1}, expected: ErrDatesOutOfOrder},
		{name: "late before due", dates: Dates{Due: &jan3, LateDue: &jan2}, expected: ErrDatesOutOfOrder},
		{name: "late before release", dates: Dates{Release: &jan3, LateDue: &jan1}, expected: ErrDatesOutOfOrder},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			err := test.dates.validate()
			if test.expected == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, test.expected)
		})
	}
}

func TestSetExtension(t *testing.T) {
	site := testutil.NewSite(t)
	site.Json("POST /courses/111/assignments/3001/extensions", http.StatusOK, `{}`)
	site.Json("POST /courses/111/assignments/3002/extensions", http.StatusUnprocessableEntity, `{"errors":["bad"]}`)
	client, _ := newTestClient(t, site)

	est := time.FixedZone("EST", -5*60*60)
	due := time.Date(2025, 1, 10, 23, 59, 0, 0, est)
	late := time.Date(2025, 1, 12, 23, 59, 0, 0, est)

	ok, err := client.SetExtension(context.Background(), "111", "3001", "5001", Dates{Due: &due, LateDue: &late})
	require.NoError(t, err)
	require.True(t, ok)

	posts := site.Find(http.MethodPost, "/courses/111/assignments/3001/extensions")
	require.Len(t, posts, 1)
	require.Contains(t, posts[0].Header.Get("content-type"), "application/json")

	var body struct {
		Override struct {
			UserId   string                     `json:"user_id"`
			Settings map[string]json.RawMessage `json:"settings"`
		} `json:"override"`
	}
	require.NoError(t, json.Unmarshal(posts[0].Body, &body))
	require.Equal(t, "5001", body.Override.UserId)
	require.JSONEq(t, `true`, string(body.Override.Settings["visible"]))
	require.JSONEq(t, `{"type":"absolute","value":"2025-01-11T04:59:00Z"}`, string(body.Override.Settings["due_date"]))
	require.JSONEq(t, `{"type":"absolute","value":"2025-01-13T04:59:00Z"}`, string(body.Override.Settings["hard_due_date"]))
	require.NotContains(t, body.Override.Settings, "release_date")

	ok, err = client.SetExtension(context.Background(), "111", "3002", "5001", Dates{Due: &due})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetExtensionValidatesBeforeSending(t *testing.T) {
	site := testutil.NewSite(t)
	client, _ := newTestClient(t, site)

	due := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	release := due.Add(time.Hour)

	_, err := client.SetExtension(context.Background(), "111", "3001", "5001", Dates{})
	require.ErrorIs(t, err, ErrNoDates)

	_, err = client.SetExtension(context.Background(), "111", "3001", "5001", Dates{Release: &release, Due: &due})
	require.ErrorIs(t, err, ErrDatesOutOfOrder)

	require.Empty(t, site.Requests())
}

func TestRemoveExtension(t *testing.T) {
	site := testutil.NewSite(t)
	client, _ := newTestClient(t, site)

	err := client.RemoveExtension(context.Background(), "111", "3001", "5001")
	require.ErrorIs(t, err, ErrNotImplemented)
	require.Empty(t, site.Requests())
}
