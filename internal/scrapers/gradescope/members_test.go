package gradescope

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"gradescope-scraper/internal/components/telemetry"
	"gradescope-scraper/lib/testutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestParseMembers(t *testing.T) {
	testCases := []struct {
		name     string
		page     string
		expected []Member
	}{
		{
			name: "with sections",
			page: membershipsHtml,
			expected: []Member{
				{
					FullName:     "Ada Lovelace",
					FirstName:    strPtr("Ada"),
					LastName:     strPtr("Lovelace"),
					StudentId:    strPtr("S001"),
					Email:        "ada@example.edu",
					Role:         RoleStudent,
					MembershipId: "9001",
					UserId:       strPtr("5001"),
					Submissions:  4,
					Sections:     strPtr("Lab A"),
				},
				{
					FullName:     "Alan Turing",
					FirstName:    strPtr("Alan"),
					LastName:     strPtr("Turing"),
					StudentId:    strPtr("20230042"),
					Email:        "alan@example.edu",
					Role:         RoleStudent,
					MembershipId: "9002",
					UserId:       strPtr("5002"),
					Submissions:  0,
					Sections:     strPtr(""),
				},
				{
					FullName:     "Grace Hopper",
					Email:        "grace@example.edu",
					Role:         RoleInstructor,
					MembershipId: "9003",
				},
				{
					FullName:     "Edsger Dijkstra",
					Email:        "edsger@example.edu",
					Role:         RoleTA,
					MembershipId: "9004",
				},
			},
		},
		{
			name: "without sections",
			page: membershipsNoSectionsHtml,
			expected: []Member{
				{
					FullName:     "Barbara Liskov",
					FirstName:    strPtr("Barbara"),
					LastName:     strPtr("Liskov"),
					StudentId:    strPtr("S100"),
					Email:        "barbara@example.edu",
					Role:         RoleStudent,
					MembershipId: "9101",
					UserId:       strPtr("6001"),
					Submissions:  7,
				},
				{
					FullName:     "Ken Thompson",
					FirstName:    strPtr("Ken"),
					LastName:     strPtr("Thompson"),
					Email:        "ken@example.edu",
					Role:         RoleReader,
					MembershipId: "9102",
				},
			},
		},
		{
			name:     "empty roster",
			page:     `<table><thead><tr><th>Name</th></tr></thead><tbody></tbody></table>`,
			expected: []Member{},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(test.page))
			require.NoError(t, err)

			members, err := parseMembers(doc)
			require.NoError(t, err)

			diff := cmp.Diff(test.expected, members)
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestParseMembersUnknownRole(t *testing.T) {
	page := strings.Replace(membershipsNoSectionsHtml, `data-role="3"`, `data-role="9"`, 1)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	_, err = parseMembers(doc)
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestParseMembersMissingCount(t *testing.T) {
	page := `<table><tr class="rosterRow"><td><button class="rosterCell--editIcon" data-cm='{"full_name":"A"}' data-role="0"></button></td></tr></table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	_, err = parseMembers(doc)
	require.ErrorIs(t, err, ErrUnexpectedStructure)
}

func TestListMembers(t *testing.T) {
	site := testutil.NewSite(t)
	site.Page("GET /courses/111/memberships", membershipsHtml)
	site.Json("GET /courses/999/memberships", http.StatusUnauthorized, `{"error": "You are not authorized to access this page."}`)
	client, recorder := newTestClient(t, site)

	members, err := client.ListMembers(context.Background(), "111")
	require.NoError(t, err)
	require.Len(t, members, 4)

	_, err = client.ListMembers(context.Background(), "999")
	require.ErrorIs(t, err, ErrNotAuthorized)
	require.Equal(t, []string{"gradescope_scraper.client.list-members"}, recorder.Ids(telemetry.REPORT_WARNING))
}

func TestRankMembersByName(t *testing.T) {
	members := []Member{
		{FullName: "Alan Turing"},
		{FullName: "Ada Lovelace"},
		{FullName: "Grace Hopper"},
	}

	ranked := RankMembersByName(members, "Ada Lovelace", 0)
	require.Len(t, ranked, 3)
	require.Equal(t, "Ada Lovelace", ranked[0].FullName)

	exact := RankMembersByName(members, "  ada LOVELACE ", 1)
	require.Equal(t, []Member{{FullName: "Ada Lovelace"}}, exact)

	require.Empty(t, RankMembersByName(nil, "Ada", 0))
}
