package gradescope

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"gradescope-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
)

type Role string

const (
	RoleStudent    Role = "Student"
	RoleInstructor Role = "Instructor"
	RoleTA         Role = "TA"
	RoleReader     Role = "Reader"
)

var roleCodes = map[string]Role{
	"0": RoleStudent,
	"1": RoleInstructor,
	"2": RoleTA,
	"3": RoleReader,
}

type Member struct {
	FullName  string
	FirstName *string
	LastName  *string
	StudentId *string
	Email     string
	Role      Role
	// MembershipId identifies the course membership, not the user.
	MembershipId string
	// UserId is only exposed on student rows, nil otherwise.
	UserId      *string
	Submissions int
	Sections    *string
}

// ListMembers returns the roster of a course. A page that cannot be read is
// an error, an empty roster is an empty slice.
func (c *Client) ListMembers(ctx context.Context, courseId string) ([]Member, error) {
	err := requireIds(courseId)
	if err != nil {
		return nil, err
	}

	doc, err := c.FetchDocument(ctx, courseUrl(courseId)+"/memberships")
	if err != nil {
		c.reportFetch(report_client_list_members, err)
		return nil, err
	}

	members, err := parseMembers(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_list_members, err, courseId)
		return nil, err
	}

	c.tel.ReportCount(report_client_list_members, int64(len(members)))
	return members, nil
}

func hasSectionsColumn(doc *goquery.Document) bool {
	found := false
	doc.Find(membershipPage.HeaderCell).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = htmlutil.Text(s) == membershipPage.SectionsHeader
		return !found
	})
	return found
}

type dataCm struct {
	FullName  string       `json:"full_name"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Sid       *looseString `json:"sid"`
}

func parseMembers(doc *goquery.Document) ([]Member, error) {
	countCell := membershipPage.SubmissionsCell
	if hasSectionsColumn(doc) {
		countCell++
	}

	members := []Member{}
	var err error
	doc.Find(membershipPage.Row).EachWithBreak(func(i int, row *goquery.Selection) bool {
		var member Member
		member, err = parseMemberRow(row, countCell)
		if err != nil {
			err = fmt.Errorf("roster row %d: %w", i, err)
			return false
		}
		members = append(members, member)
		return true
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func parseMemberRow(row *goquery.Selection, countCell int) (Member, error) {
	cells := row.Find(membershipPage.Cell)
	button := cells.First().Find(membershipPage.EditButton).First()
	if button.Length() == 0 {
		return Member{}, structureError(membershipPage.Name, membershipPage.EditButton, nil)
	}

	rawCm, ok := button.Attr(membershipPage.DataCmAttr)
	if !ok {
		return Member{}, structureError(membershipPage.Name, membershipPage.DataCmAttr, nil)
	}
	var cm dataCm
	err := json.Unmarshal([]byte(rawCm), &cm)
	if err != nil {
		return Member{}, structureError(membershipPage.Name, membershipPage.DataCmAttr, err)
	}

	roleCode := button.AttrOr(membershipPage.RoleAttr, "")
	role, ok := roleCodes[roleCode]
	if !ok {
		return Member{}, fmt.Errorf("%w: %q", ErrUnknownRole, roleCode)
	}

	if countCell >= cells.Length() {
		return Member{}, structureError(membershipPage.Name, fmt.Sprintf("%s:nth(%d)", membershipPage.Cell, countCell), nil)
	}
	countText := htmlutil.Text(cells.Eq(countCell))
	submissions, err := strconv.Atoi(countText)
	if err != nil {
		return Member{}, structureError(membershipPage.Name, fmt.Sprintf("%s:nth(%d)", membershipPage.Cell, countCell), err)
	}

	member := Member{
		FullName:     cm.FullName,
		FirstName:    cm.FirstName,
		LastName:     cm.LastName,
		StudentId:    cm.Sid.ptr(),
		Email:        button.AttrOr(membershipPage.EmailAttr, ""),
		Role:         role,
		MembershipId: button.AttrOr(membershipPage.IdAttr, ""),
		Submissions:  submissions,
	}
	if sections, ok := button.Attr(membershipPage.SectionsAttr); ok {
		member.Sections = &sections
	}

	rosterName := row.Find(membershipPage.RosterName).First()
	if rosterName.Length() > 0 {
		member.UserId = parseUserId(rosterName.AttrOr(membershipPage.RosterNameUrlAttr, ""))
	}
	return member, nil
}

func parseUserId(rawUrl string) *string {
	parsed, err := url.Parse(rawUrl)
	if err != nil {
		return nil
	}
	userId := parsed.Query().Get(membershipPage.UserIdParam)
	if userId == "" {
		return nil
	}
	return &userId
}

// RankMembersByName orders members by how closely their full name matches
// name (Jaro-Winkler, case insensitive), best match first. Members scoring
// below threshold are dropped.
func RankMembersByName(members []Member, name string, threshold float64) []Member {
	type scored struct {
		member Member
		score  float64
	}

	query := strings.ToLower(strings.TrimSpace(name))
	var candidates []scored
	for _, m := range members {
		score := matchr.JaroWinkler(strings.ToLower(m.FullName), query, false)
		if score < threshold {
			continue
		}
		candidates = append(candidates, scored{member: m, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]Member, len(candidates))
	for i, c := range candidates {
		out[i] = c.member
	}
	return out
}
