package gradescope

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gradescope-scraper/lib/htmlutil"
	"gradescope-scraper/lib/timeutil"

	"github.com/PuerkitoBio/goquery"
)

type Assignment struct {
	// Id is nil for assignments a student cannot open yet.
	Id          *string
	Name        string
	ReleaseDate *time.Time
	DueDate     *time.Time
	LateDueDate *time.Time
	// Status is "Submitted" when a grade could be read, otherwise the text of
	// the grade cell. It is nil in the staff view.
	Status   *string
	Grade    *float64
	MaxGrade *float64
}

// assignmentParser is one way of reading assignments off a course page.
// tryParse returns ok = false when the page is not in the layout it knows,
// and an error when it is but the content is malformed.
type assignmentParser interface {
	tryParse(doc *goquery.Document) (assignments []Assignment, ok bool, err error)
}

// assignmentParsers are tried in order, the first that recognizes the page
// wins.
var assignmentParsers = []assignmentParser{
	staffAssignmentTable{},
	studentAssignmentTable{},
}

func (c *Client) ListAssignments(ctx context.Context, courseId string) ([]Assignment, error) {
	err := requireIds(courseId)
	if err != nil {
		return nil, err
	}

	doc, err := c.FetchDocument(ctx, courseUrl(courseId))
	if err != nil {
		c.reportFetch(report_client_list_assignments, err)
		return nil, err
	}

	assignments, err := parseAssignments(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_list_assignments, err, courseId)
		return nil, err
	}

	c.tel.ReportCount(report_client_list_assignments, int64(len(assignments)))
	return assignments, nil
}

func parseAssignments(doc *goquery.Document) ([]Assignment, error) {
	for _, parser := range assignmentParsers {
		assignments, ok, err := parser.tryParse(doc)
		if err != nil {
			return nil, err
		}
		if ok {
			return assignments, nil
		}
	}
	return []Assignment{}, nil
}

type staffAssignmentTable struct{}

type staffTableProps struct {
	TableData []struct {
		Type             string      `json:"type"`
		Url              string      `json:"url"`
		Title            string      `json:"title"`
		TotalPoints      *looseFloat `json:"total_points"`
		SubmissionWindow struct {
			ReleaseDate string `json:"release_date"`
			DueDate     string `json:"due_date"`
			HardDueDate string `json:"hard_due_date"`
		} `json:"submission_window"`
	} `json:"table_data"`
}

func (staffAssignmentTable) tryParse(doc *goquery.Document) ([]Assignment, bool, error) {
	table := doc.Find(coursePage.StaffTable).First()
	if table.Length() == 0 {
		return nil, false, nil
	}
	rawProps, ok := table.Attr(coursePage.ReactPropsAttr)
	if !ok {
		return nil, false, structureError(coursePage.Name, coursePage.ReactPropsAttr, nil)
	}

	var props staffTableProps
	err := json.Unmarshal([]byte(rawProps), &props)
	if err != nil {
		return nil, false, structureError(coursePage.Name, coursePage.ReactPropsAttr, err)
	}

	assignments := []Assignment{}
	for _, entry := range props.TableData {
		if entry.Type != "assignment" {
			continue
		}

		id := htmlutil.LastPathSegment(entry.Url)
		assignment := Assignment{
			Id:       &id,
			Name:     entry.Title,
			MaxGrade: entry.TotalPoints.ptr(),
		}

		window := entry.SubmissionWindow
		dates := []struct {
			raw string
			out **time.Time
		}{
			{raw: window.ReleaseDate, out: &assignment.ReleaseDate},
			{raw: window.DueDate, out: &assignment.DueDate},
			{raw: window.HardDueDate, out: &assignment.LateDueDate},
		}
		for _, d := range dates {
			parsed, err := timeutil.ParseOptional(d.raw)
			if err != nil {
				return nil, false, fmt.Errorf("assignment %q: %w", entry.Title, err)
			}
			*d.out = parsed
		}

		assignments = append(assignments, assignment)
	}

	// a table with nothing but section headers is left to the next parser
	if len(assignments) == 0 {
		return nil, false, nil
	}
	return assignments, true, nil
}

type studentAssignmentTable struct{}

func (studentAssignmentTable) tryParse(doc *goquery.Document) ([]Assignment, bool, error) {
	rows := doc.Find(coursePage.Row)
	// the first row is the header and the last one a footer
	if rows.Length() < 3 {
		return nil, false, nil
	}
	rows = rows.Slice(1, rows.Length()-1)

	assignments := []Assignment{}
	var err error
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		var assignment Assignment
		assignment, err = parseStudentRow(row)
		if err != nil {
			return false
		}
		assignments = append(assignments, assignment)
		return true
	})
	if err != nil {
		return nil, false, err
	}
	return assignments, true, nil
}

func parseStudentRow(row *goquery.Selection) (Assignment, error) {
	// header cells (th) come before data cells (td) regardless of how they
	// are interleaved in the markup
	cells := row.Find("th").AddSelection(row.Find("td"))
	if cells.Length() == 0 {
		return Assignment{}, structureError(coursePage.Name, coursePage.Cell, nil)
	}

	nameCell := cells.Eq(0)
	assignment := Assignment{
		Name: htmlutil.Text(nameCell),
		Id:   studentAssignmentId(nameCell),
	}

	gradeText := ""
	if cells.Length() > 1 {
		gradeText = htmlutil.Text(cells.Eq(1))
	}
	grade, maxGrade, ok := parseGrade(gradeText)
	if ok {
		status := coursePage.SubmittedStatus
		assignment.Status = &status
		assignment.Grade = &grade
		assignment.MaxGrade = &maxGrade
	} else {
		assignment.Status = &gradeText
	}

	if cells.Length() > 2 {
		dateCell := cells.Eq(2)
		var err error
		assignment.ReleaseDate, err = timeutil.ParseOptional(
			dateCell.Find(coursePage.ReleaseDate).First().AttrOr(coursePage.DatetimeAttr, ""),
		)
		if err != nil {
			return Assignment{}, fmt.Errorf("assignment %q: release date: %w", assignment.Name, err)
		}

		due := dateCell.Find(coursePage.DueDate)
		assignment.DueDate, err = timeutil.ParseOptional(due.Eq(0).AttrOr(coursePage.DatetimeAttr, ""))
		if err != nil {
			return Assignment{}, fmt.Errorf("assignment %q: due date: %w", assignment.Name, err)
		}
		assignment.LateDueDate, err = timeutil.ParseOptional(due.Eq(1).AttrOr(coursePage.DatetimeAttr, ""))
		if err != nil {
			return Assignment{}, fmt.Errorf("assignment %q: late due date: %w", assignment.Name, err)
		}
	}

	return assignment, nil
}

// studentAssignmentId reads the id from the submission link, or from the
// submit button when nothing was submitted yet. Assignments that are not
// open have neither.
func studentAssignmentId(cell *goquery.Selection) *string {
	anchor := cell.Find(coursePage.Anchor).First()
	if anchor.Length() > 0 {
		id, ok := htmlutil.PathSegment(anchor.AttrOr("href", ""), coursePage.AnchorIdSegment)
		if ok && id != "" {
			return &id
		}
	}

	button := cell.Find(coursePage.SubmitButton).First()
	if id, ok := button.Attr(coursePage.AssignmentAttr); ok && id != "" {
		return &id
	}
	return nil
}

// parseGrade reads "12.5 / 20" style cells.
func parseGrade(text string) (points, outOf float64, ok bool) {
	parts := strings.Split(text, coursePage.GradeSeparator)
	if len(parts) < 2 {
		return 0, 0, false
	}
	points, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	outOf, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return points, outOf, true
}
