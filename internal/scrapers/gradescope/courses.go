package gradescope

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"gradescope-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type Course struct {
	Id        string
	ShortName string
	FullName  string
	// Term is the season part of the term label, ex. "Fall".
	Term string
	Year string
	// GradesPublished is only read off staff listings and is nil whenever the
	// course card does not show it.
	GradesPublished *int
	Assignments     *int
}

// CoursePartition holds the courses of an account by the role the account
// has in them, keyed by course id.
type CoursePartition struct {
	Instructor map[string]Course
	Student    map[string]Course
}

func (c *Client) ListCourses(ctx context.Context) (CoursePartition, error) {
	doc, err := c.FetchDocument(ctx, "/account")
	if err != nil {
		c.reportFetch(report_client_list_courses, err)
		return CoursePartition{}, err
	}

	courses, err := parseCourses(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_list_courses, err)
		return CoursePartition{}, err
	}

	c.tel.ReportCount(report_client_list_courses, int64(len(courses.Instructor)+len(courses.Student)))
	return courses, nil
}

func findHeading(doc *goquery.Document, text string) *goquery.Selection {
	return doc.Find(accountPage.Heading).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return htmlutil.Text(s) == text
	}).First()
}

func isCreateCourseControl(s *goquery.Selection) bool {
	return strings.Contains(strings.ToLower(htmlutil.Text(s)), accountPage.CreateCourseText)
}

func parseCourses(doc *goquery.Document) (CoursePartition, error) {
	out := CoursePartition{
		Instructor: map[string]Course{},
		Student:    map[string]Course{},
	}

	// an account with a single role gets one combined listing, the role is
	// told apart by whether the listing offers to create a course
	combined := findHeading(doc, accountPage.CombinedHeading)
	if combined.Length() > 0 {
		staff := isCreateCourseControl(htmlutil.FindNext(combined, accountPage.CreateCourseButton))
		courses, err := parseListing(combined, staff)
		if err != nil {
			return CoursePartition{}, err
		}
		if staff {
			out.Instructor = courses
		} else {
			out.Student = courses
		}
		return out, nil
	}

	instructor := findHeading(doc, accountPage.InstructorHeading)
	student := findHeading(doc, accountPage.StudentHeading)
	if instructor.Length() > 0 || student.Length() > 0 {
		if instructor.Length() > 0 {
			courses, err := parseListing(instructor, true)
			if err != nil {
				return CoursePartition{}, err
			}
			out.Instructor = courses
		}
		if student.Length() > 0 {
			courses, err := parseListing(student, false)
			if err != nil {
				return CoursePartition{}, err
			}
			out.Student = courses
		}
		return out, nil
	}

	// no headings at all: walk the course list containers directly
	lists := doc.Find(accountPage.CourseList)
	if lists.Length() == 0 {
		return CoursePartition{}, structureError(accountPage.Name, accountPage.Heading+", "+accountPage.CourseList, nil)
	}
	staff := doc.Find(accountPage.CreateCourseButton).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return isCreateCourseControl(s)
	}).Length() > 0

	target := out.Student
	if staff {
		target = out.Instructor
	}
	var err error
	lists.EachWithBreak(func(_ int, list *goquery.Selection) bool {
		var courses map[string]Course
		courses, err = parseCourseList(list, staff)
		if err != nil {
			return false
		}
		for id, course := range courses {
			target[id] = course
		}
		return true
	})
	if err != nil {
		return CoursePartition{}, err
	}
	return out, nil
}

func parseListing(heading *goquery.Selection, staff bool) (map[string]Course, error) {
	list := htmlutil.FindNext(heading, accountPage.CourseList)
	if list.Length() == 0 {
		return nil, structureError(accountPage.Name, accountPage.CourseList, nil)
	}
	return parseCourseList(list, staff)
}

// parseCourseList assigns every course card in list to the closest term
// label before it. This works whether the cards are siblings of the term
// label or nested in a container after it.
func parseCourseList(list *goquery.Selection, staff bool) (map[string]Course, error) {
	courses := map[string]Course{}

	var term, year string
	var termSeen bool
	var err error
	list.Find(accountPage.Term + ", " + accountPage.CourseAnchor).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Is(accountPage.Term) {
			term, year = splitTerm(htmlutil.Text(s))
			termSeen = true
			return true
		}
		if !termSeen || s.Find(accountPage.ShortName).Length() == 0 {
			return true
		}

		var course Course
		course, err = parseCourseCard(s, staff)
		if err != nil {
			return false
		}
		course.Term = term
		course.Year = year
		courses[course.Id] = course
		return true
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func splitTerm(label string) (term, year string) {
	fields := strings.Fields(label)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], fields[1]
	}
}

func parseCourseCard(card *goquery.Selection, staff bool) (Course, error) {
	href := card.AttrOr("href", "")
	id := htmlutil.LastPathSegment(href)
	if id == "" {
		return Course{}, structureError(accountPage.Name, accountPage.CourseAnchor, nil)
	}

	course := Course{
		Id:        id,
		ShortName: htmlutil.Text(card.Find(accountPage.ShortName)),
		FullName:  htmlutil.Text(card.Find(accountPage.FullName)),
	}
	if staff {
		course.GradesPublished = parseCounter(card.Find(accountPage.GradesPublished))
		course.Assignments = parseCounter(card.Find(accountPage.StaffAssignments))
	} else {
		course.Assignments = parseCounter(card.Find(accountPage.StudentAssignments))
	}
	return course, nil
}

var counterRegex = regexp.MustCompile(`\d+`)

// parseCounter reads counters like "5 assignments" or "No grades published",
// nil if the element is missing or holds no number.
func parseCounter(s *goquery.Selection) *int {
	if s.Length() == 0 {
		return nil
	}
	text := htmlutil.Text(s)
	match := counterRegex.FindString(text)
	if match == "" {
		if strings.HasPrefix(strings.ToLower(text), "no ") {
			zero := 0
			return &zero
		}
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}
