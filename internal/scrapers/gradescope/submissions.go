package gradescope

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gradescope-scraper/lib/htmlutil"
	"gradescope-scraper/lib/timeutil"

	"github.com/PuerkitoBio/goquery"
)

func submissionUrl(courseId, assignmentId, submissionId string) string {
	return fmt.Sprintf("%s/submissions/%s", assignmentUrl(courseId, assignmentId), url.PathEscape(submissionId))
}

// wait spaces out the requests made for each item of a listing.
func (c *Client) wait(ctx context.Context) error {
	return c.delay.Wait(ctx)
}

type submissionFiles struct {
	TextFiles []struct {
		File struct {
			Url string `json:"url"`
		} `json:"file"`
	} `json:"text_files"`
}

// SubmissionLinks returns the download links of the files of one
// submission. Submissions made only of scanned pages have no text files and
// fail with ErrImageOnlySubmission.
func (c *Client) SubmissionLinks(ctx context.Context, courseId, assignmentId, submissionId string) ([]string, error) {
	err := requireIds(courseId, assignmentId, submissionId)
	if err != nil {
		return nil, err
	}

	var files submissionFiles
	err = c.FetchJson(
		ctx,
		submissionUrl(courseId, assignmentId, submissionId)+".json",
		&files,
		WithQuery("content", "react"),
		WithQuery("only_keys[]", "text_files", "file_comments"),
	)
	if err != nil {
		c.reportFetch(report_client_submission_links, err)
		return nil, err
	}
	if len(files.TextFiles) == 0 {
		return nil, fmt.Errorf("submission %s: %w", submissionId, ErrImageOnlySubmission)
	}

	links := make([]string, len(files.TextFiles))
	for i, f := range files.TextFiles {
		links[i] = f.File.Url
	}
	return links, nil
}

func (c *Client) fetchReviewGrades(ctx context.Context, id, courseId, assignmentId string) (*goquery.Document, error) {
	err := requireIds(courseId, assignmentId)
	if err != nil {
		return nil, err
	}
	doc, err := c.FetchDocument(ctx, assignmentUrl(courseId, assignmentId)+"/review_grades")
	if err != nil {
		c.reportFetch(id, err)
		return nil, err
	}
	return doc, nil
}

// ListSubmissionLinks resolves the file links of every submission to an
// assignment, keyed by submission id. Submissions are resolved one at a
// time and the first failure stops the listing.
func (c *Client) ListSubmissionLinks(ctx context.Context, courseId, assignmentId string) (map[string][]string, error) {
	doc, err := c.fetchReviewGrades(ctx, report_client_list_submission_links, courseId, assignmentId)
	if err != nil {
		return nil, err
	}

	var ids []string
	doc.Find(reviewGradesPage.PrimaryLink).Find(reviewGradesPage.Anchor).Each(func(_ int, a *goquery.Selection) {
		id := htmlutil.LastPathSegment(a.AttrOr("href", ""))
		if id != "" {
			ids = append(ids, id)
		}
	})

	out := map[string][]string{}
	for _, id := range ids {
		err = c.wait(ctx)
		if err != nil {
			return nil, err
		}
		links, err := c.SubmissionLinks(ctx, courseId, assignmentId, id)
		if err != nil {
			c.tel.ReportBroken(report_client_list_submission_links, err, id)
			return nil, err
		}
		out[id] = links
	}

	c.tel.ReportCount(report_client_list_submission_links, int64(len(out)))
	return out, nil
}

// FindSubmissionForStudent returns the file links of the current submission
// of the student with the given email. ErrStudentNotFound means no row
// mentions the email, ErrNoSubmission means the student has not submitted.
func (c *Client) FindSubmissionForStudent(ctx context.Context, courseId, assignmentId, email string) ([]string, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidId
	}
	doc, err := c.fetchReviewGrades(ctx, report_client_find_student_submission, courseId, assignmentId)
	if err != nil {
		return nil, err
	}

	emailCell := doc.Find(reviewGradesPage.Cell).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), email)
	}).First()
	if emailCell.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", email, ErrStudentNotFound)
	}

	anchor := emailCell.Prev().Find(reviewGradesPage.Anchor).First()
	if anchor.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", email, ErrNoSubmission)
	}
	submissionId := htmlutil.LastPathSegment(anchor.AttrOr("href", ""))

	links, err := c.SubmissionLinks(ctx, courseId, assignmentId, submissionId)
	if err != nil {
		c.tel.ReportBroken(report_client_find_student_submission, err, submissionId)
		return nil, err
	}
	return links, nil
}

type SubmissionInfo struct {
	Id string
	// Url is the page of the submission on the site.
	Url         string
	SubmittedAt *time.Time
	Links       []string
	// Active is nil when the submission has several owners (group
	// submissions) and the history does not say which one is active.
	Active *bool
}

type StudentSubmissions struct {
	Name  string
	Email string
	// Submissions holds the current submission first, followed by older ones
	// when they were requested.
	Submissions []SubmissionInfo
}

type pastSubmissions struct {
	PastSubmissions []struct {
		Id        looseString `json:"id"`
		CreatedAt string      `json:"created_at"`
		Owners    []struct {
			Active bool `json:"active"`
		} `json:"owners"`
	} `json:"past_submissions"`
}

// ListStudentSubmissions lists the submissions of every student of an
// assignment in the order of the review page. With includePast, the
// submission history of every student is resolved as well.
func (c *Client) ListStudentSubmissions(ctx context.Context, courseId, assignmentId string, includePast bool) ([]StudentSubmissions, error) {
	doc, err := c.fetchReviewGrades(ctx, report_client_list_student_submission, courseId, assignmentId)
	if err != nil {
		return nil, err
	}

	students := parseStudentRows(c.Url(assignmentUrl(courseId, assignmentId)), doc)

	for i := range students {
		current := &students[i].Submissions[0]

		if !includePast {
			err = c.wait(ctx)
			if err != nil {
				return nil, err
			}
			current.Links, err = c.SubmissionLinks(ctx, courseId, assignmentId, current.Id)
			if err != nil {
				c.tel.ReportBroken(report_client_list_student_submission, err, current.Id)
				return nil, err
			}
			active := true
			current.Active = &active
			continue
		}

		history, err := c.submissionHistory(ctx, courseId, assignmentId, *current)
		if err != nil {
			c.tel.ReportBroken(report_client_list_student_submission, err, current.Id)
			return nil, err
		}
		students[i].Submissions = history
	}

	c.tel.ReportCount(report_client_list_student_submission, int64(len(students)))
	return students, nil
}

func parseStudentRows(assignmentPageUrl string, doc *goquery.Document) []StudentSubmissions {
	seen := map[string]bool{}
	var students []StudentSubmissions

	doc.Find(reviewGradesPage.PrimaryLink).Each(func(_ int, cell *goquery.Selection) {
		anchor := cell.Find(reviewGradesPage.Anchor).First()
		if anchor.Length() == 0 {
			return
		}
		name := htmlutil.Text(anchor)
		id := htmlutil.LastPathSegment(anchor.AttrOr("href", ""))
		// group submissions list every member joined by commas, the members
		// also have rows of their own
		if id == "" || seen[id] || strings.Contains(name, reviewGradesPage.NameSeparator) {
			return
		}
		seen[id] = true

		current := SubmissionInfo{
			Id:  id,
			Url: fmt.Sprintf("%s/submissions/%s", assignmentPageUrl, id),
		}
		student := StudentSubmissions{Name: name}

		cell.NextAllFiltered(reviewGradesPage.Cell).Each(func(_ int, sibling *goquery.Selection) {
			href := sibling.Find(reviewGradesPage.Anchor).First().AttrOr("href", "")
			if strings.HasPrefix(href, reviewGradesPage.MailtoPrefix) {
				student.Email = strings.TrimPrefix(href, reviewGradesPage.MailtoPrefix)
				return
			}
			datetime, ok := sibling.Find(reviewGradesPage.Time).First().Attr(reviewGradesPage.DatetimeAttr)
			if ok && current.SubmittedAt == nil {
				submittedAt, err := time.Parse(timeutil.SubmissionLayout, datetime)
				if err == nil {
					current.SubmittedAt = &submittedAt
				}
			}
		})

		student.Submissions = []SubmissionInfo{current}
		students = append(students, student)
	})
	return students
}

func (c *Client) submissionHistory(ctx context.Context, courseId, assignmentId string, current SubmissionInfo) ([]SubmissionInfo, error) {
	err := c.wait(ctx)
	if err != nil {
		return nil, err
	}

	var past pastSubmissions
	err = c.FetchJson(
		ctx,
		submissionUrl(courseId, assignmentId, current.Id)+".json",
		&past,
		WithQuery("content", "react"),
		WithQuery("only_keys[]", "past_submissions"),
	)
	if err != nil {
		return nil, err
	}

	loc := time.UTC
	if current.SubmittedAt != nil {
		loc = current.SubmittedAt.Location()
	}

	// the first entry of the history is the current submission
	history := make([]SubmissionInfo, 0, len(past.PastSubmissions))
	for i, entry := range past.PastSubmissions {
		info := current
		if i > 0 {
			info = SubmissionInfo{Id: string(entry.Id)}
		}
		info.Url = c.Url(submissionUrl(courseId, assignmentId, info.Id))

		createdAt, err := timeutil.ParseOptional(entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("submission %s: created_at: %w", info.Id, err)
		}
		if createdAt != nil {
			local := createdAt.In(loc)
			info.SubmittedAt = &local
		}
		if len(entry.Owners) == 1 {
			active := entry.Owners[0].Active
			info.Active = &active
		}

		err = c.wait(ctx)
		if err != nil {
			return nil, err
		}
		info.Links, err = c.SubmissionLinks(ctx, courseId, assignmentId, info.Id)
		if err != nil {
			return nil, err
		}
		history = append(history, info)
	}
	if len(history) == 0 {
		current.Links, err = c.SubmissionLinks(ctx, courseId, assignmentId, current.Id)
		if err != nil {
			return nil, err
		}
		return []SubmissionInfo{current}, nil
	}
	return history, nil
}
