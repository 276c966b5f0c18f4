package gradescope

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gradescope-scraper/lib/timeutil"

	"github.com/go-resty/resty/v2"
)

func formField(param, value string) *resty.MultipartField {
	return &resty.MultipartField{
		Param:  param,
		Reader: strings.NewReader(value),
	}
}

func lateFlag(lateDue *time.Time) string {
	if lateDue == nil {
		return "0"
	}
	return "1"
}

// UpdateAssignmentDates saves the dates of an assignment through its edit
// form. A nil date clears the field on the site, and late submissions are
// allowed only when a late due date is given. Dates are sent as wall clock
// times, so they should already be in the institution's timezone.
func (c *Client) UpdateAssignmentDates(ctx context.Context, courseId, assignmentId string, dates Dates) (bool, error) {
	err := requireIds(courseId, assignmentId)
	if err != nil {
		return false, err
	}

	editPath := assignmentUrl(courseId, assignmentId) + "/edit"
	doc, err := c.FetchDocument(ctx, editPath)
	if err != nil {
		c.reportFetch(report_client_update_dates, err)
		return false, fmt.Errorf("get edit form: %w", err)
	}
	// form tokens are single use, each form needs its own
	token := doc.Find(editAssignmentPage.Token).First().AttrOr(editAssignmentPage.TokenAttr, "")
	if token == "" {
		err := structureError(editAssignmentPage.Name, editAssignmentPage.Token, nil)
		c.tel.ReportBroken(report_client_update_dates, err)
		return false, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("referer", c.Url(editPath)).
		SetMultipartFields(
			formField("utf8", "✓"),
			formField("_method", "patch"),
			formField("authenticity_token", token),
			formField("assignment[release_date_string]", timeutil.FormatForm(dates.Release)),
			formField("assignment[due_date_string]", timeutil.FormatForm(dates.Due)),
			formField("assignment[allow_late_submissions]", lateFlag(dates.LateDue)),
			formField("assignment[hard_due_date_string]", timeutil.FormatForm(dates.LateDue)),
			formField("commit", "Save"),
		).
		Post(assignmentUrl(courseId, assignmentId))
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		c.tel.ReportBroken(report_client_update_dates, err)
		return false, err
	}
	if res.StatusCode() != http.StatusOK {
		c.tel.ReportWarning(report_client_update_dates, res.Status(), assignmentId)
		return false, nil
	}
	return true, nil
}
