package gradescope

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gradescope-scraper/lib/timeutil"

	"github.com/PuerkitoBio/goquery"
)

// Dates is a set of optional assignment dates. A nil field is left alone.
type Dates struct {
	Release *time.Time
	Due     *time.Time
	LateDue *time.Time
}

func (d Dates) empty() bool {
	return d.Release == nil && d.Due == nil && d.LateDue == nil
}

// validate checks that at least one date is given and that the given dates
// do not go backwards. How they compare to the assignment's own dates does
// not matter, an extension may well end before the regular due date.
func (d Dates) validate() error {
	if d.empty() {
		return ErrNoDates
	}
	if !timeutil.Ordered(d.Release, d.Due, d.LateDue) {
		return ErrDatesOutOfOrder
	}
	return nil
}

type Extension struct {
	UserId      string
	StudentName string
	ReleaseDate *time.Time
	DueDate     *time.Time
	LateDueDate *time.Time
	// DeletePath is the path the site uses to remove the extension.
	DeletePath string
}

type extensionSetting struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type extensionProps struct {
	DeletePath  string `json:"deletePath"`
	StudentName string `json:"studentName"`
	Override    struct {
		UserId   looseString `json:"user_id"`
		Settings struct {
			ReleaseDate *extensionSetting `json:"release_date"`
			DueDate     *extensionSetting `json:"due_date"`
			HardDueDate *extensionSetting `json:"hard_due_date"`
		} `json:"settings"`
	} `json:"override"`
	Timezone struct {
		Identifier string `json:"identifier"`
	} `json:"timezone"`
}

func extensionsUrl(courseId, assignmentId string) string {
	return assignmentUrl(courseId, assignmentId) + "/extensions"
}

// ListExtensions returns the extensions of an assignment keyed by user id.
// Dates are in the timezone of the student they belong to.
func (c *Client) ListExtensions(ctx context.Context, courseId, assignmentId string) (map[string]Extension, error) {
	err := requireIds(courseId, assignmentId)
	if err != nil {
		return nil, err
	}

	doc, err := c.FetchDocument(ctx, extensionsUrl(courseId, assignmentId))
	if err != nil {
		c.reportFetch(report_client_list_extensions, err)
		return nil, fmt.Errorf("get extensions for assignment %s: %w", assignmentId, err)
	}

	extensions, err := parseExtensions(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_list_extensions, err, assignmentId)
		return nil, err
	}

	c.tel.ReportCount(report_client_list_extensions, int64(len(extensions)))
	return extensions, nil
}

func parseExtensions(doc *goquery.Document) (map[string]Extension, error) {
	table := doc.Find(extensionsPage.Table).First()
	if table.Length() == 0 {
		return nil, structureError(extensionsPage.Name, extensionsPage.Table, nil)
	}

	extensions := map[string]Extension{}
	var err error
	table.Find(extensionsPage.Row).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		var extension Extension
		extension, err = parseExtensionRow(row)
		if err != nil {
			return false
		}
		extensions[extension.UserId] = extension
		return true
	})
	if err != nil {
		return nil, err
	}
	return extensions, nil
}

func parseExtensionRow(row *goquery.Selection) (Extension, error) {
	rawProps, ok := row.Find(extensionsPage.Props).First().Attr(extensionsPage.ReactPropsAttr)
	if !ok {
		return Extension{}, structureError(extensionsPage.Name, extensionsPage.Props, nil)
	}
	var props extensionProps
	err := json.Unmarshal([]byte(rawProps), &props)
	if err != nil {
		return Extension{}, structureError(extensionsPage.Name, extensionsPage.ReactPropsAttr, err)
	}

	loc, err := time.LoadLocation(props.Timezone.Identifier)
	if err != nil {
		return Extension{}, fmt.Errorf("extension for %s: timezone: %w", props.StudentName, err)
	}

	extension := Extension{
		UserId:      string(props.Override.UserId),
		StudentName: props.StudentName,
		DeletePath:  props.DeletePath,
	}

	settings := props.Override.Settings
	dates := []struct {
		setting *extensionSetting
		out     **time.Time
	}{
		{setting: settings.ReleaseDate, out: &extension.ReleaseDate},
		{setting: settings.DueDate, out: &extension.DueDate},
		{setting: settings.HardDueDate, out: &extension.LateDueDate},
	}
	for _, d := range dates {
		if d.setting == nil {
			continue
		}
		// values are wall clock times of the student's timezone
		parsed, err := timeutil.ParseOptionalIn(d.setting.Value, loc)
		if err != nil {
			return Extension{}, fmt.Errorf("extension for %s: %w", props.StudentName, err)
		}
		if parsed != nil {
			local := timeutil.ReplaceLocation(*parsed, loc)
			*d.out = &local
		}
	}
	return extension, nil
}

type extensionSettingsBody struct {
	Visible     bool              `json:"visible"`
	ReleaseDate *extensionSetting `json:"release_date,omitempty"`
	DueDate     *extensionSetting `json:"due_date,omitempty"`
	HardDueDate *extensionSetting `json:"hard_due_date,omitempty"`
}

type extensionBody struct {
	Override struct {
		UserId   string                `json:"user_id"`
		Settings extensionSettingsBody `json:"settings"`
	} `json:"override"`
}

func absoluteDate(t *time.Time) *extensionSetting {
	if t == nil {
		return nil
	}
	return &extensionSetting{Type: "absolute", Value: timeutil.FormatUtc(*t)}
}

func newExtensionBody(userId string, dates Dates) extensionBody {
	var body extensionBody
	body.Override.UserId = userId
	body.Override.Settings = extensionSettingsBody{
		Visible:     true,
		ReleaseDate: absoluteDate(dates.Release),
		DueDate:     absoluteDate(dates.Due),
		HardDueDate: absoluteDate(dates.LateDue),
	}
	return body
}

// SetExtension creates or replaces the extension of one student. The dates
// are validated before anything is sent. It reports whether the site
// accepted the change.
func (c *Client) SetExtension(ctx context.Context, courseId, assignmentId, userId string, dates Dates) (bool, error) {
	err := requireIds(courseId, assignmentId, userId)
	if err != nil {
		return false, err
	}
	err = dates.validate()
	if err != nil {
		return false, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(newExtensionBody(userId, dates)).
		Post(extensionsUrl(courseId, assignmentId))
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		c.tel.ReportBroken(report_client_set_extension, err)
		return false, err
	}
	if res.StatusCode() != http.StatusOK {
		c.tel.ReportWarning(report_client_set_extension, res.Status(), userId)
		return false, nil
	}
	return true, nil
}

// RemoveExtension is not supported yet, the site's deletion flow has not
// been mapped. It always returns ErrNotImplemented without making a request.
func (c *Client) RemoveExtension(ctx context.Context, courseId, assignmentId, userId string) error {
	return fmt.Errorf("remove extension: %w", ErrNotImplemented)
}
