package gradescope

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
)

// UploadFile is one file of a submission. Name may be a path, only its base
// is sent.
type UploadFile struct {
	Name    string
	Content io.Reader
}

func (f UploadFile) part() (*resty.MultipartField, error) {
	content, err := io.ReadAll(f.Content)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	name := filepath.Base(f.Name)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = mimetype.Detect(content).String()
	}
	return &resty.MultipartField{
		Param:       "submission[files][]",
		FileName:    name,
		ContentType: contentType,
		Reader:      bytes.NewReader(content),
	}, nil
}

// UploadAssignment submits files to an assignment and returns the url of the
// new submission. The site answers 200 whether or not the upload went
// through, a rejected upload (past the due date, missing fields) redirects
// back to the course page instead. In that case the returned url is empty
// and the error is nil.
func (c *Client) UploadAssignment(
	ctx context.Context,
	courseId, assignmentId string,
	files []UploadFile,
	leaderboardName, ownerId *string,
) (string, error) {
	err := requireIds(courseId, assignmentId)
	if err != nil {
		return "", err
	}

	coursePath := courseUrl(courseId)
	doc, err := c.FetchDocument(ctx, coursePath)
	if err != nil {
		c.reportFetch(report_client_upload, err)
		return "", fmt.Errorf("get course page: %w", err)
	}
	token := doc.Find(loginPage.CsrfMeta).First().AttrOr(loginPage.CsrfMetaAttr, "")
	if token == "" {
		err := structureError(coursePage.Name, loginPage.CsrfMeta, nil)
		c.tel.ReportBroken(report_client_upload, err)
		return "", err
	}

	fields := []*resty.MultipartField{
		formField("utf8", "✓"),
		formField("authenticity_token", token),
		formField("submission[method]", "upload"),
	}
	for _, f := range files {
		part, err := f.part()
		if err != nil {
			return "", err
		}
		fields = append(fields, part)
	}
	if leaderboardName != nil {
		fields = append(fields, formField("submission[leaderboard_name]", *leaderboardName))
	}
	if ownerId != nil {
		fields = append(fields, formField("submission[owner_id]", *ownerId))
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("referer", c.Url(coursePath)).
		SetMultipartFields(fields...).
		Post(assignmentUrl(courseId, assignmentId) + "/submissions")
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		c.tel.ReportBroken(report_client_upload, err)
		return "", err
	}

	final := res.RawResponse.Request.URL.String()
	if final == c.Url(coursePath) || strings.HasSuffix(final, "submissions") {
		c.tel.ReportWarning(report_client_upload, "upload rejected", final)
		return "", nil
	}
	return final, nil
}
