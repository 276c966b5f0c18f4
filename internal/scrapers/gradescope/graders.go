package gradescope

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"gradescope-scraper/lib/htmlutil"
)

// ListGraders returns the distinct names of the graders who graded a
// question, sorted.
func (c *Client) ListGraders(ctx context.Context, courseId, questionId string) ([]string, error) {
	err := requireIds(courseId, questionId)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/questions/%s/submissions", courseUrl(courseId), url.PathEscape(questionId))
	doc, err := c.FetchDocument(ctx, path)
	if err != nil {
		c.reportFetch(report_client_list_graders, err)
		return nil, err
	}

	// rows are (submission, student, grader), flattened into one list of
	// cells
	cells := doc.Find(questionSubmissionsPage.Cell)
	set := map[string]struct{}{}
	for i := questionSubmissionsPage.GraderStart; i < cells.Length(); i += questionSubmissionsPage.GraderStep {
		name := htmlutil.Text(cells.Eq(i))
		if name != "" {
			set[name] = struct{}{}
		}
	}

	graders := make([]string, 0, len(set))
	for name := range set {
		graders = append(graders, name)
	}
	sort.Strings(graders)
	return graders, nil
}
