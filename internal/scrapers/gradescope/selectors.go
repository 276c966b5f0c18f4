package gradescope

// Every selector and attribute name the extractors depend on lives here, one
// table per page. When the site's markup drifts, this is the file to update.

var loginPage = struct {
	Name          string
	Token         string
	CsrfMeta      string
	TokenAttr     string
	CsrfMetaAttr  string
	CsrfHeader    string
	LoginEndpoint string
}{
	Name:          "login",
	Token:         `form[action="/login"] input[name="authenticity_token"]`,
	TokenAttr:     "value",
	CsrfMeta:      `meta[name="csrf-token"]`,
	CsrfMetaAttr:  "content",
	CsrfHeader:    "X-CSRF-Token",
	LoginEndpoint: "/login",
}

// GradesPublished matches the site's misspelled class name.
var accountPage = struct {
	Name string

	Heading            string
	CombinedHeading    string
	InstructorHeading  string
	StudentHeading     string
	CreateCourseButton string
	CreateCourseText   string
	CourseList         string
	Term               string
	CourseAnchor       string
	ShortName          string
	FullName           string
	GradesPublished    string
	StaffAssignments   string
	StudentAssignments string
}{
	Name: "account",

	Heading:            "h1.pageHeading",
	CombinedHeading:    "Your Courses",
	InstructorHeading:  "Instructor Courses",
	StudentHeading:     "Student Courses",
	CreateCourseButton: "button",
	CreateCourseText:   "create a new course",
	CourseList:         "div.courseList",
	Term:               "div.courseList--term",
	CourseAnchor:       "a[href]",
	ShortName:          "h3.courseBox--shortname",
	FullName:           "div.courseBox--name",
	GradesPublished:    "div.courseBox--noGradesPublised",
	StaffAssignments:   "div.courseBox--assignments",
	StudentAssignments: "div.courseBox--assignments",
}

var membershipPage = struct {
	Name string

	HeaderCell        string
	SectionsHeader    string
	Row               string
	Cell              string
	EditButton        string
	DataCmAttr        string
	EmailAttr         string
	IdAttr            string
	RoleAttr          string
	SectionsAttr      string
	RosterName        string
	RosterNameUrlAttr string
	UserIdParam       string

	// index of the submission count cell without a sections column, add one
	// when the column is present
	SubmissionsCell int
}{
	Name: "memberships",

	HeaderCell:        "thead th, tr:first-child th",
	SectionsHeader:    "Sections",
	Row:               "tr.rosterRow",
	Cell:              "td",
	EditButton:        "button.rosterCell--editIcon",
	DataCmAttr:        "data-cm",
	EmailAttr:         "data-email",
	IdAttr:            "data-id",
	RoleAttr:          "data-role",
	SectionsAttr:      "data-sections",
	RosterName:        "button.js-rosterName[data-url], a.js-rosterName[data-url]",
	RosterNameUrlAttr: "data-url",
	UserIdParam:       "user_id",

	SubmissionsCell: 3,
}

var coursePage = struct {
	Name string

	StaffTable      string
	ReactPropsAttr  string
	Row             string
	Cell            string
	Anchor          string
	SubmitButton    string
	AssignmentAttr  string
	GradeSeparator  string
	ReleaseDate     string
	DueDate         string
	DatetimeAttr    string
	SubmittedStatus string
	AnchorIdSegment int
}{
	Name: "course",

	StaffTable:      `div[data-react-class="AssignmentsTable"]`,
	ReactPropsAttr:  "data-react-props",
	Row:             `tr[role="row"]`,
	Cell:            "th, td",
	Anchor:          "a[href]",
	SubmitButton:    "button.js-submitAssignment",
	AssignmentAttr:  "data-assignment-id",
	GradeSeparator:  " / ",
	ReleaseDate:     ".submissionTimeChart--releaseDate",
	DueDate:         ".submissionTimeChart--dueDate",
	DatetimeAttr:    "datetime",
	SubmittedStatus: "Submitted",
	AnchorIdSegment: 4,
}

var reviewGradesPage = struct {
	Name string

	PrimaryLink   string
	Cell          string
	Anchor        string
	MailtoPrefix  string
	Time          string
	DatetimeAttr  string
	NameSeparator string
}{
	Name: "review_grades",

	PrimaryLink:   "td.table--primaryLink",
	Cell:          "td",
	Anchor:        "a[href]",
	MailtoPrefix:  "mailto:",
	Time:          "time[datetime]",
	DatetimeAttr:  "datetime",
	NameSeparator: ",",
}

var questionSubmissionsPage = struct {
	Name string

	Cell        string
	GraderStart int
	GraderStep  int
}{
	Name: "question_submissions",

	Cell:        "td",
	GraderStart: 2,
	GraderStep:  3,
}

var extensionsPage = struct {
	Name string

	Table          string
	Row            string
	Props          string
	ReactPropsAttr string
}{
	Name: "extensions",

	Table:          "table.js-overridesTable",
	Row:            "tbody tr",
	Props:          `div[data-react-class="EditExtension"]`,
	ReactPropsAttr: "data-react-props",
}

var editAssignmentPage = struct {
	Name string

	Token     string
	TokenAttr string
}{
	Name: "edit_assignment",

	Token:     `input[name="authenticity_token"]`,
	TokenAttr: "value",
}
