package telemetry

import (
	"fmt"
)

// API is what every component reports through instead of calling a logger
// directly, so tests can assert on what was reported.
type API interface {
	// ReportBroken reports a component that failed in a way someone should look at.
	//
	// id names the component, not the line that failed: `client.list-members`,
	// not `client.list-members.parse-data-cm`. Extra detail (the wrapped error,
	// the page that was fetched) goes into params.
	//
	// ids are lowercase, underscores separate words of a component, dashes
	// separate words of a method. Each package declares them as `report_*`
	// constants.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something odd that did not stop the operation,
	// like a counter that could not be read off a course card.
	ReportWarning(id string, params ...any)

	// ReportDebug reports information that is only useful while developing.
	ReportDebug(msg string, params ...any)

	// ReportCount reports how many of something exist at this moment (ex. the
	// number of rows on a roster). Counts are samples, they are not summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, so two packages can both
// report `client.fetch` without colliding.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s.%s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
