package commands

import (
	"context"
	"time"

	"gradescope-scraper/internal/components/telemetry"
	"gradescope-scraper/internal/scrapers/gradescope"
	"gradescope-scraper/lib/timeutil"
)

type sessionKey struct{}

// session is what every subcommand gets from the root command.
type session struct {
	client *gradescope.Client
	// location is the zone date flags are read in.
	location *time.Location
	otel     telemetry.Otel
}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func getSession(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

func (s *session) parseDates(release, due, lateDue string) (gradescope.Dates, error) {
	var dates gradescope.Dates
	var err error
	dates.Release, err = timeutil.ParseOptionalIn(release, s.location)
	if err != nil {
		return gradescope.Dates{}, err
	}
	dates.Due, err = timeutil.ParseOptionalIn(due, s.location)
	if err != nil {
		return gradescope.Dates{}, err
	}
	dates.LateDue, err = timeutil.ParseOptionalIn(lateDue, s.location)
	if err != nil {
		return gradescope.Dates{}, err
	}
	return dates, nil
}
