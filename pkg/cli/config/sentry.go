package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error reporting
type Sentry struct {
	dsn string `masq:"secret"`
	env string
}

func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting (disabled when empty)",
			Category:    "Sentry",
			Sources:     cli.EnvVars("ASSETCHECK_SENTRY_DSN"),
			Destination: &x.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Category:    "Sentry",
			Value:       "development",
			Sources:     cli.EnvVars("ASSETCHECK_SENTRY_ENV"),
			Destination: &x.env,
		},
	}
}

// IsEnabled reports whether a DSN was given
func (x *Sentry) IsEnabled() bool {
	return x.dsn != ""
}

// Configure initializes the Sentry client. The returned function flushes
// pending events and must be called on shutdown.
func (x *Sentry) Configure(version string) (func(), error) {
	if !x.IsEnabled() {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.dsn,
		Environment: x.env,
		Release:     "assetcheck@" + version,
	}); err != nil {
		return func() {}, goerr.Wrap(err, "failed to initialize sentry")
	}

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
