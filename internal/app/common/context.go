package common

import (
	"optitech/internal/domain/profile"
	"optitech/internal/infra/config"
	"optitech/internal/infra/logging"
	"optitech/internal/infra/servicectl"
)

type contextKey string

const ContextKeyApp contextKey = "appctx"

type GlobalOptions struct {
	DryRun  bool
	Debug   bool
	Yes     bool
	JSON    bool
	NoOpLog bool
}

type AppContext struct {
	Options  GlobalOptions
	Paths    config.Paths
	Profile  profile.Profile
	Logger   logging.Logger
	Services servicectl.Manager
}
