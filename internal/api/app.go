package api

import (
	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/config"
	"github.com/yourname/timesheet/internal/export"
	"github.com/yourname/timesheet/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Repos() *storage.Repositories
	Config() *config.Config
	ExportSink() export.Sink
}

// Application is the concrete App wired up in cmd/server.
type Application struct {
	logger internal.Logger
	repos  *storage.Repositories
	cfg    *config.Config
	sink   export.Sink
}

func NewApplication(logger internal.Logger, repos *storage.Repositories, cfg *config.Config, sink export.Sink) *Application {
	return &Application{logger: logger, repos: repos, cfg: cfg, sink: sink}
}

func (a *Application) Logger() internal.Logger      { return a.logger }
func (a *Application) Repos() *storage.Repositories { return a.repos }
func (a *Application) Config() *config.Config       { return a.cfg }
func (a *Application) ExportSink() export.Sink      { return a.sink }
