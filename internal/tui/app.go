package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/flightdash/internal/dashboard"
	"github.com/Iron-Ham/flightdash/internal/event"
	"github.com/Iron-Ham/flightdash/internal/watch"
)

// App wraps the Bubbletea program
type App struct {
	ctx     context.Context
	program *tea.Program
	model   Model
	session *dashboard.Session
	watcher *watch.Watcher
}

// New creates a new TUI application
func New(ctx context.Context, session *dashboard.Session, opts Options) *App {
	return &App{
		ctx:     ctx,
		model:   NewModel(ctx, session, opts),
		session: session,
	}
}

// WithWatcher reloads the session whenever w reports changed series files.
func (a *App) WithWatcher(w *watch.Watcher) *App {
	a.watcher = w
	return a
}

// Run starts the TUI application
func (a *App) Run() error {
	defer a.session.Close()

	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		<-sigChan
		if a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	// Background loads publish from fetch goroutines. Send from a fresh
	// goroutine so a publish inside Update never blocks the event loop.
	subID := a.session.Bus().SubscribeAll(func(e event.Event) {
		switch e.EventType() {
		case event.TypeDataLoaded, event.TypeDataFailed, event.TypeDomainChanged:
			go a.program.Send(dataChangedMsg{})
		}
	})
	defer a.session.Bus().Unsubscribe(subID)

	if a.watcher != nil {
		watch.RefreshOnChange(a.ctx, a.watcher, a.session)
		a.watcher.Start()
		defer a.watcher.Stop()
	}

	_, err := a.program.Run()

	// Clean up signal handler
	signal.Stop(sigChan)

	return err
}
