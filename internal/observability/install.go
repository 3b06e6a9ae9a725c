package observability

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrAlreadyInstalled is returned by Install once a pipeline has been
// installed. It signals a startup wiring bug and is not retryable.
var ErrAlreadyInstalled = errors.New("a global log pipeline is already installed")

// Installer accepts a pipeline exactly once and makes it the process-wide
// destination for zap's global logger and the standard library log package.
type Installer struct {
	mu        sync.Mutex
	installed *Pipeline
	restore   []func()
}

var defaultInstaller Installer

// Install registers p as the process-wide log destination. It must be called
// once, from startup code; every later call returns ErrAlreadyInstalled.
func Install(p *Pipeline) error {
	return defaultInstaller.Install(p)
}

// Install registers p through this installer.
func (i *Installer) Install(p *Pipeline) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.installed != nil {
		return fmt.Errorf("install over %q: %w", i.installed.Name(), ErrAlreadyInstalled)
	}
	if p == nil {
		return errors.New("pipeline is required")
	}

	logger := p.Logger()
	undoGlobals := zap.ReplaceGlobals(logger)
	undoStdLog, err := zap.RedirectStdLogAt(logger.Named("log"), zap.InfoLevel)
	if err != nil {
		undoGlobals()
		return fmt.Errorf("failed to redirect standard library log: %w", err)
	}

	i.installed = p
	i.restore = []func(){undoStdLog, undoGlobals}
	return nil
}

// Installed returns the installed pipeline, or nil.
func (i *Installer) Installed() *Pipeline {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.installed
}

// uninstall restores the previous globals. Only tests reset an installer.
func (i *Installer) uninstall() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, undo := range i.restore {
		undo()
	}
	i.installed = nil
	i.restore = nil
}
