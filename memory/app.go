package memory

import (
	"strings"
	"sync"

	"github.com/next-trace/scg-service-state/contract/service"
)

// App mounts services on routes and resolves them for binding.
type App struct {
	mu       sync.RWMutex
	services map[string]service.Service
}

var _ service.Resolver = (*App)(nil)

// NewApp creates an empty App.
func NewApp() *App { return &App{services: make(map[string]service.Service)} }

// Use mounts svc on route, replacing any previous service there.
func (a *App) Use(route string, svc service.Service) *App {
	a.mu.Lock()
	a.services[cleanRoute(route)] = svc
	a.mu.Unlock()

	return a
}

// Service returns the service on route, or nil.
func (a *App) Service(route string) service.Service { //nolint:ireturn
	a.mu.RLock()
	defer a.mu.RUnlock()

	svc, ok := a.services[cleanRoute(route)]
	if !ok {
		return nil
	}

	return svc
}

func cleanRoute(route string) string { return strings.Trim(route, "/") }
