package lookup

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/lookupops/health"
)

// Checker returns a health checker reflecting the runtime's open state along
// with cache occupancy details.
func (f *Factory) Checker() health.Checker {
	return health.NewCheckerFunc("lookup."+f.meta.Name, func(ctx context.Context) health.Result {
		details := map[string]any{
			"id":              f.id,
			"endpoint":        f.meta.Endpoint,
			"forward_entries": f.lookup.forward.Len(),
			"reverse_entries": f.lookup.reverse.Len(),
		}
		if !f.lookup.IsOpen() {
			return health.Unhealthy("lookup is closed", nil).WithDetails(details)
		}
		return health.Healthy("lookup is open").WithDetails(details)
	})
}

// introspection is the JSON state exposed to operators. The access token is
// deliberately absent.
type introspection struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Endpoint       string `json:"endpoint,omitempty"`
	Started        bool   `json:"started"`
	Open           bool   `json:"open"`
	Injective      bool   `json:"injective"`
	ForwardEntries int    `json:"forwardEntries"`
	ReverseEntries int    `json:"reverseEntries"`
}

// IntrospectHandler returns the factory's optional introspection handle: a
// JSON snapshot of lifecycle state and cache occupancy.
func (f *Factory) IntrospectHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		started := f.started
		f.mu.Unlock()

		state := introspection{
			ID:             f.id,
			Name:           f.meta.Name,
			Endpoint:       f.meta.Endpoint,
			Started:        started,
			Open:           f.lookup.IsOpen(),
			Injective:      f.cfg.Injective,
			ForwardEntries: f.lookup.forward.Len(),
			ReverseEntries: f.lookup.reverse.Len(),
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(state)
	})
}
