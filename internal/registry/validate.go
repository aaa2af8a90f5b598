package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/resource"
)

// ValidateRegistry checks that every registered variant can run: it has
// work, and its resource kind, if any, has a registered client.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.VariantNames() {
		v := r.variants[name]
		if v.Work == nil {
			errs = append(errs, fmt.Sprintf("variant '%s' has no work", name))
		}
		if v.Resource == resource.None {
			continue
		}
		if _, ok := r.clients[v.Resource]; !ok {
			errs = append(errs, fmt.Sprintf("variant '%s' needs resource kind '%s' but no client is registered for it", name, v.Resource))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validated.", "variants", len(r.variants), "clients", len(r.clients))
	return nil
}
