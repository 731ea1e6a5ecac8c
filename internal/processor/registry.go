package processor

import (
	"fmt"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// Registry keeps a mapping from source types to their processors.
type Registry struct {
	processors map[domain.SourceType]ports.FeedProcessor
}

// NewRegistry builds a registry holding the given processors.
func NewRegistry(processors ...ports.FeedProcessor) *Registry {
	r := &Registry{processors: map[domain.SourceType]ports.FeedProcessor{}}
	for _, p := range processors {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a processor implementation.
func (r *Registry) Register(p ports.FeedProcessor) {
	if r.processors == nil {
		r.processors = map[domain.SourceType]ports.FeedProcessor{}
	}
	r.processors[p.Type()] = p
}

// Resolve returns the processor for t or an error if none is registered.
func (r *Registry) Resolve(t domain.SourceType) (ports.FeedProcessor, error) {
	if p, ok := r.processors[t]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown source type: %s", t)
}

// Types lists the registered source types.
func (r *Registry) Types() []domain.SourceType {
	out := make([]domain.SourceType, 0, len(r.processors))
	for t := range r.processors {
		out = append(out, t)
	}
	return out
}
