package processor

import (
	"context"
	"testing"

	"NewsDesk/internal/domain"
)

type stubProcessor struct {
	kind domain.SourceType
}

func (s stubProcessor) Type() domain.SourceType { return s.kind }

func (s stubProcessor) Fetch(context.Context, domain.FeedDescriptor, int) (domain.FeedResult, error) {
	return domain.FeedResult{}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(stubProcessor{kind: domain.SourceRSS})

	p, err := reg.Resolve(domain.SourceRSS)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if p.Type() != domain.SourceRSS {
		t.Fatalf("unexpected processor type %s", p.Type())
	}

	if _, err := reg.Resolve(domain.SourceHTML); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(stubProcessor{kind: domain.SourceHTML})
	reg.Register(stubProcessor{kind: domain.SourceHTML})

	if got := len(reg.Types()); got != 1 {
		t.Fatalf("expected 1 type, got %d", got)
	}
}
