package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/utils"
)

func TestMockAdapterDeterministic(t *testing.T) {
	m := MockAdapter{ModelVersion: "mock-v1"}
	a, err := m.Complete(context.Background(), "prompt-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := m.Complete(context.Background(), "prompt-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected deterministic replies for the same prompt")
	}
}

// Hashes with the top bit set used to index the service catalog with a
// negative value and panic.
func TestMockAdapterHighHashPrompts(t *testing.T) {
	m := MockAdapter{ModelVersion: "mock-v1"}
	tried := 0
	for i := 0; tried < 5 && i < 1000; i++ {
		prompt := fmt.Sprintf("高ビットプロンプト-%d", i)
		if utils.HashStringToUint64(prompt) < 1<<63 {
			continue
		}
		tried++
		reply, err := m.Complete(context.Background(), prompt)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", prompt, err)
		}
		res := NormalizeResponse(reply)
		if len(res.ProposedServices) != 2 {
			t.Fatalf("expected 2 proposed services for %q, got %d", prompt, len(res.ProposedServices))
		}
		for _, s := range res.ProposedServices {
			if s.Name == "" {
				t.Fatalf("expected a catalog service name for %q", prompt)
			}
		}
	}
	if tried == 0 {
		t.Fatalf("no prompt with a top-bit hash found in 1000 candidates")
	}
}

func TestMockAdapterNormalizes(t *testing.T) {
	m := MockAdapter{ModelVersion: "mock-v1"}
	reply, err := m.Complete(context.Background(), "何らかの分析プロンプト")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := NormalizeResponse(reply)
	if res.CurrentAnalysis == "" {
		t.Fatalf("expected a current analysis")
	}
	if len(res.MainIssues) == 0 || len(res.Recommendations) == 0 {
		t.Fatalf("expected issues and recommendations, got %+v", res)
	}
	if len(res.ProposedServices) != 2 {
		t.Fatalf("expected 2 proposed services, got %d", len(res.ProposedServices))
	}
}
