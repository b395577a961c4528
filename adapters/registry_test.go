package adapters

import (
	"log/slog"
	"testing"
)

func TestRegistryCoversRoster(t *testing.T) {
	r := NewRegistry(NewClient(slog.Default()))

	for _, company := range []string{
		"Anthropic", "OpenAI", "Jane Street", "Amazon",
		"DeepMind", "xAI", "Figure AI", "Together AI",
		"Mistral", "Cohere", "Perplexity",
	} {
		if !r.Has(company) {
			t.Errorf("no adapter registered for %q", company)
		}
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := NewRegistry(NewClient(slog.Default()))
	if _, ok := r.Lookup("Initech"); ok {
		t.Error("Lookup returned an adapter for an unknown company")
	}
}

func TestRegistryCompaniesSorted(t *testing.T) {
	r := NewRegistry(NewClient(slog.Default()))
	names := r.Companies()
	if len(names) == 0 {
		t.Fatal("Companies returned nothing")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
