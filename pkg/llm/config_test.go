package llm

import "testing"

func TestNewProviderSelectsBackend(t *testing.T) {
	cases := []struct {
		provider string
		wantErr  bool
	}{
		{"openai", false},
		{"Anthropic", false},
		{"OLLAMA", false},
		{"", true},
		{"bedrock", true},
	}
	for _, tc := range cases {
		_, err := NewProvider(Config{Provider: tc.provider, Model: "m"})
		if tc.wantErr && err == nil {
			t.Fatalf("provider %q: expected error", tc.provider)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("provider %q: unexpected error %v", tc.provider, err)
		}
	}
}
