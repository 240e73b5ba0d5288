package inference

import "sort"

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type provider struct {
	name      string
	baseURL   string
	apiKeyEnv string
}

// Anthropic is reached through its OpenAI-compatible endpoint.
var providers = map[string]provider{
	ProviderOpenAI: {
		name:      ProviderOpenAI,
		apiKeyEnv: "OPENAI_API_KEY",
	},
	ProviderAnthropic: {
		name:      ProviderAnthropic,
		baseURL:   "https://api.anthropic.com/v1",
		apiKeyEnv: "ANTHROPIC_API_KEY",
	},
}

func KnownProvider(name string) bool {
	_, ok := providers[name]
	return ok
}

func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// APIKeyEnv names the environment variable holding the provider's credential.
func APIKeyEnv(name string) string {
	return providers[name].apiKeyEnv
}
