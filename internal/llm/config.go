// Package llm provides the LLM client abstraction and the defensive
// response decoding used by augmentation and content validation.
package llm

// ModelTier represents the capability level used by a call site.
type ModelTier string

const (
	// TierLite serves cheap single-issue calls: individual augmentation
	// fallback and content validation.
	TierLite ModelTier = "lite"
	// TierStandard serves the consolidated batch augmentation calls.
	TierStandard ModelTier = "standard"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini Provider = "gemini"
)

// Config holds per-tier model selection and sampling temperature.
type Config struct {
	Provider     Provider
	Models       map[ModelTier]string
	Temperatures map[ModelTier]float32
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperatures: map[ModelTier]float32{
			TierLite:     0.1,
			TierStandard: 0.2,
		},
	}
}

// GetModel returns the model name for a tier, falling back to the lite
// model when a tier is unconfigured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// GetTemperature returns the sampling temperature for a tier.
func (c *Config) GetTemperature(tier ModelTier) float32 {
	if temp, ok := c.Temperatures[tier]; ok {
		return temp
	}
	return 0.1
}

// WithModel returns a copy of the config with one tier's model replaced.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{
		Provider:     c.Provider,
		Models:       make(map[ModelTier]string, len(c.Models)),
		Temperatures: make(map[ModelTier]float32, len(c.Temperatures)),
	}
	for k, v := range c.Models {
		out.Models[k] = v
	}
	for k, v := range c.Temperatures {
		out.Temperatures[k] = v
	}
	out.Models[tier] = model
	return out
}
