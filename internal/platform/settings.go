package platform

import (
	"fmt"

	"github.com/aretw0/scribe/internal/config"
	"github.com/aretw0/scribe/pkg/content"
)

// FromSettings translates loaded settings into options. Options passed to
// New after these take precedence.
func FromSettings(s config.Settings) ([]Option, error) {
	providers, err := BuildProviders(s.Content.Providers)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithMaxBackups(s.MaxBackups),
		WithCategoryRules(s.Categories...),
		WithContentEnabled(s.Content.Enabled),
		WithPreferredProvider(s.Content.Preferred),
		WithContentKinds(s.Content.Kinds...),
		WithContentMaxLength(s.Content.MaxLength),
		WithRetryPolicy(s.Content.Retry),
	}
	for _, p := range providers {
		opts = append(opts, WithProvider(p))
	}
	return opts, nil
}

// BuildProviders instantiates the declared providers in order.
func BuildProviders(specs []config.ProviderSettings) ([]content.Provider, error) {
	out := make([]content.Provider, 0, len(specs))
	for _, ps := range specs {
		switch ps.Type {
		case "", "mock":
			opts := []content.MockOption{content.WithResponses(ps.Responses)}
			if len(ps.Kinds) > 0 {
				opts = append(opts, content.WithKinds(ps.Kinds...))
			}
			if ps.Fail {
				opts = append(opts, content.WithFailure(nil))
			}
			if ps.Disabled {
				opts = append(opts, content.WithUnavailable())
			}
			out = append(out, content.NewMock(ps.Name, opts...))
		default:
			return nil, fmt.Errorf("provider %q: unsupported type %q", ps.Name, ps.Type)
		}
	}
	return out, nil
}
