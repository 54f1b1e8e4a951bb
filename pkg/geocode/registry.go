package geocode

import (
	"net/http"
	"sort"
	"strings"

	"github.com/sells-group/gisco-cli/internal/geoerr"
	"github.com/sells-group/gisco-cli/pkg/gisco"
)

// Credential kinds a provider may require.
const (
	CredentialNone     = ""
	CredentialKey      = "key"
	CredentialUsername = "username"
)

// Settings carries everything a provider constructor may need.
type Settings struct {
	Key        string
	Username   string
	BaseURL    string
	UserAgent  string
	Email      string
	RateLimit  float64
	HTTPClient *http.Client
	GISCO      *gisco.Client
}

// Factory builds a provider from settings that already passed the credential check.
type Factory func(s Settings) Provider

// ProviderInfo describes a registered provider.
type ProviderInfo struct {
	Name       string `json:"name" yaml:"name"`
	Credential string `json:"credential,omitempty" yaml:"credential,omitempty"`
}

type registration struct {
	credential string
	factory    Factory
}

// Registry maps provider names to constructors.
type Registry struct {
	entries map[string]registration
	aliases map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]registration),
		aliases: make(map[string]string),
	}
}

// DefaultRegistry returns a registry with every built-in provider.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("gisco", CredentialNone, func(s Settings) Provider {
		c := s.GISCO
		if c == nil {
			opts := []gisco.Option{gisco.WithHTTPClient(httpClientOrDefault(s.HTTPClient))}
			if s.BaseURL != "" {
				opts = append(opts, gisco.WithBaseURL(s.BaseURL))
			}
			if s.UserAgent != "" {
				opts = append(opts, gisco.WithUserAgent(s.UserAgent))
			}
			c = gisco.New(opts...)
		}
		return NewGISCOProvider(c, gisco.GeocodeOptions{}, gisco.ReverseOptions{})
	})
	r.Register("osm", CredentialNone, func(s Settings) Provider {
		return NewNominatimProvider(s.HTTPClient, s.UserAgent,
			WithNominatimBaseURL(s.BaseURL), WithNominatimEmail(s.Email))
	})
	r.Alias("nominatim", "osm")
	r.Register("google", CredentialKey, func(s Settings) Provider {
		return NewGoogleProvider(s.HTTPClient, s.Key, s.RateLimit)
	})
	r.Alias("gmaps", "google")
	r.Register("geonames", CredentialUsername, func(s Settings) Provider {
		return NewGeoNamesProvider(s.HTTPClient, s.Username, s.BaseURL)
	})
	r.Register("bing", CredentialKey, func(s Settings) Provider {
		return NewBingProvider(s.Key, baseURLs(s.BaseURL)...)
	})
	r.Register("opencage", CredentialKey, func(s Settings) Provider {
		return NewOpenCageProvider(s.Key, baseURLs(s.BaseURL)...)
	})
	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(name, credential string, f Factory) {
	r.entries[strings.ToLower(name)] = registration{credential: credential, factory: f}
}

// Alias makes alias resolve to an already registered provider.
func (r *Registry) Alias(alias, name string) {
	r.aliases[strings.ToLower(alias)] = strings.ToLower(name)
}

// New builds the named provider. Unknown names are invalid arguments;
// missing credentials make the provider unavailable.
func (r *Registry) New(name string, s Settings) (Provider, error) {
	key := r.canonical(name)
	reg, ok := r.entries[key]
	if !ok {
		return nil, geoerr.InvalidArgument("geocode: unknown provider %q (known: %s)", name, strings.Join(r.Names(), ", "))
	}
	switch reg.credential {
	case CredentialKey:
		if s.Key == "" {
			return nil, geoerr.Unavailable("geocode: provider %s requires an api key", key)
		}
	case CredentialUsername:
		if s.Username == "" {
			return nil, geoerr.Unavailable("geocode: provider %s requires a username", key)
		}
	}
	return reg.factory(s), nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe lists the registered providers and their credential requirement.
func (r *Registry) Describe() []ProviderInfo {
	names := r.Names()
	out := make([]ProviderInfo, len(names))
	for i, n := range names {
		out[i] = ProviderInfo{Name: n, Credential: r.entries[n].credential}
	}
	return out
}

func (r *Registry) canonical(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if target, ok := r.aliases[key]; ok {
		return target
	}
	return key
}

func baseURLs(u string) []string {
	if u == "" {
		return nil
	}
	return []string{u}
}

func httpClientOrDefault(hc *http.Client) *http.Client {
	if hc == nil {
		return &http.Client{Timeout: defaultTimeout}
	}
	return hc
}
