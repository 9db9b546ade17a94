package facebook

//go:generate go run go.uber.org/mock/mockgen -source=./facebook.go -destination=./mocks/facebook_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tablebook/config"
	"tablebook/infras/otel"
	"tablebook/shared/constant"

	"golang.org/x/oauth2"
	oauthFacebook "golang.org/x/oauth2/facebook"
)

const profileURL = "https://graph.facebook.com/v19.0/me?fields=id,name"

var ErrNotConfigured = errors.New("facebook login is not configured")

type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Provider interface {
	AuthCodeURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (Profile, error)
}

type provider struct {
	oauth      *oauth2.Config
	profileURL string
	otel       otel.Otel
}

func New(cfg *config.Config, otl otel.Otel) Provider {
	fb := cfg.OAuth.Facebook

	return &provider{
		oauth: &oauth2.Config{
			ClientID:     fb.ClientID,
			ClientSecret: fb.ClientSecret,
			RedirectURL:  fb.RedirectURL,
			Endpoint:     oauthFacebook.Endpoint,
			Scopes:       []string{"public_profile"},
		},
		profileURL: profileURL,
		otel:       otl,
	}
}

// NewWithEndpoint points the provider at another OAuth server and profile URL.
func NewWithEndpoint(oauth *oauth2.Config, profileURL string, otl otel.Otel) Provider {
	return &provider{oauth: oauth, profileURL: profileURL, otel: otl}
}

func (p *provider) configured() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != ""
}

func (p *provider) AuthCodeURL(state string) (string, error) {
	if !p.configured() {
		return "", ErrNotConfigured
	}

	return p.oauth.AuthCodeURL(state), nil
}

func (p *provider) Exchange(ctx context.Context, code string) (profile Profile, err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".facebook.Exchange")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !p.configured() {
		return profile, ErrNotConfigured
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return profile, fmt.Errorf("failed to exchange facebook code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return profile, fmt.Errorf("failed to build facebook profile request: %w", err)
	}

	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return profile, fmt.Errorf("failed to fetch facebook profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return profile, fmt.Errorf("facebook profile returned status %d", resp.StatusCode)
	}

	if err = json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return profile, fmt.Errorf("failed to decode facebook profile: %w", err)
	}

	if profile.ID == "" {
		return profile, errors.New("facebook profile has no id")
	}

	return profile, nil
}
