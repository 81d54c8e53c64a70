package domain

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// TokenIssuerType selects the OAuth2 client model of a flow
type TokenIssuerType string

const (
	// IssuerTypePKCE is a public client flow; no client secret involved.
	IssuerTypePKCE TokenIssuerType = "pkce"

	// IssuerTypeStandard is a confidential client flow; requires a client secret.
	IssuerTypeStandard TokenIssuerType = "standard"
)

// IsValid returns true if this is a known issuer type
func (t TokenIssuerType) IsValid() bool {
	switch t {
	case IssuerTypePKCE, IssuerTypeStandard:
		return true
	default:
		return false
	}
}

// Defaults applied when a creation spec leaves the field empty.
const (
	DefaultIdentityProvider = "Google"
	DefaultResponseType     = "code"
	DefaultScope            = "openid email profile"
	DefaultTimeoutSeconds   = 60
)

// AuthFlow is one configured version of a browser-automation-driven
// OAuth2/OIDC login. Rows sharing a name are alternate versions of the same
// flow, told apart by IsActive and creation time; the name is a grouping key,
// not unique.
type AuthFlow struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	IsActive  bool       `json:"is_active"`

	// Issuer basics
	Name             string          `json:"name"`
	IssuerType       TokenIssuerType `json:"issuer_type"`
	IdentityProvider string          `json:"identity_provider"`
	ResponseType     string          `json:"response_type"`
	Scope            string          `json:"scope"`

	// OIDC client config
	ClientID     string `json:"client_id"`
	RedirectURI  string `json:"redirect_uri"`
	AuthorizeURL string `json:"authorize_url"`
	TokenURL     string `json:"token_url"`
	ClientSecret Secret `json:"-"` // Never serialize

	// Impersonation / flow
	IDPPrefix string `json:"idp_prefix"`
	Timeout   int    `json:"timeout"` // seconds

	// CDP / Browserless endpoints
	CDPEndpoint        string            `json:"cdp_endpoint"` // ws:// or wss://
	CDPHeaders         map[string]string `json:"cdp_headers,omitempty"`
	CDPGUIBaseURL      string            `json:"cdp_gui_base_url,omitempty"`
	BrowserlessBaseURL string            `json:"browserless_base_url"`
}

// AuthFlowSpec carries every field needed to construct an AuthFlow. All
// call sites name their fields through the struct literal, so two string
// fields can never be transposed silently. Empty optional fields fall back
// to the documented defaults.
type AuthFlowSpec struct {
	Name             string
	IssuerType       TokenIssuerType
	IdentityProvider string
	ResponseType     string
	Scope            string

	ClientID     string
	RedirectURI  string
	AuthorizeURL string
	TokenURL     string
	ClientSecret Secret // STANDARD (confidential) clients only

	IDPPrefix string
	Timeout   int

	CDPEndpoint        string
	CDPHeaders         map[string]string
	CDPGUIBaseURL      string
	BrowserlessBaseURL string

	CreatedBy *uuid.UUID
	Active    Optional[bool] // defaults to true
}

// NewAuthFlow builds a validated AuthFlow from spec, applying defaults to
// empty optional fields. Identity and timestamps stay zero until the store
// stages the row. Returns a *ValidationError when any field is rejected.
func NewAuthFlow(spec AuthFlowSpec) (*AuthFlow, error) {
	flow := &AuthFlow{
		CreatedBy:          spec.CreatedBy,
		IsActive:           true,
		Name:               spec.Name,
		IssuerType:         spec.IssuerType,
		IdentityProvider:   spec.IdentityProvider,
		ResponseType:       spec.ResponseType,
		Scope:              spec.Scope,
		ClientID:           spec.ClientID,
		RedirectURI:        spec.RedirectURI,
		AuthorizeURL:       spec.AuthorizeURL,
		TokenURL:           spec.TokenURL,
		ClientSecret:       spec.ClientSecret,
		IDPPrefix:          spec.IDPPrefix,
		Timeout:            spec.Timeout,
		CDPEndpoint:        spec.CDPEndpoint,
		CDPHeaders:         spec.CDPHeaders,
		CDPGUIBaseURL:      spec.CDPGUIBaseURL,
		BrowserlessBaseURL: spec.BrowserlessBaseURL,
	}

	if flow.IssuerType == "" {
		flow.IssuerType = IssuerTypePKCE
	}
	if flow.IdentityProvider == "" {
		flow.IdentityProvider = DefaultIdentityProvider
	}
	if flow.ResponseType == "" {
		flow.ResponseType = DefaultResponseType
	}
	if flow.Scope == "" {
		flow.Scope = DefaultScope
	}
	if flow.Timeout == 0 {
		flow.Timeout = DefaultTimeoutSeconds
	}
	if active, ok := spec.Active.Get(); ok {
		flow.IsActive = active
	}

	if err := flow.Validate(); err != nil {
		return nil, err
	}
	return flow, nil
}

// Validate checks every field-level rule. It runs on every construction and
// update path, before any persistence interaction.
func (f *AuthFlow) Validate() error {
	if f.Name == "" {
		return &ValidationError{Field: "name", Message: "name must not be empty"}
	}
	if !f.IssuerType.IsValid() {
		return &ValidationError{
			Field:   "issuer_type",
			Message: fmt.Sprintf("unknown issuer_type %q", f.IssuerType),
		}
	}
	if f.ClientID == "" {
		return &ValidationError{Field: "client_id", Message: "client_id must not be empty"}
	}

	if err := validateURL("redirect_uri", f.RedirectURI, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("authorize_url", f.AuthorizeURL, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("token_url", f.TokenURL, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("idp_prefix", f.IDPPrefix, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("cdp_endpoint", f.CDPEndpoint, "ws", "wss"); err != nil {
		return err
	}
	if f.CDPGUIBaseURL != "" {
		if err := validateURL("cdp_gui_base_url", f.CDPGUIBaseURL, "http", "https"); err != nil {
			return err
		}
	}
	if err := validateURL("browserless_base_url", f.BrowserlessBaseURL, "http", "https"); err != nil {
		return err
	}

	if f.IssuerType == IssuerTypeStandard && !f.ClientSecret.IsSet() {
		return &ValidationError{
			Field:   "client_secret",
			Message: "client_secret is required when issuer_type is STANDARD",
		}
	}
	return nil
}

// validateURL rejects empty, unparsable, hostless or wrongly-schemed values.
func validateURL(field, raw string, schemes ...string) error {
	if raw == "" {
		return &ValidationError{Field: field, Message: field + " must not be empty"}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !schemeAllowed(u.Scheme, schemes) {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a valid %s URL", field, schemeList(schemes)),
		}
	}
	return nil
}

func schemeAllowed(scheme string, allowed []string) bool {
	for _, s := range allowed {
		if scheme == s {
			return true
		}
	}
	return false
}

func schemeList(schemes []string) string {
	out := ""
	for i, s := range schemes {
		if i > 0 {
			out += "/"
		}
		out += s
	}
	return out
}

// AuthFlowUpdate describes a partial update. Absent fields are left
// unchanged; a present field overwrites the attribute, including clearing
// the optional ClientSecret, CDPHeaders and CDPGUIBaseURL by setting their
// empty value. Identity, timestamps and CreatedBy are immutable.
type AuthFlowUpdate struct {
	Name             Optional[string]
	IssuerType       Optional[TokenIssuerType]
	IdentityProvider Optional[string]
	ResponseType     Optional[string]
	Scope            Optional[string]

	ClientID     Optional[string]
	RedirectURI  Optional[string]
	AuthorizeURL Optional[string]
	TokenURL     Optional[string]
	ClientSecret Optional[Secret] // Set("") clears

	IDPPrefix Optional[string]
	Timeout   Optional[int]

	CDPEndpoint        Optional[string]
	CDPHeaders         Optional[map[string]string] // Set(nil) clears
	CDPGUIBaseURL      Optional[string]            // Set("") clears
	BrowserlessBaseURL Optional[string]

	Active Optional[bool]
}

// Apply overwrites f's attributes with the update's present fields and
// re-validates the result. Callers that must keep f pristine on failure
// should apply to a copy.
func (f *AuthFlow) Apply(u AuthFlowUpdate) error {
	if v, ok := u.Name.Get(); ok {
		f.Name = v
	}
	if v, ok := u.IssuerType.Get(); ok {
		f.IssuerType = v
	}
	if v, ok := u.IdentityProvider.Get(); ok {
		f.IdentityProvider = v
	}
	if v, ok := u.ResponseType.Get(); ok {
		f.ResponseType = v
	}
	if v, ok := u.Scope.Get(); ok {
		f.Scope = v
	}
	if v, ok := u.ClientID.Get(); ok {
		f.ClientID = v
	}
	if v, ok := u.RedirectURI.Get(); ok {
		f.RedirectURI = v
	}
	if v, ok := u.AuthorizeURL.Get(); ok {
		f.AuthorizeURL = v
	}
	if v, ok := u.TokenURL.Get(); ok {
		f.TokenURL = v
	}
	if v, ok := u.ClientSecret.Get(); ok {
		f.ClientSecret = v
	}
	if v, ok := u.IDPPrefix.Get(); ok {
		f.IDPPrefix = v
	}
	if v, ok := u.Timeout.Get(); ok {
		f.Timeout = v
	}
	if v, ok := u.CDPEndpoint.Get(); ok {
		f.CDPEndpoint = v
	}
	if v, ok := u.CDPHeaders.Get(); ok {
		f.CDPHeaders = v
	}
	if v, ok := u.CDPGUIBaseURL.Get(); ok {
		f.CDPGUIBaseURL = v
	}
	if v, ok := u.BrowserlessBaseURL.Get(); ok {
		f.BrowserlessBaseURL = v
	}
	if v, ok := u.Active.Get(); ok {
		f.IsActive = v
	}
	return f.Validate()
}

// AuthFlowSummary provides a safe view without sensitive data
type AuthFlowSummary struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	IssuerType       TokenIssuerType `json:"issuer_type"`
	IdentityProvider string          `json:"identity_provider"`
	IsActive         bool            `json:"is_active"`
	HasClientSecret  bool            `json:"has_client_secret"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToSummary converts an AuthFlow to an AuthFlowSummary
func (f *AuthFlow) ToSummary() *AuthFlowSummary {
	return &AuthFlowSummary{
		ID:               f.ID,
		Name:             f.Name,
		IssuerType:       f.IssuerType,
		IdentityProvider: f.IdentityProvider,
		IsActive:         f.IsActive,
		HasClientSecret:  f.ClientSecret.IsSet(),
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}
