package domain

// Properties is the per-kind event payload. Each event kind defines its
// own variant; the open key/value map only exists on the wire, where
// the variant is marshalled into Event.Properties at build time.
type Properties interface {
	// Kind returns the event name this payload belongs to.
	Kind() string
}

// SignupProperties records how the account was acquired.
type SignupProperties struct {
	Method string `json:"method"`
}

func (SignupProperties) Kind() string { return EventSignup }

// LoginProperties carries the login outcome. Failed logins are not
// modelled, so Success is always true in generated data.
type LoginProperties struct {
	Success bool `json:"success"`
}

func (LoginProperties) Kind() string { return EventLogin }

// FeatureUseProperties describes one interaction with a product
// feature. ObjectType/ObjectID are only present for features that
// operate on a concrete object (notes, profile).
type FeatureUseProperties struct {
	FeatureName string `json:"feature_name"`
	Action      string `json:"action"`
	DurationMS  int    `json:"duration_ms"`
	ObjectType  string `json:"object_type,omitempty"`
	ObjectID    string `json:"object_id,omitempty"`
}

func (FeatureUseProperties) Kind() string { return EventFeatureUse }

// PurchaseProperties records a plan purchase.
type PurchaseProperties struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Plan     string  `json:"plan"`
}

func (PurchaseProperties) Kind() string { return EventPurchase }

// LogoutProperties is intentionally empty; it marshals to "{}".
type LogoutProperties struct{}

func (LogoutProperties) Kind() string { return EventLogout }
