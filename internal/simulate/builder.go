package simulate

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/user/event-pipeline/internal/domain"
)

var acquisitionMethods = []string{"email", "google", "apple"}

var plans = []string{"basic", "pro", "team"}

var prices = []float64{9.99, 19.99, 29.99, 49.99}

var features = []string{"search", "profile", "settings", "checkout", "notifications", "recommendations", "notes"}

// featureActions restricts each feature to the actions that make sense
// for it.
var featureActions = map[string][]string{
	"search":          {"view", "click"},
	"profile":         {"view", "update"},
	"settings":        {"view", "update"},
	"checkout":        {"view", "click", "refresh"},
	"notifications":   {"view", "refresh", "click", "delete"},
	"recommendations": {"view", "click"},
	"notes":           {"create", "update", "delete", "view"},
}

// Builder constructs well-formed events of each kind. Event IDs are
// UUIDs drawn from the seeded generator, so a fixed seed reproduces the
// exact same stream, IDs included.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder creates a Builder on top of the given generator.
func NewBuilder(rng *rand.Rand) *Builder {
	return &Builder{rng: rng}
}

func (b *Builder) newEventID() string {
	return uuid.Must(uuid.NewRandomFromReader(b.rng)).String()
}

func (b *Builder) build(name string, at time.Time, userID int64, sessionID, platform string, props domain.Properties) domain.Event {
	raw, err := json.Marshal(props)
	if err != nil {
		// Property variants are plain structs; this cannot fail.
		panic(fmt.Sprintf("marshal %s properties: %v", name, err))
	}
	uid := userID
	return domain.Event{
		EventID:       b.newEventID(),
		EventName:     name,
		EventTime:     at.UTC().Format(domain.TimeLayout),
		UserID:        &uid,
		SessionID:     sessionID,
		Platform:      platform,
		SchemaVersion: domain.SchemaVersion,
		Properties:    raw,
	}
}

// Signup builds a signup event with a random acquisition method.
func (b *Builder) Signup(at time.Time, userID int64, sessionID, platform string) domain.Event {
	props := domain.SignupProperties{
		Method: acquisitionMethods[b.rng.Intn(len(acquisitionMethods))],
	}
	return b.build(domain.EventSignup, at, userID, sessionID, platform, props)
}

// Login builds a login event. Failed logins are not modelled.
func (b *Builder) Login(at time.Time, userID int64, sessionID, platform string) domain.Event {
	return b.build(domain.EventLogin, at, userID, sessionID, platform, domain.LoginProperties{Success: true})
}

// FeatureUse builds a feature_use event: a random feature, an action
// allowed for that feature, and a duration in [200ms, 12s]. Features
// that operate on objects also carry a synthetic object reference.
func (b *Builder) FeatureUse(at time.Time, userID int64, sessionID, platform string) domain.Event {
	feature := features[b.rng.Intn(len(features))]
	actions := featureActions[feature]
	props := domain.FeatureUseProperties{
		FeatureName: feature,
		Action:      actions[b.rng.Intn(len(actions))],
		DurationMS:  200 + b.rng.Intn(12000-200+1),
	}
	if feature == "notes" || feature == "profile" {
		if feature == "notes" {
			props.ObjectType = "note"
		} else {
			props.ObjectType = "profile_item"
		}
		props.ObjectID = fmt.Sprintf("%s_%d", props.ObjectType, 1000+b.rng.Intn(9000))
	}
	return b.build(domain.EventFeatureUse, at, userID, sessionID, platform, props)
}

// Purchase builds a purchase event from the fixed price list.
func (b *Builder) Purchase(at time.Time, userID int64, sessionID, platform string) domain.Event {
	props := domain.PurchaseProperties{
		Amount:   prices[b.rng.Intn(len(prices))],
		Currency: "USD",
		Plan:     plans[b.rng.Intn(len(plans))],
	}
	return b.build(domain.EventPurchase, at, userID, sessionID, platform, props)
}

// Logout builds a logout event with empty properties.
func (b *Builder) Logout(at time.Time, userID int64, sessionID, platform string) domain.Event {
	return b.build(domain.EventLogout, at, userID, sessionID, platform, domain.LogoutProperties{})
}
