package simulate

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/user/event-pipeline/internal/domain"
)

var testDay = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestBuilder(seed int64) *Builder {
	return NewBuilder(rand.New(rand.NewSource(seed)))
}

func assertCommonFields(t *testing.T, e domain.Event, wantName string) {
	t.Helper()
	if e.EventName != wantName {
		t.Errorf("event name: got %q, want %q", e.EventName, wantName)
	}
	if _, err := uuid.Parse(e.EventID); err != nil {
		t.Errorf("event id %q is not a UUID: %v", e.EventID, err)
	}
	if _, err := time.Parse(domain.TimeLayout, e.EventTime); err != nil {
		t.Errorf("event time %q does not match wire layout: %v", e.EventTime, err)
	}
	if e.UserID == nil || *e.UserID != 7 {
		t.Errorf("unexpected user id: %v", e.UserID)
	}
	if e.SessionID != "sess-7-2026-01-01-1" {
		t.Errorf("unexpected session id: %q", e.SessionID)
	}
	if e.Platform != domain.PlatformWeb {
		t.Errorf("unexpected platform: %q", e.Platform)
	}
	if e.SchemaVersion != domain.SchemaVersion {
		t.Errorf("schema version: got %d, want %d", e.SchemaVersion, domain.SchemaVersion)
	}
}

func TestBuilder_Signup(t *testing.T) {
	b := newTestBuilder(1)
	e := b.Signup(testDay, 7, "sess-7-2026-01-01-1", domain.PlatformWeb)
	assertCommonFields(t, e, domain.EventSignup)

	var props domain.SignupProperties
	if err := json.Unmarshal(e.Properties, &props); err != nil {
		t.Fatalf("unmarshal properties: %v", err)
	}
	switch props.Method {
	case "email", "google", "apple":
	default:
		t.Errorf("unexpected acquisition method %q", props.Method)
	}
}

func TestBuilder_Login(t *testing.T) {
	b := newTestBuilder(1)
	e := b.Login(testDay, 7, "sess-7-2026-01-01-1", domain.PlatformWeb)
	assertCommonFields(t, e, domain.EventLogin)

	var props domain.LoginProperties
	if err := json.Unmarshal(e.Properties, &props); err != nil {
		t.Fatalf("unmarshal properties: %v", err)
	}
	if !props.Success {
		t.Error("login success should always be true")
	}
}

func TestBuilder_FeatureUse(t *testing.T) {
	b := newTestBuilder(1)

	// Sample repeatedly so every feature shows up.
	for i := 0; i < 200; i++ {
		e := b.FeatureUse(testDay, 7, "sess-7-2026-01-01-1", domain.PlatformWeb)
		assertCommonFields(t, e, domain.EventFeatureUse)

		var props domain.FeatureUseProperties
		if err := json.Unmarshal(e.Properties, &props); err != nil {
			t.Fatalf("unmarshal properties: %v", err)
		}

		allowed, ok := featureActions[props.FeatureName]
		if !ok {
			t.Fatalf("unknown feature %q", props.FeatureName)
		}
		found := false
		for _, a := range allowed {
			if a == props.Action {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("action %q not allowed for feature %q", props.Action, props.FeatureName)
		}

		if props.DurationMS < 200 || props.DurationMS > 12000 {
			t.Errorf("duration %d out of [200, 12000]", props.DurationMS)
		}

		hasObject := props.FeatureName == "notes" || props.FeatureName == "profile"
		if hasObject && (props.ObjectType == "" || props.ObjectID == "") {
			t.Errorf("feature %q should carry an object reference, got %+v", props.FeatureName, props)
		}
		if !hasObject && (props.ObjectType != "" || props.ObjectID != "") {
			t.Errorf("feature %q should not carry an object reference, got %+v", props.FeatureName, props)
		}
	}
}

func TestBuilder_Purchase(t *testing.T) {
	b := newTestBuilder(1)
	for i := 0; i < 50; i++ {
		e := b.Purchase(testDay, 7, "sess-7-2026-01-01-1", domain.PlatformWeb)
		assertCommonFields(t, e, domain.EventPurchase)

		var props domain.PurchaseProperties
		if err := json.Unmarshal(e.Properties, &props); err != nil {
			t.Fatalf("unmarshal properties: %v", err)
		}
		switch props.Amount {
		case 9.99, 19.99, 29.99, 49.99:
		default:
			t.Errorf("amount %v not in the price list", props.Amount)
		}
		if props.Currency != "USD" {
			t.Errorf("currency: got %q, want USD", props.Currency)
		}
		switch props.Plan {
		case "basic", "pro", "team":
		default:
			t.Errorf("unexpected plan %q", props.Plan)
		}
	}
}

func TestBuilder_Logout(t *testing.T) {
	b := newTestBuilder(1)
	e := b.Logout(testDay, 7, "sess-7-2026-01-01-1", domain.PlatformWeb)
	assertCommonFields(t, e, domain.EventLogout)

	if string(e.Properties) != "{}" {
		t.Errorf("logout properties should be empty object, got %s", e.Properties)
	}
}

func TestBuilder_UniqueEventIDs(t *testing.T) {
	b := newTestBuilder(1)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		e := b.Login(testDay, 7, "sess-7-2026-01-01-1", domain.PlatformWeb)
		if _, dup := seen[e.EventID]; dup {
			t.Fatalf("duplicate event id %q after %d events", e.EventID, i)
		}
		seen[e.EventID] = struct{}{}
	}
}
