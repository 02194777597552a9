package simulate

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/user/event-pipeline/internal/domain"
)

func newTestSimulator(seed int64, cfg Config) *Simulator {
	rng := rand.New(rand.NewSource(seed))
	return NewSimulator(rng, NewBuilder(rng), cfg)
}

func parseWireTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(domain.TimeLayout, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestSimulator_Session(t *testing.T) {
	t.Run("Well-Formed Sequence", func(t *testing.T) {
		sim := newTestSimulator(1, Config{FeatureEventsMin: 1, FeatureEventsMax: 8, PurchaseRate: 0})

		for i := 0; i < 100; i++ {
			events := sim.Session(testDay, 7, "sess-7-2026-01-01-1", domain.PlatformIOS)

			if events[0].EventName != domain.EventLogin {
				t.Fatalf("first event: got %q, want login", events[0].EventName)
			}
			if events[len(events)-1].EventName != domain.EventLogout {
				t.Fatalf("last event: got %q, want logout", events[len(events)-1].EventName)
			}

			featureCount := len(events) - 2
			if featureCount < 1 || featureCount > 8 {
				t.Fatalf("feature_use count %d out of configured range", featureCount)
			}

			prev := parseWireTime(t, events[0].EventTime)
			for _, e := range events[1:] {
				ts := parseWireTime(t, e.EventTime)
				if ts.Before(prev) {
					t.Fatalf("event time went backwards: %s before %s", e.EventTime, prev)
				}
				prev = ts
			}

			for _, e := range events {
				if e.SessionID != "sess-7-2026-01-01-1" {
					t.Fatalf("session id changed mid-session: %q", e.SessionID)
				}
				if e.Platform != domain.PlatformIOS {
					t.Fatalf("platform changed mid-session: %q", e.Platform)
				}
			}
		}
	})

	t.Run("Purchase Always", func(t *testing.T) {
		sim := newTestSimulator(2, Config{FeatureEventsMin: 1, FeatureEventsMax: 2, PurchaseRate: 1.0})

		events := sim.Session(testDay, 7, "sess-7-2026-01-01-1", domain.PlatformWeb)
		purchase := events[len(events)-2]
		if purchase.EventName != domain.EventPurchase {
			t.Errorf("expected purchase immediately before logout, got %q", purchase.EventName)
		}
	})

	t.Run("Purchase Never", func(t *testing.T) {
		sim := newTestSimulator(3, Config{FeatureEventsMin: 1, FeatureEventsMax: 2, PurchaseRate: 0})

		for i := 0; i < 50; i++ {
			for _, e := range sim.Session(testDay, 7, "sess-7-2026-01-01-1", domain.PlatformWeb) {
				if e.EventName == domain.EventPurchase {
					t.Fatal("purchase event with rate 0")
				}
			}
		}
	})
}

func TestSimulator_Day(t *testing.T) {
	baseCfg := Config{
		NumUsers:         20,
		SignupRate:       0.5,
		DailyActiveRate:  1.0,
		SessionsMin:      1,
		SessionsMax:      3,
		FeatureEventsMin: 1,
		FeatureEventsMax: 4,
		PurchaseRate:     0.1,
	}

	t.Run("Sorted By Event Time", func(t *testing.T) {
		sim := newTestSimulator(4, baseCfg)
		events := sim.Day(testDay, make(map[int64]struct{}))

		for i := 1; i < len(events); i++ {
			if events[i].EventTime < events[i-1].EventTime {
				t.Fatalf("day batch not sorted at index %d: %s < %s", i, events[i].EventTime, events[i-1].EventTime)
			}
		}
	})

	t.Run("Inactive Population", func(t *testing.T) {
		cfg := baseCfg
		cfg.DailyActiveRate = 0
		sim := newTestSimulator(5, cfg)

		if events := sim.Day(testDay, make(map[int64]struct{})); len(events) != 0 {
			t.Errorf("expected no events for inactive population, got %d", len(events))
		}
	})

	t.Run("Signup At Most Once Across Days", func(t *testing.T) {
		cfg := baseCfg
		cfg.SignupRate = 1.0
		sim := newTestSimulator(6, cfg)

		signedUp := make(map[int64]struct{})
		signupsPerUser := make(map[int64]int)
		for day := 0; day < 5; day++ {
			events := sim.Day(testDay.AddDate(0, 0, day), signedUp)
			for _, e := range events {
				if e.EventName == domain.EventSignup {
					signupsPerUser[*e.UserID]++
				}
			}
		}

		if len(signupsPerUser) == 0 {
			t.Fatal("expected at least one signup")
		}
		for userID, n := range signupsPerUser {
			if n > 1 {
				t.Errorf("user %d signed up %d times", userID, n)
			}
		}
	})

	t.Run("Closed Platform Set", func(t *testing.T) {
		sim := newTestSimulator(7, baseCfg)
		for _, e := range sim.Day(testDay, make(map[int64]struct{})) {
			if !domain.ValidPlatform(e.Platform) {
				t.Fatalf("platform %q outside closed set", e.Platform)
			}
		}
	})

	t.Run("Deterministic For Fixed Seed", func(t *testing.T) {
		first := newTestSimulator(42, baseCfg).Day(testDay, make(map[int64]struct{}))
		second := newTestSimulator(42, baseCfg).Day(testDay, make(map[int64]struct{}))

		if !reflect.DeepEqual(first, second) {
			t.Error("two runs with the same seed produced different batches")
		}
	})
}

func TestSessionID(t *testing.T) {
	got := SessionID(42, testDay, 3)
	want := "sess-42-2026-01-01-3"
	if got != want {
		t.Errorf("session id: got %q, want %q", got, want)
	}
}
