package simulate

import (
	"math/rand"
	"sort"
	"time"

	"github.com/user/event-pipeline/internal/domain"
)

// Config holds the behaviour knobs for one simulation run.
type Config struct {
	NumUsers         int
	SignupRate       float64
	DailyActiveRate  float64
	SessionsMin      int
	SessionsMax      int
	FeatureEventsMin int
	FeatureEventsMax int
	PurchaseRate     float64
}

// Simulator produces raw event streams for sessions and whole days.
// It is single-threaded: all randomness flows through one seeded
// generator so runs are reproducible.
type Simulator struct {
	rng     *rand.Rand
	builder *Builder
	cfg     Config
}

// NewSimulator creates a Simulator. The builder must share the same
// generator for the run to stay deterministic.
func NewSimulator(rng *rand.Rand, builder *Builder, cfg Config) *Simulator {
	return &Simulator{rng: rng, builder: builder, cfg: cfg}
}

// Session generates the ordered event sequence for one session:
// login, a run of feature uses, an optional purchase, then logout.
// The session clock only moves forward, so events come out in
// chronological order by construction.
func (s *Simulator) Session(dayStart time.Time, userID int64, sessionID, platform string) []domain.Event {
	var events []domain.Event

	t := s.timeWithinDay(dayStart)

	events = append(events, s.builder.Login(t, userID, sessionID, platform))
	t = t.Add(s.secondsBetween(5, 60))

	featureCount := s.intBetween(s.cfg.FeatureEventsMin, s.cfg.FeatureEventsMax)
	for i := 0; i < featureCount; i++ {
		events = append(events, s.builder.FeatureUse(t, userID, sessionID, platform))
		t = t.Add(s.secondsBetween(5, 180))
	}

	if s.rng.Float64() < s.cfg.PurchaseRate {
		events = append(events, s.builder.Purchase(t, userID, sessionID, platform))
		t = t.Add(s.secondsBetween(5, 60))
	}

	events = append(events, s.builder.Logout(t, userID, sessionID, platform))
	return events
}

func (s *Simulator) timeWithinDay(dayStart time.Time) time.Time {
	return dayStart.Add(time.Duration(s.rng.Intn(24*60*60)) * time.Second)
}

func (s *Simulator) secondsBetween(min, max int) time.Duration {
	return time.Duration(s.intBetween(min, max)) * time.Second
}

func (s *Simulator) intBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

// sortByEventTime stable-sorts events by their wire timestamp. The
// ISO-8601 layout makes lexicographic order chronological, and the
// stable sort keeps construction order on ties.
func sortByEventTime(events []domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventTime < events[j].EventTime
	})
}
