package simulate

import (
	"fmt"
	"time"

	"github.com/user/event-pipeline/internal/domain"
)

// Platform weights: web is the dominant platform.
const (
	webWeight = 0.60
	iosWeight = 0.25
)

// SessionID derives the stable session identifier for a (user, day,
// session index) triple.
func SessionID(userID int64, dayStart time.Time, index int) string {
	return fmt.Sprintf("sess-%d-%s-%d", userID, dayStart.UTC().Format(domain.DateLayout), index)
}

// Day iterates the whole user population for one calendar day and
// returns the day's raw events sorted by event_time.
//
// signedUp is the cross-day signup state, owned by the caller and
// mutated here: once a user appears in it they never sign up again,
// regardless of how many more days are simulated.
func (s *Simulator) Day(dayStart time.Time, signedUp map[int64]struct{}) []domain.Event {
	var events []domain.Event

	for userID := int64(1); userID <= int64(s.cfg.NumUsers); userID++ {
		if s.rng.Float64() >= s.cfg.DailyActiveRate {
			continue
		}

		platform := s.pickPlatform()
		sessionsToday := s.intBetween(s.cfg.SessionsMin, s.cfg.SessionsMax)

		for idx := 1; idx <= sessionsToday; idx++ {
			sessionID := SessionID(userID, dayStart, idx)

			if _, ok := signedUp[userID]; !ok && s.rng.Float64() < s.cfg.SignupRate {
				events = append(events, s.builder.Signup(s.timeWithinDay(dayStart), userID, sessionID, platform))
				signedUp[userID] = struct{}{}
			}

			events = append(events, s.Session(dayStart, userID, sessionID, platform)...)
		}
	}

	sortByEventTime(events)
	return events
}

func (s *Simulator) pickPlatform() string {
	r := s.rng.Float64()
	switch {
	case r < webWeight:
		return domain.PlatformWeb
	case r < webWeight+iosWeight:
		return domain.PlatformIOS
	default:
		return domain.PlatformAndroid
	}
}
