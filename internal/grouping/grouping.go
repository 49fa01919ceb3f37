// Package grouping assigns trip members travelling together on a day to
// labeled transport groups.
package grouping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"trip-coordinator/internal/itinerary"
	"trip-coordinator/internal/transport"
)

// ErrInvalidPlan marks a regroup plan rejected by validation. Invalid
// plans are rejected before any destructive step runs.
var ErrInvalidPlan = errors.New("invalid regroup plan")

// ErrNoOwner is returned when a default group cannot be created because
// the trip has no member with the owner role.
var ErrNoOwner = errors.New("trip has no owner")

// Store is the persistence surface the grouping service consumes.
type Store interface {
	GroupsForDay(ctx context.Context, tripID, dayID string) ([]itinerary.TransportGroup, error)
	TripMembers(ctx context.Context, tripID string) ([]itinerary.TripMember, error)
	CreateGroupWithMembers(ctx context.Context, group itinerary.TransportGroup, memberIDs []string) error
	ReplaceDayGroups(ctx context.Context, tripID, dayID string, groups []itinerary.GroupWithMembers) error
}

type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now, newID: uuid.NewString}
}

// EnsureGroups creates the day's default transport group if the day has
// none: mode walk, leader = trip owner, every trip member attached.
// Idempotent; a day with at least one group is left untouched.
func (s *Service) EnsureGroups(ctx context.Context, tripID, dayID string) error {
	groups, err := s.store.GroupsForDay(ctx, tripID, dayID)
	if err != nil {
		return err
	}
	if len(groups) > 0 {
		return nil
	}

	members, err := s.store.TripMembers(ctx, tripID)
	if err != nil {
		return err
	}
	leaderID := ""
	for _, m := range members {
		if m.Role == itinerary.RoleOwner {
			leaderID = m.UserID
			break
		}
	}
	if leaderID == "" {
		return fmt.Errorf("%w: trip %s", ErrNoOwner, tripID)
	}

	group := itinerary.TransportGroup{
		ID:        s.newID(),
		TripID:    tripID,
		DayID:     dayID,
		Mode:      transport.ModeWalk,
		LeaderID:  leaderID,
		CreatedAt: s.now(),
	}
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}

	log.Debug().Str("trip", tripID).Str("day", dayID).Int("members", len(memberIDs)).
		Msg("creating default transport group")
	return s.store.CreateGroupWithMembers(ctx, group, memberIDs)
}

// Regroup replaces the day's grouping wholesale with the supplied plan.
// The whole plan is validated before the destructive membership delete;
// application is a single all-or-nothing step. Concurrent regroups of the
// same day race with last-write-wins semantics.
func (s *Service) Regroup(ctx context.Context, tripID, dayID string, plan []itinerary.GroupSpec) error {
	members, err := s.store.TripMembers(ctx, tripID)
	if err != nil {
		return err
	}
	if err := ValidatePlan(plan, members); err != nil {
		return err
	}

	now := s.now()
	groups := make([]itinerary.GroupWithMembers, 0, len(plan))
	for _, spec := range plan {
		mode, _ := transport.ParseMode(spec.Mode)
		groups = append(groups, itinerary.GroupWithMembers{
			Group: itinerary.TransportGroup{
				ID:        s.newID(),
				TripID:    tripID,
				DayID:     dayID,
				Mode:      mode,
				LeaderID:  spec.Leader,
				CreatedAt: now,
			},
			MemberIDs: spec.Members,
		})
	}

	log.Info().Str("trip", tripID).Str("day", dayID).Int("groups", len(groups)).
		Msg("regrouping transport for day")
	return s.store.ReplaceDayGroups(ctx, tripID, dayID, groups)
}

// ValidatePlan checks a regroup plan against the trip's membership: every
// mode must be known, every listed user a trip member, every leader listed
// among its own group's members, and no member may appear in two groups.
func ValidatePlan(plan []itinerary.GroupSpec, members []itinerary.TripMember) error {
	if len(plan) == 0 {
		return fmt.Errorf("%w: plan is empty", ErrInvalidPlan)
	}
	isMember := make(map[string]bool, len(members))
	for _, m := range members {
		isMember[m.UserID] = true
	}

	seen := make(map[string]bool)
	for i, spec := range plan {
		if _, ok := transport.ParseMode(spec.Mode); !ok {
			return fmt.Errorf("%w: group %d has unknown mode %q", ErrInvalidPlan, i, spec.Mode)
		}
		if len(spec.Members) == 0 {
			return fmt.Errorf("%w: group %d has no members", ErrInvalidPlan, i)
		}
		leaderListed := false
		for _, userID := range spec.Members {
			if !isMember[userID] {
				return fmt.Errorf("%w: user %s is not a trip member", ErrInvalidPlan, userID)
			}
			if seen[userID] {
				return fmt.Errorf("%w: user %s appears in more than one group", ErrInvalidPlan, userID)
			}
			seen[userID] = true
			if userID == spec.Leader {
				leaderListed = true
			}
		}
		if !leaderListed {
			return fmt.Errorf("%w: leader %s of group %d is not among its members", ErrInvalidPlan, spec.Leader, i)
		}
	}
	return nil
}
