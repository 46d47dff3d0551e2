// Package agency enforces the spy cat agency's rules: cat lifecycle, missions
// with one to three targets, one active mission per cat, locked notes and
// automatic mission completion. Each exported operation runs in a single
// database transaction.
package agency

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stake-plus/spycat-agency/src/CatAPI/types"
	"github.com/stake-plus/spycat-agency/src/logging"
)

const (
	MinTargets = 1
	MaxTargets = 3
)

// BreedChecker reports whether a breed name is known to the breed registry.
// A non-nil error means the registry could not answer.
type BreedChecker interface {
	Check(ctx context.Context, breed string) (known bool, err error)
}

// Mission lifecycle event types.
const (
	EventMissionCreated   = "mission.created"
	EventMissionAssigned  = "mission.assigned"
	EventMissionCompleted = "mission.completed"
	EventMissionDeleted   = "mission.deleted"
)

// Event describes a committed mission state change.
type Event struct {
	Type      string
	MissionID uint64
	CatID     *uint64
	At        time.Time
}

// EventPublisher receives events after the owning transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Service struct {
	db     *gorm.DB
	breeds BreedChecker
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewService wires the service. breeds and events may be nil.
func NewService(db *gorm.DB, breeds BreedChecker, events EventPublisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, breeds: breeds, events: events, log: log, now: time.Now}
}

func (s *Service) logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.log)
}

func (s *Service) publish(ctx context.Context, typ string, missionID uint64, catID *uint64) {
	if s.events == nil {
		return
	}
	ev := Event{Type: typ, MissionID: missionID, CatID: catID, At: s.now().UTC()}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger(ctx).Warn("publish event failed", "type", typ, "mission_id", missionID, "error", err)
	}
}

// lockCat loads the cat row for update so concurrent assignments of the same
// cat serialize on it.
func lockCat(tx *gorm.DB, id uint64) (*types.Cat, error) {
	var cat types.Cat
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Cat not found")
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// ensureCatAvailable fails with Conflict when the cat is on an incomplete
// mission other than exceptMission.
func ensureCatAvailable(tx *gorm.DB, catID, exceptMission uint64) error {
	var active types.Mission
	err := tx.Where("cat_id = ? AND is_complete = ? AND id <> ?", catID, false, exceptMission).
		Order("id").
		First(&active).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return conflict("Cat %d is already assigned to active mission %d.", catID, active.ID)
}
