package agency

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stake-plus/spycat-agency/src/CatAPI/types"
)

func preloadTargets(db *gorm.DB) *gorm.DB {
	return db.Preload("Targets", func(db *gorm.DB) *gorm.DB {
		return db.Order("targets.id")
	})
}

func (s *Service) ListMissions(ctx context.Context) ([]types.Mission, error) {
	missions := []types.Mission{}
	if err := preloadTargets(s.db.WithContext(ctx)).Order("id").Find(&missions).Error; err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	return missions, nil
}

func (s *Service) GetMission(ctx context.Context, id uint64) (*types.Mission, error) {
	return loadMission(s.db.WithContext(ctx), id)
}

func loadMission(db *gorm.DB, id uint64) (*types.Mission, error) {
	var mission types.Mission
	err := preloadTargets(db).First(&mission, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Mission not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get mission %d: %w", id, err)
	}
	if mission.Targets == nil {
		mission.Targets = []types.Target{}
	}
	return &mission, nil
}

// CreateMission stores a mission together with its targets. When a cat is
// given it must exist and have no incomplete mission.
func (s *Service) CreateMission(ctx context.Context, in types.MissionCreate) (*types.Mission, error) {
	if n := len(in.Targets); n < MinTargets || n > MaxTargets {
		return nil, invalid("Mission must have %d-%d targets.", MinTargets, MaxTargets)
	}

	catID := in.CatID
	if catID != nil && *catID == 0 {
		catID = nil
	}

	targets := make([]types.Target, 0, len(in.Targets))
	for i, t := range in.Targets {
		name, country := strings.TrimSpace(t.Name), strings.TrimSpace(t.Country)
		if name == "" || country == "" {
			return nil, invalid("Target %d requires a name and a country.", i+1)
		}
		targets = append(targets, types.Target{Name: name, Country: country, Notes: t.Notes})
	}

	var mission *types.Mission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if catID != nil {
			if _, err := lockCat(tx, *catID); err != nil {
				return err
			}
			if err := ensureCatAvailable(tx, *catID, 0); err != nil {
				return err
			}
		}

		m := types.Mission{CatID: catID, Targets: targets}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("create mission: %w", err)
		}

		var err error
		mission, err = loadMission(tx, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger(ctx).Info("mission created", "mission_id", mission.ID, "targets", len(mission.Targets))
	s.publish(ctx, EventMissionCreated, mission.ID, mission.CatID)
	return mission, nil
}

// AssignCat links a cat to a mission. Reassigning the cat already on this
// mission succeeds without change; only other incomplete missions block it.
func (s *Service) AssignCat(ctx context.Context, missionID, catID uint64) (*types.Mission, error) {
	var (
		mission *types.Mission
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m types.Mission
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, missionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Mission not found")
		}
		if err != nil {
			return fmt.Errorf("get mission %d: %w", missionID, err)
		}

		if _, err := lockCat(tx, catID); err != nil {
			return err
		}
		if err := ensureCatAvailable(tx, catID, m.ID); err != nil {
			return err
		}

		if m.CatID == nil || *m.CatID != catID {
			if err := tx.Model(&m).Update("cat_id", catID).Error; err != nil {
				return fmt.Errorf("assign cat %d to mission %d: %w", catID, m.ID, err)
			}
			changed = true
		}

		mission, err = loadMission(tx, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger(ctx).Info("cat assigned", "mission_id", mission.ID, "cat_id", catID)
		s.publish(ctx, EventMissionAssigned, mission.ID, mission.CatID)
	}
	return mission, nil
}

// DeleteMission removes an unassigned mission and its targets.
func (s *Service) DeleteMission(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m types.Mission
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Mission not found")
		}
		if err != nil {
			return fmt.Errorf("get mission %d: %w", id, err)
		}
		if m.CatID != nil {
			return conflict("Cannot delete mission assigned to a cat.")
		}

		if err := tx.Where("mission_id = ?", m.ID).Delete(&types.Target{}).Error; err != nil {
			return fmt.Errorf("delete targets of mission %d: %w", m.ID, err)
		}
		if err := tx.Delete(&m).Error; err != nil {
			return fmt.Errorf("delete mission %d: %w", m.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, EventMissionDeleted, id, nil)
	return nil
}
