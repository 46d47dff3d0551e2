package agency

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stake-plus/spycat-agency/src/CatAPI/types"
)

// UpdateTarget applies a notes and/or completion change to a target, then
// completes the parent mission if every one of its targets is complete.
// Notes are locked once the target or its mission is complete; a patch that
// touches locked notes is rejected as a whole.
func (s *Service) UpdateTarget(ctx context.Context, id uint64, patch types.TargetUpdate) (*types.Target, error) {
	var (
		target    types.Target
		mission   types.Mission
		completed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&target, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Target not found")
		}
		if err != nil {
			return fmt.Errorf("get target %d: %w", id, err)
		}

		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&mission, target.MissionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Mission associated with this target not found")
		}
		if err != nil {
			return fmt.Errorf("get mission %d: %w", target.MissionID, err)
		}

		if patch.Notes != nil {
			if target.IsComplete || mission.IsComplete {
				return conflict("Cannot update notes: Target or Mission is completed.")
			}
			notes := *patch.Notes
			target.Notes = &notes
		}
		if patch.IsComplete != nil {
			target.IsComplete = *patch.IsComplete
		}

		if err := tx.Model(&target).Select("notes", "is_complete").Updates(&target).Error; err != nil {
			return fmt.Errorf("update target %d: %w", id, err)
		}

		var siblings []types.Target
		if err := tx.Where("mission_id = ?", mission.ID).Find(&siblings).Error; err != nil {
			return fmt.Errorf("load targets of mission %d: %w", mission.ID, err)
		}
		if mission.IsComplete || !allComplete(siblings) {
			return nil
		}
		if err := tx.Model(&mission).Update("is_complete", true).Error; err != nil {
			return fmt.Errorf("complete mission %d: %w", mission.ID, err)
		}
		mission.IsComplete = true
		completed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.logger(ctx).Info("mission completed", "mission_id", mission.ID)
		s.publish(ctx, EventMissionCompleted, mission.ID, mission.CatID)
	}
	return &target, nil
}

func allComplete(targets []types.Target) bool {
	if len(targets) == 0 {
		return false
	}
	for _, t := range targets {
		if !t.IsComplete {
			return false
		}
	}
	return true
}
