package agency

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/stake-plus/spycat-agency/src/CatAPI/types"
)

func (s *Service) ListCats(ctx context.Context) ([]types.Cat, error) {
	cats := []types.Cat{}
	if err := s.db.WithContext(ctx).Order("id").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list cats: %w", err)
	}
	return cats, nil
}

func (s *Service) GetCat(ctx context.Context, id uint64) (*types.Cat, error) {
	var cat types.Cat
	err := s.db.WithContext(ctx).First(&cat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Cat not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get cat %d: %w", id, err)
	}
	return &cat, nil
}

// CreateCat validates the payload and stores a new cat. The breed is checked
// against the registry when one is configured; if the registry cannot be
// reached the cat is created anyway.
func (s *Service) CreateCat(ctx context.Context, in types.CatCreate) (*types.Cat, error) {
	name := strings.TrimSpace(in.Name)
	breed := strings.TrimSpace(in.Breed)
	switch {
	case name == "":
		return nil, invalid("Cat name is required.")
	case breed == "":
		return nil, invalid("Cat breed is required.")
	case in.YearsOfExperience == nil || *in.YearsOfExperience < 0:
		return nil, invalid("years_of_experience must be zero or more.")
	case in.Salary == nil || *in.Salary < 0:
		return nil, invalid("salary must be zero or more.")
	}

	if err := s.checkBreed(ctx, breed); err != nil {
		return nil, err
	}

	cat := types.Cat{
		Name:              name,
		YearsOfExperience: *in.YearsOfExperience,
		Breed:             breed,
		Salary:            *in.Salary,
	}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, fmt.Errorf("create cat: %w", err)
	}
	s.logger(ctx).Info("cat created", "cat_id", cat.ID, "breed", cat.Breed)
	return &cat, nil
}

func (s *Service) checkBreed(ctx context.Context, breed string) error {
	if s.breeds == nil {
		return nil
	}
	known, err := s.breeds.Check(ctx, breed)
	if err != nil {
		s.logger(ctx).Warn("breed registry unavailable, accepting breed", "breed", breed, "error", err)
		return nil
	}
	if !known {
		return invalid("Breed '%s' is invalid. Check TheCatAPI for valid breeds.", breed)
	}
	return nil
}

// DeleteCat removes the cat and detaches it from any missions that referenced it.
func (s *Service) DeleteCat(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cat, err := lockCat(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&types.Mission{}).Where("cat_id = ?", cat.ID).Update("cat_id", nil).Error; err != nil {
			return fmt.Errorf("detach cat %d: %w", cat.ID, err)
		}
		if err := tx.Delete(cat).Error; err != nil {
			return fmt.Errorf("delete cat %d: %w", cat.ID, err)
		}
		return nil
	})
}

// UpdateCatSalary changes the only mutable field of a cat.
func (s *Service) UpdateCatSalary(ctx context.Context, id uint64, salary float64) (*types.Cat, error) {
	if salary < 0 {
		return nil, invalid("salary must be zero or more.")
	}
	var cat *types.Cat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cat, err = lockCat(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(cat).Update("salary", salary).Error; err != nil {
			return fmt.Errorf("update salary of cat %d: %w", id, err)
		}
		cat.Salary = salary
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}
