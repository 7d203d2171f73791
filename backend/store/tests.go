package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nikitalevshuk/university-tests/backend/models"
)

type TestStore struct {
	DB *gorm.DB
}

func NewTestStore(db *gorm.DB) *TestStore {
	return &TestStore{DB: db}
}

func (s *TestStore) All(ctx context.Context) ([]models.Test, error) {
	var tests []models.Test
	if err := s.DB.WithContext(ctx).Order("id").Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (s *TestStore) Available(ctx context.Context) ([]models.Test, error) {
	var tests []models.Test
	err := s.DB.WithContext(ctx).
		Where("is_available = ?", true).
		Order("id").
		Find(&tests).Error
	if err != nil {
		return nil, err
	}
	return tests, nil
}

func (s *TestStore) FindByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := s.DB.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &test, nil
}

// FindAvailable is FindByID restricted to tests open for taking.
func (s *TestStore) FindAvailable(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	err := s.DB.WithContext(ctx).
		Where("is_available = ?", true).
		First(&test, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &test, nil
}

// Create registers filename in the catalog. Filenames are unique.
func (s *TestStore) Create(ctx context.Context, filename string, available bool) (*models.Test, error) {
	test := &models.Test{Filename: filename, IsAvailable: available}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Test
		err := tx.Where("filename = ?", filename).First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(test).Error
	})
	if err != nil {
		return nil, err
	}
	return test, nil
}

// SetAvailability opens or closes a test for taking.
func (s *TestStore) SetAvailability(ctx context.Context, id uint, available bool) (*models.Test, error) {
	test, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if available {
		test.Enable()
	} else {
		test.Disable()
	}
	err = s.DB.WithContext(ctx).
		Model(test).
		Update("is_available", test.IsAvailable).Error
	if err != nil {
		return nil, err
	}
	return test, nil
}
