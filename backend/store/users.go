package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nikitalevshuk/university-tests/backend/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

// Create inserts user unless the same identity tuple is already taken.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.User{}).
			Where(identityQuery(user.Identity())).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}

		if user.CompletedTests == nil {
			user.CompletedTests = models.Completions{}
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
}

// FindByIdentity matches all five identity fields exactly.
func (s *UserStore) FindByIdentity(ctx context.Context, identity models.Identity) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where(identityQuery(identity)).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpdateCompletions reloads the user inside a transaction, lets fn edit
// its completions and saves them. Writes for one user are serialised: on
// postgres the row is locked FOR UPDATE, sqlite serialises writers itself.
// If fn returns an error nothing is written.
func (s *UserStore) UpdateCompletions(ctx context.Context, id uint, fn func(*models.User) error) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&user, id).Error; err != nil {
			return notFound(err)
		}

		if err := fn(&user); err != nil {
			return err
		}

		return tx.Model(&user).
			Select("CompletedTests").
			Updates(&models.User{CompletedTests: user.CompletedTests}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func identityQuery(identity models.Identity) map[string]any {
	return map[string]any{
		"first_name":  identity.FirstName,
		"last_name":   identity.LastName,
		"middle_name": identity.MiddleName,
		"faculty":     identity.Faculty,
		"course":      identity.Course,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
