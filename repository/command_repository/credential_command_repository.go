package command_repository

import (
	"time"

	"attendance_ms/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ICredentialCommandRepository interface {
	Create(db *gorm.DB, cred *domain.Credential) (bool, error)
	AdvanceCounter(db *gorm.DB, id uint, from, to uint32, usedAt time.Time) (bool, error)
}

type CredentialCommandRepository struct{}

func NewCredentialCommandRepository() ICredentialCommandRepository {
	return &CredentialCommandRepository{}
}

// Create inserts cred and reports false when its credential id is already
// registered to anyone.
func (c *CredentialCommandRepository) Create(db *gorm.DB, cred *domain.Credential) (bool, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(cred)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AdvanceCounter moves the counter from one value to the next only if no
// other authentication has moved it in between.
func (c *CredentialCommandRepository) AdvanceCounter(db *gorm.DB, id uint, from, to uint32, usedAt time.Time) (bool, error) {
	res := db.Model(&domain.Credential{}).
		Where("id = ? AND counter = ?", id, from).
		Updates(map[string]interface{}{
			"counter":      to,
			"last_used_at": usedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
