package auth

import (
	"github.com/EmpoweredVote/constituency-core/internal/utils"
	"gorm.io/gorm"
)

// SessionInfo reads sessions and roles from the account service's tables.
// It satisfies both middleware.SessionFetcher and middleware.RoleFetcher.
type SessionInfo struct {
	DB *gorm.DB
}

func (si SessionInfo) FindSessionByID(id string) (utils.SessionData, error) {
	var session Session

	err := si.DB.First(&session, "session_id = ?", id).Error
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (si SessionInfo) FindUserRole(userID string) (string, error) {
	var user User
	if err := si.DB.Select("user_id", "role").First(&user, "user_id = ?", userID).Error; err != nil {
		return "", err
	}
	return user.Role, nil
}
