package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TokenRepository        *TokenRepository
	EventRepository        *EventRepository
	ParticipantRepository  *ParticipantRepository
	PostRepository         *PostRepository
	NotificationRepository *NotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		TokenRepository:        NewTokenRepository(db),
		EventRepository:        NewEventRepository(db),
		ParticipantRepository:  NewParticipantRepository(db),
		PostRepository:         NewPostRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
