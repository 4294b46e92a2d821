package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/realtime-chat/domain/chat"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a referenced user or room does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidKind is returned when a message kind is outside the known set.
var ErrInvalidKind = errors.New("invalid message kind")

// Repository provides access to chat storage. It is a pure data-access
// boundary: no business logic beyond existence checks.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new chat repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByID retrieves a user by primary key.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*chat.User, error) {
	var user chat.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by unique username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*chat.User, error) {
	var user chat.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// ListUsers retrieves all users.
func (r *Repository) ListUsers(ctx context.Context) ([]*chat.User, error) {
	var users []*chat.User
	if err := r.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetOrCreateRoom returns the room with the given name, creating it if
// absent. The insert uses ON CONFLICT DO NOTHING against the unique name
// index, so concurrent first creators converge on a single row: one insert
// wins and every caller fetches the same record.
func (r *Repository) GetOrCreateRoom(ctx context.Context, name string) (*chat.ChatRoom, error) {
	room := chat.ChatRoom{Name: name}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&room).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	// The conflict path leaves room.ID unset; fetch the winning row either way.
	var existing chat.ChatRoom
	if err := r.db.WithContext(ctx).First(&existing, "name = ?", name).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	return &existing, nil
}

// GetRoomByName retrieves a room without creating it.
func (r *Repository) GetRoomByName(ctx context.Context, name string) (*chat.ChatRoom, error) {
	var room chat.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}

// ListRooms retrieves all rooms.
func (r *Repository) ListRooms(ctx context.Context) ([]*chat.ChatRoom, error) {
	var rooms []*chat.ChatRoom
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// CreateMessage persists a message authored by user in room. An empty kind
// defaults to text; an unknown kind is rejected. Empty text is accepted.
func (r *Repository) CreateMessage(ctx context.Context, room *chat.ChatRoom, user *chat.User, text, kind string) (*chat.Message, error) {
	if kind == "" {
		kind = chat.KindText
	}
	if !chat.ValidKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	msg := chat.Message{
		ChatRoomID:  room.ID,
		UserID:      user.ID,
		Text:        text,
		MessageType: kind,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	msg.User = *user
	return &msg, nil
}

// RoomMessages retrieves a room's messages in creation order with authors
// preloaded. A missing room yields an empty slice, not an error.
func (r *Repository) RoomMessages(ctx context.Context, roomName string) ([]*chat.Message, error) {
	room, err := r.GetRoomByName(ctx, roomName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []*chat.Message{}, nil
		}
		return nil, err
	}

	var messages []*chat.Message
	err = r.db.WithContext(ctx).
		Preload("User").
		Where("chat_room_id = ?", room.ID).
		Order("created_at").
		Order("id").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// SetUserOnline flips a user's durable online flag. Last writer wins.
func (r *Repository) SetUserOnline(ctx context.Context, userID uint, online bool) error {
	result := r.db.WithContext(ctx).
		Model(&chat.User{}).
		Where("id = ?", userID).
		Update("is_online", online)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update online flag: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRoom removes a room and all of its messages. The cascade is a store
// concern: the delete runs in one transaction so a room never outlives its
// messages or vice versa.
func (r *Repository) DeleteRoom(ctx context.Context, roomID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_room_id = ?", roomID).Delete(&chat.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete room messages: %w", err)
		}
		result := tx.Delete(&chat.ChatRoom{}, "id = ?", roomID)
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateUser inserts a user row. The account system owns user creation; this
// exists for seeding and tests.
func (r *Repository) CreateUser(ctx context.Context, user *chat.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
