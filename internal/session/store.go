package session

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	keyRoomID     = "current_room_id"
	keyCredential = "access_token"
)

type entry struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

func (entry) TableName() string { return "session_entries" }

// Store is the single source of truth for "the room the user believes they
// are in" and for the access credential. One writer per client process;
// values survive restarts.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate session store: %w", err)
	}

	log.Printf("[SESSION] Store ready at %s", path)
	return &Store{db: db}, nil
}

func (s *Store) RoomID() (string, bool) {
	return s.get(keyRoomID)
}

func (s *Store) SetRoomID(id string) error {
	return s.set(keyRoomID, id)
}

func (s *Store) ClearRoomID() error {
	return s.clear(keyRoomID)
}

func (s *Store) Credential() (string, bool) {
	return s.get(keyCredential)
}

func (s *Store) SetCredential(token string) error {
	return s.set(keyCredential, token)
}

func (s *Store) ClearCredential() error {
	return s.clear(keyCredential)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) get(key string) (string, bool) {
	var e entry
	err := s.db.First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false
	}
	if err != nil {
		log.Printf("[SESSION] Read of %s failed: %v", key, err)
		return "", false
	}
	return e.Value, e.Value != ""
}

func (s *Store) set(key, value string) error {
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) clear(key string) error {
	if err := s.db.Delete(&entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}
