package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringList stores a list of strings as a JSON array so the same column
// works on PostgreSQL and SQLite.
type StringList []string

// Scan implements the sql.Scanner interface for reading from database
func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	if len(raw) == 0 {
		*a = StringList{}
		return nil
	}
	return json.Unmarshal(raw, a)
}

// Value implements the driver.Valuer interface for writing to database
func (a StringList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// CustomTopic is a user-defined topic shown next to the global topics.
type CustomTopic struct {
	ID    string `json:"id" bson:"id"`
	Label string `json:"label" bson:"label"`
	Emoji string `json:"emoji" bson:"emoji"`
}

// User is the local profile of an authenticated account. Accounts are issued
// elsewhere; a row is created the first time a token for the user is seen.
type User struct {
	ID           string        `gorm:"primaryKey;type:varchar(64)" json:"id" bson:"_id"`
	Username     string        `gorm:"not null;index" json:"username" bson:"username"`
	Topics       StringList    `gorm:"type:text" json:"topics" bson:"topics"`
	CustomTopics []CustomTopic `gorm:"type:text;serializer:json" json:"custom_topics" bson:"custom_topics"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// TableName overrides the default table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate fills in an id when the caller did not supply one
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
