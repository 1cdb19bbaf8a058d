package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return marshalColumn(a)
}

// Scan implements the sql.Scanner interface for database deserialization.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	return unmarshalColumn(value, a)
}

// Characteristics describes a media item that satisfied a prompt.
type Characteristics struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Quality  string  `json:"quality,omitempty"`
	Rating   int     `json:"rating,omitempty"`
}

// CharacteristicList stores characteristics as a JSON column.
type CharacteristicList []Characteristics

// Value implements the driver.Valuer interface for database serialization.
func (l CharacteristicList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return marshalColumn(l)
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *CharacteristicList) Scan(value interface{}) error {
	if value == nil {
		*l = CharacteristicList{}
		return nil
	}
	return unmarshalColumn(value, l)
}

func marshalColumn(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalColumn(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported JSON column type")
	}
}

// PromptPattern aggregates outcomes for every prompt sharing a pattern key.
// Count only grows; patterns are never deleted.
type PromptPattern struct {
	Key                  string             `gorm:"column:pattern_key;type:text;primaryKey" json:"key"`
	SceneType            string             `gorm:"type:text;index" json:"scene_type"`
	Count                int                `json:"count"`
	SuccessCount         int                `json:"success_count"`
	SuccessfulQueries    StringArray        `gorm:"type:text" json:"successful_queries"`
	Examples             StringArray        `gorm:"type:text" json:"examples"`
	VideoCharacteristics CharacteristicList `gorm:"type:text" json:"video_characteristics"`
	FailedQueries        StringArray        `gorm:"type:text" json:"failed_queries"`
	Suggestions          StringArray        `gorm:"type:text" json:"suggestions"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// TableName returns the database table name for PromptPattern.
func (PromptPattern) TableName() string {
	return "prompt_patterns"
}

// FeedbackRecord is one completed search attempt.
type FeedbackRecord struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	Prompt      string    `gorm:"type:text" json:"prompt"`
	Query       string    `gorm:"type:text" json:"query"`
	Kind        MediaKind `gorm:"type:text" json:"kind"`
	PatternKey  string    `gorm:"type:text;index" json:"pattern_key"`
	SceneType   string    `gorm:"type:text" json:"scene_type"`
	Requested   int       `json:"requested"`
	ResultCount int       `json:"result_count"`
	Success     bool      `json:"success"`
	// Seq is the record's position in the document; stores order by it.
	Seq int64 `gorm:"index" json:"-"`
}

// TableName returns the database table name for FeedbackRecord.
func (FeedbackRecord) TableName() string {
	return "learning_sessions"
}

// UserFeedback is an explicit 1-5 rating of a generated result.
type UserFeedback struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	Prompt     string    `gorm:"type:text" json:"prompt"`
	Query      string    `gorm:"type:text" json:"query"`
	PatternKey string    `gorm:"type:text;index" json:"pattern_key"`
	Rating     int       `json:"rating"`
	Duration   float64   `json:"duration"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Quality    string    `gorm:"type:text" json:"quality,omitempty"`
	Comment    string    `gorm:"type:text" json:"comment,omitempty"`
	Seq        int64     `gorm:"index" json:"-"`
}

// TableName returns the database table name for UserFeedback.
func (UserFeedback) TableName() string {
	return "user_feedback"
}

// KeywordCount is one row of the keyword frequency table.
type KeywordCount struct {
	Keyword string `gorm:"type:text;primaryKey" json:"keyword"`
	Count   int    `json:"count"`
}

// TableName returns the database table name for KeywordCount.
func (KeywordCount) TableName() string {
	return "keyword_frequency"
}

// SuccessMetrics are lifetime totals; they survive session trimming.
type SuccessMetrics struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Total       int       `json:"total_generations"`
	Successful  int       `json:"successful_generations"`
	Failed      int       `json:"failed_generations"`
	LastUpdated time.Time `json:"last_updated"`
}

// TableName returns the database table name for SuccessMetrics.
func (SuccessMetrics) TableName() string {
	return "learning_metrics"
}

// LearningDocument is the full persisted state of the outcome learner.
type LearningDocument struct {
	PromptPatterns   map[string]*PromptPattern `json:"prompt_patterns"`
	KeywordFrequency map[string]int            `json:"keyword_frequency"`
	Sessions         []FeedbackRecord          `json:"sessions"`
	SuccessMetrics   SuccessMetrics            `json:"success_metrics"`
	UserFeedback     []UserFeedback            `json:"user_feedback"`
}

// NewLearningDocument returns an empty document with initialized maps.
func NewLearningDocument() *LearningDocument {
	return &LearningDocument{
		PromptPatterns:   make(map[string]*PromptPattern),
		KeywordFrequency: make(map[string]int),
		Sessions:         []FeedbackRecord{},
		UserFeedback:     []UserFeedback{},
	}
}

// Normalize fills nil maps and slices left by a partial decode.
func (d *LearningDocument) Normalize() {
	if d.PromptPatterns == nil {
		d.PromptPatterns = make(map[string]*PromptPattern)
	}
	if d.KeywordFrequency == nil {
		d.KeywordFrequency = make(map[string]int)
	}
	if d.Sessions == nil {
		d.Sessions = []FeedbackRecord{}
	}
	if d.UserFeedback == nil {
		d.UserFeedback = []UserFeedback{}
	}
	for key, p := range d.PromptPatterns {
		if p == nil {
			delete(d.PromptPatterns, key)
			continue
		}
		p.Key = key
	}
}

// IsEmpty reports whether nothing has been learned yet.
func (d *LearningDocument) IsEmpty() bool {
	return len(d.PromptPatterns) == 0 && len(d.Sessions) == 0 && d.SuccessMetrics.Total == 0
}
