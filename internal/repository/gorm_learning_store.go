package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/timmy/reelsearch/internal/domain"
)

const (
	metricsRowID = 1
	saveBatch    = 200
)

// GormLearningStore keeps the learning document in relational tables
// (SQLite or PostgreSQL), one table per document section.
type GormLearningStore struct {
	db *gorm.DB
}

// NewGormLearningStore creates a database-backed store.
// Parameters:
//   - db: GORM handle with the learning tables migrated.
// Returns:
//   - *GormLearningStore: store bound to db.
func NewGormLearningStore(db *gorm.DB) *GormLearningStore {
	return &GormLearningStore{db: db}
}

// Load reads every section of the document.
func (s *GormLearningStore) Load(ctx context.Context) (*domain.LearningDocument, error) {
	db := s.db.WithContext(ctx)
	doc := domain.NewLearningDocument()

	var patterns []domain.PromptPattern
	if err := db.Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("failed to load prompt patterns: %w", err)
	}
	for i := range patterns {
		p := patterns[i]
		doc.PromptPatterns[p.Key] = &p
	}

	var keywords []domain.KeywordCount
	if err := db.Find(&keywords).Error; err != nil {
		return nil, fmt.Errorf("failed to load keyword frequency: %w", err)
	}
	for _, k := range keywords {
		doc.KeywordFrequency[k.Keyword] = k.Count
	}

	if err := db.Order("seq ASC, id ASC").Find(&doc.Sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to load learning sessions: %w", err)
	}
	if err := db.Order("seq ASC, id ASC").Find(&doc.UserFeedback).Error; err != nil {
		return nil, fmt.Errorf("failed to load user feedback: %w", err)
	}

	var metrics domain.SuccessMetrics
	err := db.First(&metrics, metricsRowID).Error
	switch {
	case err == nil:
		doc.SuccessMetrics = metrics
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("failed to load learning metrics: %w", err)
	}

	doc.Normalize()
	return doc, nil
}

// Save mirrors doc into the tables in one transaction. Rows absent from doc
// are removed so the tables always match the last saved document.
func (s *GormLearningStore) Save(ctx context.Context, doc *domain.LearningDocument) error {
	if doc == nil {
		doc = domain.NewLearningDocument()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Patterns
		patterns := make([]domain.PromptPattern, 0, len(doc.PromptPatterns))
		keys := make([]string, 0, len(doc.PromptPatterns))
		for key, p := range doc.PromptPatterns {
			if p == nil {
				continue
			}
			row := *p
			row.Key = key
			patterns = append(patterns, row)
			keys = append(keys, key)
		}
		sort.Slice(patterns, func(i, j int) bool { return patterns[i].Key < patterns[j].Key })
		if err := upsert(tx, &patterns, len(patterns), clause.OnConflict{UpdateAll: true}); err != nil {
			return fmt.Errorf("failed to save prompt patterns: %w", err)
		}
		if err := deleteMissing(tx, &domain.PromptPattern{}, "pattern_key", keys); err != nil {
			return fmt.Errorf("failed to prune prompt patterns: %w", err)
		}

		// Keyword frequency
		keywords := make([]domain.KeywordCount, 0, len(doc.KeywordFrequency))
		words := make([]string, 0, len(doc.KeywordFrequency))
		for w, c := range doc.KeywordFrequency {
			keywords = append(keywords, domain.KeywordCount{Keyword: w, Count: c})
			words = append(words, w)
		}
		sort.Slice(keywords, func(i, j int) bool { return keywords[i].Keyword < keywords[j].Keyword })
		if err := upsert(tx, &keywords, len(keywords), clause.OnConflict{UpdateAll: true}); err != nil {
			return fmt.Errorf("failed to save keyword frequency: %w", err)
		}
		if err := deleteMissing(tx, &domain.KeywordCount{}, "keyword", words); err != nil {
			return fmt.Errorf("failed to prune keyword frequency: %w", err)
		}

		// Sessions and feedback are append-only records; only their
		// position moves when the document trims its oldest entries.
		sessionIDs := make([]string, 0, len(doc.Sessions))
		sessions := make([]domain.FeedbackRecord, len(doc.Sessions))
		for i, r := range doc.Sessions {
			r.Seq = int64(i)
			sessions[i] = r
			sessionIDs = append(sessionIDs, r.ID)
		}
		if err := upsert(tx, &sessions, len(sessions), keepPosition); err != nil {
			return fmt.Errorf("failed to save learning sessions: %w", err)
		}
		if err := deleteMissing(tx, &domain.FeedbackRecord{}, "id", sessionIDs); err != nil {
			return fmt.Errorf("failed to prune learning sessions: %w", err)
		}

		feedbackIDs := make([]string, 0, len(doc.UserFeedback))
		feedback := make([]domain.UserFeedback, len(doc.UserFeedback))
		for i, f := range doc.UserFeedback {
			f.Seq = int64(i)
			feedback[i] = f
			feedbackIDs = append(feedbackIDs, f.ID)
		}
		if err := upsert(tx, &feedback, len(feedback), keepPosition); err != nil {
			return fmt.Errorf("failed to save user feedback: %w", err)
		}
		if err := deleteMissing(tx, &domain.UserFeedback{}, "id", feedbackIDs); err != nil {
			return fmt.Errorf("failed to prune user feedback: %w", err)
		}

		metrics := doc.SuccessMetrics
		metrics.ID = metricsRowID
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&metrics).Error; err != nil {
			return fmt.Errorf("failed to save learning metrics: %w", err)
		}
		return nil
	})
}

// keepPosition refreshes only the sequence of an already stored record.
var keepPosition = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id"}},
	DoUpdates: clause.AssignmentColumns([]string{"seq"}),
}

func upsert(tx *gorm.DB, rows interface{}, n int, onConflict clause.OnConflict) error {
	if n == 0 {
		return nil
	}
	return tx.Clauses(onConflict).CreateInBatches(rows, saveBatch).Error
}

// deleteMissing removes rows whose column value is not in keep.
func deleteMissing(tx *gorm.DB, model interface{}, column string, keep []string) error {
	if len(keep) == 0 {
		return tx.Where("1 = 1").Delete(model).Error
	}
	return tx.Where(clause.Not(clause.IN{Column: clause.Column{Name: column}, Values: toValues(keep)})).
		Delete(model).Error
}

func toValues(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
