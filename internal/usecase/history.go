package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"translation-history/internal/domain"
)

// HistoryLimit caps the number of records History returns.
const HistoryLimit = 50

type HistoryReader interface {
	ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.TranslationRecord, error)
}

type HistoryService struct {
	store HistoryReader
}

func NewHistoryService(s HistoryReader) (*HistoryService, error) {
	if s == nil {
		return nil, errors.New("usecase: history store must not be nil")
	}
	return &HistoryService{store: s}, nil
}

// History returns ownerID's most recent translations, newest first.
func (s *HistoryService) History(ctx context.Context, ownerID string) ([]domain.HistoryItem, error) {
	if ownerID == "" {
		return nil, Unauthorized("missing_owner")
	}

	recs, err := s.store.ListRecent(ctx, ownerID, HistoryLimit)
	if err != nil {
		return nil, newError(ErrorInternal, "dynamodb_query_error", "Failed to fetch translation history", err)
	}
	if len(recs) > HistoryLimit {
		recs = recs[:HistoryLimit]
	}

	items := make([]domain.HistoryItem, 0, len(recs))
	for _, rec := range recs {
		ts, err := domain.ParseTimestamp(rec.Timestamp)
		if err != nil {
			return nil, newError(ErrorInternal, "dynamodb_bad_timestamp", "Failed to fetch translation history",
				fmt.Errorf("record %q: %w", rec.Timestamp, err))
		}
		items = append(items, domain.HistoryItem{
			OriginalText:   rec.OriginalText,
			TranslatedText: rec.TranslatedText,
			FromLanguage:   rec.SourceLang,
			ToLanguage:     rec.TargetLang,
			Timestamp:      ts,
		})
	}
	// Legacy RFC 3339 sort keys order differently from epoch seconds.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	return items, nil
}
