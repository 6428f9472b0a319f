package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"translation-history/internal/domain"
)

func record(ts, original string) domain.TranslationRecord {
	return domain.TranslationRecord{
		OwnerID:        "user-1",
		Timestamp:      ts,
		OriginalText:   original,
		TranslatedText: original + "-es",
		SourceLang:     "en",
		TargetLang:     "es",
	}
}

func TestNewHistoryService_ValidatesDependency(t *testing.T) {
	_, err := NewHistoryService(nil)
	require.Error(t, err)
}

func TestHistory_ProjectsRecords(t *testing.T) {
	store := &mockStore{listOut: []domain.TranslationRecord{
		record("1729166500", "Bye"),
		record("1729166400", "Hello"),
	}}
	svc, err := NewHistoryService(store)
	require.NoError(t, err)

	items, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", store.lastOwn)
	require.Equal(t, HistoryLimit, store.lastLim)
	require.Equal(t, []domain.HistoryItem{
		{OriginalText: "Bye", TranslatedText: "Bye-es", FromLanguage: "en", ToLanguage: "es", Timestamp: 1729166500},
		{OriginalText: "Hello", TranslatedText: "Hello-es", FromLanguage: "en", ToLanguage: "es", Timestamp: 1729166400},
	}, items)
}

func TestHistory_EmptyIsNotNil(t *testing.T) {
	svc, err := NewHistoryService(&mockStore{})
	require.NoError(t, err)

	items, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestHistory_CapsAtLimitAndOrdersNewestFirst(t *testing.T) {
	recs := make([]domain.TranslationRecord, 0, 70)
	for i := 0; i < 70; i++ {
		recs = append(recs, record(fmt.Sprintf("%d", 1729166400+i), "t"))
	}
	svc, err := NewHistoryService(&mockStore{listOut: recs})
	require.NoError(t, err)

	items, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, HistoryLimit)
	for i := 1; i < len(items); i++ {
		require.GreaterOrEqual(t, items[i-1].Timestamp, items[i].Timestamp)
	}
}

func TestHistory_LegacyRFC3339Timestamps(t *testing.T) {
	store := &mockStore{listOut: []domain.TranslationRecord{
		record("2024-10-17T12:00:00.000Z", "legacy"),
		record("1729166500", "newer"),
		record("1729166300", "older"),
	}}
	svc, err := NewHistoryService(store)
	require.NoError(t, err)

	items, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "newer", items[0].OriginalText)
	require.Equal(t, "legacy", items[1].OriginalText)
	require.Equal(t, int64(1729166400), items[1].Timestamp)
	require.Equal(t, "older", items[2].OriginalText)
}

func TestHistory_EqualTimestampsKeepStoreOrder(t *testing.T) {
	store := &mockStore{listOut: []domain.TranslationRecord{
		record("1729166400", "first"),
		record("1729166400", "second"),
	}}
	svc, err := NewHistoryService(store)
	require.NoError(t, err)

	items, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "first", items[0].OriginalText)
	require.Equal(t, "second", items[1].OriginalText)
}

func TestHistory_UnparseableTimestamp(t *testing.T) {
	svc, err := NewHistoryService(&mockStore{listOut: []domain.TranslationRecord{record("last tuesday", "x")}})
	require.NoError(t, err)

	_, err = svc.History(context.Background(), "user-1")
	uerr := expectError(t, err, ErrorInternal, "dynamodb_bad_timestamp")
	require.Equal(t, "Failed to fetch translation history", uerr.Message)
}

func TestHistory_StoreError(t *testing.T) {
	svc, err := NewHistoryService(&mockStore{listErr: errors.New("ResourceNotFoundException")})
	require.NoError(t, err)

	_, err = svc.History(context.Background(), "user-1")
	uerr := expectError(t, err, ErrorInternal, "dynamodb_query_error")
	require.Equal(t, "Failed to fetch translation history", uerr.Message)
	require.ErrorContains(t, err, "ResourceNotFoundException")
}

func TestHistory_MissingOwner(t *testing.T) {
	store := &mockStore{}
	svc, err := NewHistoryService(store)
	require.NoError(t, err)

	_, err = svc.History(context.Background(), "")
	expectError(t, err, ErrorUnauthorized, "missing_owner")
	require.Equal(t, 0, store.listCall)
}
