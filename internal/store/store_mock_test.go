package store

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db, "sqlite"), mock
}

func TestDeleteStickerWithTagsRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tags WHERE sticker_uuid IN \(\?, \?\)`).
		WithArgs("a", "b").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM stickers WHERE uuid IN \(\?, \?\)`).
		WithArgs("a", "b").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	if _, err := s.DeleteStickerWithTags([]string{"a", "b"}); err == nil {
		t.Fatalf("expected delete error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchDomainEnabledFallsBackOnQueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT search FROM search_domain`).
		WithArgs(TagTable, TagColumn).
		WillReturnError(errors.New("no such table"))

	if !s.SearchDomainEnabled(TagTable, TagColumn) {
		t.Fatalf("expected default switch when the lookup fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddShareCountReportsRowsAffected(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE stickers SET share_count = share_count \+ \?`).
		WithArgs(1, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.AddShareCount("u1", 1)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 row, got %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
