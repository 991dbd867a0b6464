package postgres

import (
	"database/sql"
	"testing"
	"time"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if isNotFound(fakeErr("pq: relation teams does not exist")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestNullableIntRoundTrip(t *testing.T) {
	t.Run("nil maps to invalid", func(t *testing.T) {
		if nullableInt(nil).Valid {
			t.Fatalf("expected invalid NullInt64 for nil")
		}
		if nullInt64ToIntPtr(sql.NullInt64{}) != nil {
			t.Fatalf("expected nil pointer for invalid NullInt64")
		}
	})

	t.Run("value survives", func(t *testing.T) {
		two := 2
		stored := nullableInt(&two)
		if !stored.Valid || stored.Int64 != 2 {
			t.Fatalf("unexpected stored value: %+v", stored)
		}
		back := nullInt64ToIntPtr(stored)
		if back == nil || *back != 2 {
			t.Fatalf("unexpected round-tripped value: %v", back)
		}
	})
}

func TestNullableTimeRoundTrip(t *testing.T) {
	if nullableTime(nil).Valid {
		t.Fatalf("expected invalid NullTime for nil")
	}
	if nullTimeToTimePtr(sql.NullTime{}) != nil {
		t.Fatalf("expected nil pointer for invalid NullTime")
	}

	at := time.Date(2026, 8, 22, 15, 0, 0, 0, time.UTC)
	stored := nullableTime(&at)
	back := nullTimeToTimePtr(stored)
	if back == nil || !back.Equal(at) {
		t.Fatalf("unexpected round-tripped time: %v", back)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
