package lifecycle

import (
	"testing"
	"time"

	"stayledger-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsDue_NoLeaveDate(t *testing.T) {
	rec := models.TenancyRecord{Name: "A"}
	assert.False(t, IsDue(rec, date(2024, 1, 1)))
}

func TestIsDue_PastAndToday(t *testing.T) {
	past := date(2023, 12, 31)
	today := date(2024, 1, 1)

	rec := models.TenancyRecord{LeaveDate: &past}
	assert.True(t, IsDue(rec, today))

	rec.LeaveDate = &today
	assert.True(t, IsDue(rec, today))
}

func TestIsDue_Future(t *testing.T) {
	future := date(2024, 2, 1)
	rec := models.TenancyRecord{LeaveDate: &future}
	assert.False(t, IsDue(rec, date(2024, 1, 1)))
}

func TestIsDue_IgnoresTimeOfDay(t *testing.T) {
	// Leave date late in the day, reference early the same day: still due.
	leave := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	ref := time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)
	rec := models.TenancyRecord{LeaveDate: &leave}
	assert.True(t, IsDue(rec, ref))
}

func TestDecide(t *testing.T) {
	today := date(2024, 1, 1)
	assert.Equal(t, ArchiveNow, Decide(date(2023, 12, 1), today))
	assert.Equal(t, ArchiveNow, Decide(today, today))
	assert.Equal(t, ScheduleForLater, Decide(date(2024, 1, 2), today))
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "Mar-25", MonthKey(date(2025, 3, 14)))
	assert.Equal(t, "Jan-24", MonthKey(date(2024, 1, 1)))
	// Same month, different days share a key.
	assert.Equal(t, MonthKey(date(2025, 3, 1)), MonthKey(date(2025, 3, 31)))
}
