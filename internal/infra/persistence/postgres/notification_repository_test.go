package postgres

import (
	"testing"
	"time"

	"bizradar/internal/infra/persistence/model"

	"github.com/stretchr/testify/assert"
)

func TestOpenRefreshColumnsReopenRow(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	columns := openRefreshColumns(&model.NotificationModel{
		Title:     "Rating Changed: Cafe A",
		Message:   "Rating moved from 4.0 to 3.0",
		CreatedAt: now,
	})

	assert.Equal(t, "Rating Changed: Cafe A", columns["title"])
	assert.Equal(t, "Rating moved from 4.0 to 3.0", columns["message"])
	assert.Equal(t, now, columns["created_at"])
	assert.Equal(t, false, columns["read"])
	assert.Equal(t, false, columns["dismissed"],
		"a refresh must reopen a row dismissed between the open-set read and commit")
}
