package model

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The open-notification unique index must only cover rows with a subject
// business. System status rows carry an empty place_id and any number of
// them may be open at once, so a second monitor start or scan failure never
// trips a unique violation.
func TestNotificationOpenIndexExemptsSystemRows(t *testing.T) {
	notificationType := reflect.TypeOf(NotificationModel{})

	for _, name := range []string{"Kind", "PlaceID"} {
		field, ok := notificationType.FieldByName(name)
		require.True(t, ok)

		tag := field.Tag.Get("gorm")
		assert.Contains(t, tag, "idx_notifications_open")
		assert.Contains(t, tag, "where:dismissed = false AND place_id <> ''")
	}
}
