package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRoomAccessDenied, KindOf(newError(KindRoomAccessDenied)))

	wrapped := fmt.Errorf("handler: %w", newError(KindDuplicateRoomName))
	assert.Equal(t, KindDuplicateRoomName, KindOf(wrapped))

	assert.Equal(t, KindStoreUnavailable, KindOf(fmt.Errorf("plain failure")))
}

func TestIsKind(t *testing.T) {
	err := wrapError(KindStoreUnavailable, fmt.Errorf("connection refused"))

	assert.True(t, IsKind(err, KindStoreUnavailable))
	assert.False(t, IsKind(err, KindRoomAccessDenied))
	assert.False(t, IsKind(fmt.Errorf("plain"), KindStoreUnavailable))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "RoomAccessDenied", newError(KindRoomAccessDenied).Error())
	assert.Equal(t, "DatabaseFailedError: connection refused",
		wrapError(KindStoreUnavailable, fmt.Errorf("connection refused")).Error())
}
