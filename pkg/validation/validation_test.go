package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, ValidateUserID("64af3c2e9b1d", "calleeId"))

	err := ValidateUserID("", "calleeId")
	assert.ErrorContains(t, err, "calleeId is required")

	err = ValidateUserID(strings.Repeat("a", 101), "calleeId")
	assert.ErrorContains(t, err, "too long")
}

func TestValidateRoomID(t *testing.T) {
	assert.NoError(t, ValidateRoomID("call_a_b_123", "roomId"))
	assert.ErrorContains(t, ValidateRoomID("", "roomId"), "roomId is required")
}

func TestValidateStreamTitle(t *testing.T) {
	assert.NoError(t, ValidateStreamTitle("Friday night stream"))
	assert.Error(t, ValidateStreamTitle(""))
	assert.Error(t, ValidateStreamTitle("   "))
	assert.Error(t, ValidateStreamTitle(strings.Repeat("x", 101)))
	assert.Error(t, ValidateStreamTitle("bad\xff\xfetitle"))
}

func TestValidateCommentContent(t *testing.T) {
	assert.NoError(t, ValidateCommentContent("nice post"))
	assert.Error(t, ValidateCommentContent(""))
	assert.Error(t, ValidateCommentContent(strings.Repeat("x", 2001)))
}
