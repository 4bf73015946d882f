package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"words", "vehicles  Sports Car", []string{"vehicles", "Sports", "Car"}},
		{"quoted", `roles "VIP Pass" 5000 "shiny badge"`, []string{"roles", "VIP Pass", "5000", "shiny badge"}},
		{"empty quotes", `a "" b`, []string{"a", "", "b"}},
		{"unterminated quote", `cafe "Coffee Corner`, []string{"cafe", "Coffee Corner"}},
		{"newlines", "warn\n<@123>\tspam", []string{"warn", "<@123>", "spam"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitArgs(tt.line))
		})
	}
}

func TestParseIDs(t *testing.T) {
	id, ok := ParseUserID("<@123456789012345678>")
	assert.True(t, ok)
	assert.Equal(t, "123456789012345678", id)

	id, ok = ParseUserID("<@!123456789012345678>")
	assert.True(t, ok)
	assert.Equal(t, "123456789012345678", id)

	id, ok = ParseUserID("123456789012345678")
	assert.True(t, ok)
	assert.Equal(t, "123456789012345678", id)

	_, ok = ParseUserID("bob")
	assert.False(t, ok)
	_, ok = ParseUserID("1234")
	assert.False(t, ok)
	_, ok = ParseUserID("<@&123456789012345678>")
	assert.False(t, ok)

	id, ok = ParseRoleID("<@&223456789012345678>")
	assert.True(t, ok)
	assert.Equal(t, "223456789012345678", id)

	id, ok = ParseChannelID("<#323456789012345678>")
	assert.True(t, ok)
	assert.Equal(t, "323456789012345678", id)
}
