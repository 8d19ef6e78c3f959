package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"energydash", "energydash.local"},
		{"energydash.local", "energydash.local"},
		{"energydash.local.", "energydash.local"},
		{"  kitchen ", "kitchen.local"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LocalName(tt.in), tt.in)
	}
}

func TestAnnounceRejectsEmptyName(t *testing.T) {
	_, err := Announce("  ", nil)
	assert.Error(t, err)
}
