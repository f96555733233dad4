package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalendarPermissionInput_View(t *testing.T) {
	no, yes := false, true
	tests := []struct {
		name string
		in   CalendarPermissionInput
		want bool
	}{
		{"defaults to view", CalendarPermissionInput{}, true},
		{"explicit view", CalendarPermissionInput{CanView: &yes}, true},
		{"view revoked", CalendarPermissionInput{CanView: &no}, false},
		{"edit implies view", CalendarPermissionInput{CanView: &no, CanEdit: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.View())
		})
	}
}
