package models

import "testing"

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "event_organizer", "participant"} {
		if _, err := ParseRole(valid); err != nil {
			t.Errorf("ParseRole(%q) returned error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "user", "ADMIN", "organizer"} {
		if _, err := ParseRole(invalid); err == nil {
			t.Errorf("ParseRole(%q) should have failed", invalid)
		}
	}
}

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleAdmin, ActionCreateEvent, true},
		{RoleAdmin, ActionUpdateAnyEvent, true},
		{RoleAdmin, ActionListAllEvents, true},
		{RoleAdmin, ActionListAllUsers, true},
		{RoleAdmin, ActionRemoveOrganizer, true},
		{RoleAdmin, ActionEnrollSelf, true},

		{RoleOrganizer, ActionCreateEvent, true},
		{RoleOrganizer, ActionUpdateAnyEvent, false},
		{RoleOrganizer, ActionListAllEvents, false},
		{RoleOrganizer, ActionListAllUsers, false},
		{RoleOrganizer, ActionRemoveOrganizer, false},
		{RoleOrganizer, ActionEnrollSelf, true},

		{RoleParticipant, ActionCreateEvent, false},
		{RoleParticipant, ActionUpdateAnyEvent, false},
		{RoleParticipant, ActionListAllEvents, false},
		{RoleParticipant, ActionListAllUsers, false},
		{RoleParticipant, ActionRemoveOrganizer, false},
		{RoleParticipant, ActionEnrollSelf, true},
	}

	for _, tc := range cases {
		if got := tc.role.May(tc.action); got != tc.want {
			t.Errorf("%s.May(%s) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}
