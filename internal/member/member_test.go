package member

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hubline-chat/hubline-server/internal/permission"
)

func TestValidateNickname(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty means cleared", "", "", false},
		{"whitespace only means cleared", "   ", "", false},
		{"one char", "a", "a", false},
		{"32 chars", strings.Repeat("a", 32), strings.Repeat("a", 32), false},
		{"33 chars", strings.Repeat("a", 33), "", true},
		{"trims padding", "  Ada  ", "Ada", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidateNickname(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateNickname(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrNicknameLength) {
					t.Fatalf("ValidateNickname(%q) error = %v, want ErrNicknameLength", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ValidateNickname(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMember_SetHubPermission_UnsetRemoves(t *testing.T) {
	t.Parallel()

	m := &Member{}
	m.SetHubPermission(permission.HubKick, permission.Allow)
	if m.HubPermissions[permission.HubKick] != permission.Allow {
		t.Fatalf("expected Allow to be recorded")
	}
	m.SetHubPermission(permission.HubKick, permission.Unset)
	if _, ok := m.HubPermissions[permission.HubKick]; ok {
		t.Fatalf("expected Unset to remove the entry")
	}
}

func TestMember_ChannelSettings_NilWhenNeverSet(t *testing.T) {
	t.Parallel()

	m := &Member{}
	if got := m.ChannelSettings(uuid.New()); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMember_SetChannelPermission(t *testing.T) {
	t.Parallel()

	m := &Member{}
	chID := uuid.New()
	m.SetChannelPermission(chID, permission.ChannelWrite, permission.Deny)

	got := m.ChannelSettings(chID)
	if got[permission.ChannelWrite] != permission.Deny {
		t.Fatalf("expected Deny to be recorded, got %v", got)
	}

	m.SetChannelPermission(chID, permission.ChannelWrite, permission.Unset)
	if _, ok := m.ChannelSettings(chID)[permission.ChannelWrite]; ok {
		t.Fatalf("expected Unset to remove the entry")
	}
}
