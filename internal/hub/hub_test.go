package hub

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hubline-chat/hubline-server/internal/member"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty", "", "", true},
		{"one char", "a", "a", false},
		{"100 chars", strings.Repeat("a", 100), strings.Repeat("a", 100), false},
		{"101 chars", strings.Repeat("a", 101), "", true},
		{"trims padding", "  hq  ", "hq", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNameLength) {
				t.Fatalf("ValidateName(%q) error = %v, want ErrNameLength", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHub_OwnerBanMuteLookups(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	banned := uuid.New()
	muted := uuid.New()
	h := &Hub{
		Owner:   owner,
		Bans:    map[uuid.UUID]struct{}{banned: {}},
		Mutes:   map[uuid.UUID]struct{}{muted: {}},
		Members: map[uuid.UUID]*member.Member{muted: {UserID: muted}},
	}

	if !h.IsOwner(owner) {
		t.Error("expected owner to be recognized")
	}
	if h.IsOwner(banned) {
		t.Error("did not expect banned user to be owner")
	}
	if !h.IsBanned(banned) {
		t.Error("expected banned user to be banned")
	}
	if !h.IsMuted(muted) {
		t.Error("expected muted user to be muted")
	}
	if h.Member(banned) != nil {
		t.Error("expected no member record for a user never added")
	}
	if h.Member(muted) == nil {
		t.Error("expected member record for muted user")
	}
}
