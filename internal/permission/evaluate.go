package permission

import "github.com/hubline-chat/hubline-server/internal/apperr"

// Facts are the minimal inputs the evaluator needs about one (user, hub)
// pair, extracted by the caller from a loaded Hub snapshot and a Member
// record. Keeping this decoupled from the hub/member entity types avoids a
// circular dependency between this package and theirs.
type Facts struct {
	IsMember bool
	IsOwner  bool
	IsBanned bool
	IsMuted  bool

	// HubSettings holds the member's explicit hub_permissions tri-states.
	// A missing key is treated as Unset.
	HubSettings map[HubPermission]TriState

	// ChannelSettings holds the member's explicit channel_permissions
	// tri-states for the one channel being evaluated. A missing key is
	// treated as Unset. Nil when no channel is in scope (hub-level check).
	ChannelSettings map[ChannelPermission]TriState
}

func (f Facts) hubSetting(p HubPermission) TriState {
	if f.HubSettings == nil {
		return Unset
	}
	return f.HubSettings[p]
}

func (f Facts) channelSetting(p ChannelPermission) TriState {
	if f.ChannelSettings == nil {
		return Unset
	}
	return f.ChannelSettings[p]
}

func (f Facts) hasAll() bool {
	return f.hubSetting(HubAll) == Allow
}

// EvaluateHub checks a hub-wide permission. Evaluation order, first match
// wins: owner bypass, ban, explicit hub setting, the All grant, then deny.
func EvaluateHub(f Facts, perm HubPermission) error {
	if !f.IsMember {
		return apperr.New(apperr.KindNotAMember)
	}
	if f.IsOwner {
		return nil
	}
	if f.IsBanned {
		return apperr.New(apperr.KindBanned)
	}
	switch f.hubSetting(perm) {
	case Allow:
		return nil
	case Deny:
		return apperr.MissingHubPermission(string(perm))
	}
	if f.hasAll() {
		return nil
	}
	return apperr.MissingHubPermission(string(perm))
}

// EvaluateChannel checks a channel-scoped permission. Evaluation order,
// first match wins: owner bypass, ban, the channel-specific setting, the
// hub-wide equivalent setting, the All grant, then deny. A mute always
// overrides an otherwise-granted Write permission.
func EvaluateChannel(f Facts, perm ChannelPermission) error {
	if !f.IsMember {
		return apperr.New(apperr.KindNotAMember)
	}
	if f.IsOwner {
		if perm == ChannelWrite && f.IsMuted {
			return apperr.MissingChannelPermission(string(perm))
		}
		return nil
	}
	if f.IsBanned {
		return apperr.New(apperr.KindBanned)
	}

	granted := false
	switch f.channelSetting(perm) {
	case Allow:
		granted = true
	case Deny:
		return apperr.MissingChannelPermission(string(perm))
	default:
		switch f.hubSetting(hubEquivalent[perm]) {
		case Allow:
			granted = true
		case Deny:
			return apperr.MissingChannelPermission(string(perm))
		default:
			granted = f.hasAll()
		}
	}

	if !granted {
		return apperr.MissingChannelPermission(string(perm))
	}
	if perm == ChannelWrite && f.IsMuted {
		return apperr.MissingChannelPermission(string(perm))
	}
	return nil
}

// CheckSendMessage applies the SendMessage-specific rule: a mute is
// reported as the distinct Muted error rather than the generic
// MissingChannelPermission(Write), even though the same mute also makes
// EvaluateChannel deny Write for e.g. typing indicators. Ownership does not
// exempt a muted member from this check.
func CheckSendMessage(f Facts) error {
	if !f.IsMember {
		return apperr.New(apperr.KindNotAMember)
	}
	if f.IsBanned {
		return apperr.New(apperr.KindBanned)
	}
	if f.IsMuted {
		return apperr.New(apperr.KindMuted)
	}
	return EvaluateChannel(f, ChannelWrite)
}
