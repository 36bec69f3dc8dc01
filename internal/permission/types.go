// Package permission implements the tri-state permission evaluator: a pure
// function over facts extracted from a loaded hub snapshot. It performs no
// I/O; callers load the hub and member state first.
package permission

// TriState is an explicit per-member permission setting. Unset means "no
// explicit setting at this level", which is not the same as Deny.
type TriState int

const (
	Unset TriState = iota
	Allow
	Deny
)

// HubPermission is one of the closed set of hub-wide permissions.
type HubPermission string

const (
	HubAll            HubPermission = "All"
	HubReadChannels   HubPermission = "ReadChannels"
	HubWriteChannels  HubPermission = "WriteChannels"
	HubConfigure      HubPermission = "Configure"
	HubManageChannels HubPermission = "ManageChannels"
	HubMute           HubPermission = "Mute"
	HubUnmute         HubPermission = "Unmute"
	HubKick           HubPermission = "Kick"
	HubBan            HubPermission = "Ban"
	HubUnban          HubPermission = "Unban"
	HubAdministrate   HubPermission = "Administrate"
)

// AllHubPermissions lists the closed set in a stable order, useful for
// iterating over a member's hub_permissions map deterministically.
var AllHubPermissions = []HubPermission{
	HubAll, HubReadChannels, HubWriteChannels, HubConfigure, HubManageChannels,
	HubMute, HubUnmute, HubKick, HubBan, HubUnban, HubAdministrate,
}

// ChannelPermission is one of the closed set of channel-scoped permissions.
type ChannelPermission string

const (
	ChannelRead   ChannelPermission = "Read"
	ChannelWrite  ChannelPermission = "Write"
	ChannelManage ChannelPermission = "Manage"
)

// AllChannelPermissions lists the closed set in a stable order.
var AllChannelPermissions = []ChannelPermission{ChannelRead, ChannelWrite, ChannelManage}

// hubEquivalent maps a channel permission to the hub-wide permission that
// acts as its default when no channel-specific setting exists.
var hubEquivalent = map[ChannelPermission]HubPermission{
	ChannelRead:   HubReadChannels,
	ChannelWrite:  HubWriteChannels,
	ChannelManage: HubManageChannels,
}
