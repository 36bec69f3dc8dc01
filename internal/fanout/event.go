// Package fanout implements the notification router: it takes a server
// event and delivers it to every session subscribed to the hub or channel
// it concerns, without ever blocking on a slow or dead subscriber.
package fanout

import (
	"github.com/google/uuid"

	"github.com/hubline-chat/hubline-server/internal/message"
)

// HubUpdateKind is the closed set of reasons a HubUpdated event fires.
// Kinds that concern a specific channel or user carry that id; the rest
// carry none.
type HubUpdateKind struct {
	tag       hubUpdateTag
	ChannelID uuid.UUID
	UserID    uuid.UUID
}

type hubUpdateTag string

const (
	HubRenamed                    hubUpdateTag = "Renamed"
	HubDescriptionUpdated         hubUpdateTag = "DescriptionUpdated"
	HubDeleted                    hubUpdateTag = "Deleted"
	HubChannelCreated             hubUpdateTag = "ChannelCreated"
	HubChannelRenamed             hubUpdateTag = "ChannelRenamed"
	HubChannelDescriptionUpdated  hubUpdateTag = "ChannelDescriptionUpdated"
	HubChannelDeleted             hubUpdateTag = "ChannelDeleted"
	HubUserJoined                 hubUpdateTag = "UserJoined"
	HubUserLeft                   hubUpdateTag = "UserLeft"
	HubUserKicked                 hubUpdateTag = "UserKicked"
	HubUserBanned                 hubUpdateTag = "UserBanned"
	HubUserUnbanned                hubUpdateTag = "UserUnbanned"
	HubUserMuted                  hubUpdateTag = "UserMuted"
	HubUserUnmuted                hubUpdateTag = "UserUnmuted"
	HubMemberNicknameChanged      hubUpdateTag = "MemberNicknameChanged"
	HubUserHubPermissionChanged   hubUpdateTag = "UserHubPermissionChanged"
	HubUserChannelPermissionChanged hubUpdateTag = "UserChannelPermissionChanged"
)

func (k HubUpdateKind) Kind() string { return string(k.tag) }

func KindRenamed() HubUpdateKind            { return HubUpdateKind{tag: HubRenamed} }
func KindDescriptionUpdated() HubUpdateKind { return HubUpdateKind{tag: HubDescriptionUpdated} }
func KindDeleted() HubUpdateKind            { return HubUpdateKind{tag: HubDeleted} }

func KindChannelCreated(channelID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubChannelCreated, ChannelID: channelID}
}
func KindChannelRenamed(channelID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubChannelRenamed, ChannelID: channelID}
}
func KindChannelDescriptionUpdated(channelID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubChannelDescriptionUpdated, ChannelID: channelID}
}
func KindChannelDeleted(channelID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubChannelDeleted, ChannelID: channelID}
}

func KindUserJoined(userID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubUserJoined, UserID: userID}
}
func KindUserLeft(userID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubUserLeft, UserID: userID}
}
func KindUserKicked(userID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubUserKicked, UserID: userID}
}
func KindUserBanned(userID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubUserBanned, UserID: userID}
}
func KindUserUnbanned(userID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubUserUnbanned, UserID: userID}
}
func KindUserMuted(userID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubUserMuted, UserID: userID}
}
func KindUserUnmuted(userID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubUserUnmuted, UserID: userID}
}
func KindMemberNicknameChanged(userID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubMemberNicknameChanged, UserID: userID}
}
func KindUserHubPermissionChanged(userID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubUserHubPermissionChanged, UserID: userID}
}
func KindUserChannelPermissionChanged(userID, channelID uuid.UUID) HubUpdateKind {
	return HubUpdateKind{tag: HubUserChannelPermissionChanged, UserID: userID, ChannelID: channelID}
}

// Event is the closed sum of everything the router can fan out. Exactly
// one of the typed payload fields is meaningful for a given Type.
type Event struct {
	Type EventType

	HubID     uuid.UUID
	ChannelID uuid.UUID

	Message       message.Message
	TypingUserID  uuid.UUID
	HubUpdateKind HubUpdateKind
}

type EventType string

const (
	EventNewMessage  EventType = "NewMessage"
	EventTypingStart EventType = "TypingStart"
	EventTypingStop  EventType = "TypingStop"
	EventHubUpdated  EventType = "HubUpdated"
)

func NewMessage(hubID, channelID uuid.UUID, msg message.Message) Event {
	return Event{Type: EventNewMessage, HubID: hubID, ChannelID: channelID, Message: msg}
}

func TypingStart(hubID, channelID, userID uuid.UUID) Event {
	return Event{Type: EventTypingStart, HubID: hubID, ChannelID: channelID, TypingUserID: userID}
}

func TypingStop(hubID, channelID, userID uuid.UUID) Event {
	return Event{Type: EventTypingStop, HubID: hubID, ChannelID: channelID, TypingUserID: userID}
}

func HubUpdated(hubID uuid.UUID, kind HubUpdateKind) Event {
	return Event{Type: EventHubUpdated, HubID: hubID, HubUpdateKind: kind}
}
