package fanout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hubline-chat/hubline-server/internal/message"
	"github.com/hubline-chat/hubline-server/internal/registry"
	"github.com/hubline-chat/hubline-server/internal/session"
)

type recordingSink struct {
	received []Event
	full     bool
}

func (s *recordingSink) Send(event any) bool {
	if s.full {
		return false
	}
	s.received = append(s.received, event.(Event))
	return true
}

func TestPublish_NewMessage_OnlyReachesChannelSubscribers(t *testing.T) {
	t.Parallel()

	reg := registry.New(zerolog.Nop())
	router := New(reg, zerolog.Nop())

	hubID, channelID, otherChannel := uuid.New(), uuid.New(), uuid.New()
	inChannel := &recordingSink{}
	inOtherChannel := &recordingSink{}

	reg.SubscribeChannel(session.New(), uuid.New(), hubID, channelID, inChannel)
	reg.SubscribeChannel(session.New(), uuid.New(), hubID, otherChannel, inOtherChannel)

	msg := message.Message{ID: uuid.New(), ChannelID: channelID, Content: "hello"}
	router.Publish(NewMessage(hubID, channelID, msg))

	if len(inChannel.received) != 1 {
		t.Fatalf("inChannel.received = %v, want 1 event", inChannel.received)
	}
	if len(inOtherChannel.received) != 0 {
		t.Errorf("inOtherChannel.received = %v, want no events", inOtherChannel.received)
	}
}

func TestPublish_HubUpdated_ReachesHubSubscribers(t *testing.T) {
	t.Parallel()

	reg := registry.New(zerolog.Nop())
	router := New(reg, zerolog.Nop())

	hubID := uuid.New()
	sink := &recordingSink{}
	reg.SubscribeHub(session.New(), uuid.New(), hubID, sink)

	router.Publish(HubUpdated(hubID, KindRenamed()))

	if len(sink.received) != 1 || sink.received[0].HubUpdateKind.Kind() != "Renamed" {
		t.Errorf("sink.received = %v, want one Renamed event", sink.received)
	}
}

func TestPublish_DropsForFullSinkWithoutAffectingOthers(t *testing.T) {
	t.Parallel()

	reg := registry.New(zerolog.Nop())
	router := New(reg, zerolog.Nop())

	hubID, channelID := uuid.New(), uuid.New()
	full := &recordingSink{full: true}
	ok := &recordingSink{}

	reg.SubscribeChannel(session.New(), uuid.New(), hubID, channelID, full)
	reg.SubscribeChannel(session.New(), uuid.New(), hubID, channelID, ok)

	router.Publish(NewMessage(hubID, channelID, message.Message{ID: uuid.New()}))

	if len(full.received) != 0 {
		t.Errorf("full.received = %v, want none", full.received)
	}
	if len(ok.received) != 1 {
		t.Errorf("ok.received = %v, want 1 event", ok.received)
	}
}

func TestPublish_NoSubscribersIsANoop(t *testing.T) {
	t.Parallel()

	reg := registry.New(zerolog.Nop())
	router := New(reg, zerolog.Nop())

	router.Publish(NewMessage(uuid.New(), uuid.New(), message.Message{ID: uuid.New()}))
}
