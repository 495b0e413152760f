package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRelay_MessageReachesPairRoomOnly(t *testing.T) {
	f := newFixture(CallOptions{}, HangupAny)
	x, y, z := f.connect("x"), f.connect("y"), f.connect("z")
	f.rooms.JoinPairRoom("x", "u1", "d1")
	f.rooms.JoinPairRoom("y", "d1", "u1")

	msg := json.RawMessage(`{"sender":"u1","receiver":"d1","text":"hello","_id":"m1"}`)
	require.NoError(t, f.chat.RelayMessage(msg))

	assert.JSONEq(t, string(msg), string(x.only(t, "receiveMessage")))
	assert.JSONEq(t, string(msg), string(y.only(t, "receiveMessage")))
	assert.Empty(t, z.events())
}

func TestChatRelay_EmptyRoomIsSilent(t *testing.T) {
	f := newFixture(CallOptions{}, HangupAny)
	x := f.connect("x")

	err := f.chat.RelayMessage(json.RawMessage(`{"sender":"u1","receiver":"d1","text":"anyone?"}`))
	assert.NoError(t, err)
	assert.Empty(t, x.events())
}

func TestChatRelay_BadPayload(t *testing.T) {
	f := newFixture(CallOptions{}, HangupAny)
	err := f.chat.RelayMessage(json.RawMessage(`"just a string"`))
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestChatRelay_Deletion(t *testing.T) {
	f := newFixture(CallOptions{}, HangupAny)
	x, z := f.connect("x"), f.connect("z")
	f.rooms.JoinPairRoom("x", "u1", "d1")

	f.chat.RelayDeletion("m1", "d1", "u1")

	assert.JSONEq(t, `{"messageId":"m1"}`, string(x.only(t, "messageDeleted")))
	assert.Empty(t, z.events())
}

func TestRouter_NamedRooms(t *testing.T) {
	f := newFixture(CallOptions{}, HangupAny)
	admin, doc, other := f.connect("a"), f.connect("d"), f.connect("o")
	f.rooms.JoinNamedRoom("a", f.rooms.AdminRoom())
	f.rooms.JoinNamedRoom("d", f.rooms.IdentityRoom("d1"))

	f.rooms.EmitToNamed(DefaultAdminRoom, "newDoctor", map[string]string{"id": "d2"})
	f.rooms.EmitToNamed("d1", "newAppointment", map[string]string{"id": "ap1"})

	assert.Equal(t, []string{"newDoctor"}, admin.events())
	assert.Equal(t, []string{"newAppointment"}, doc.events())
	assert.Empty(t, other.events())
}

func TestRouter_LeavePairRoom(t *testing.T) {
	f := newFixture(CallOptions{}, HangupAny)
	x := f.connect("x")
	f.rooms.JoinPairRoom("x", "u1", "d1")
	f.rooms.LeavePairRoom("x", "d1", "u1")

	f.rooms.EmitToPair("u1", "d1", "receiveMessage", nil)
	assert.Empty(t, x.events())
}
