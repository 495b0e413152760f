package domain

// Inbound events (client -> server).
const (
	EventJoinChatRoom   = "joinChatRoom"
	EventLeaveChatRoom  = "leaveChatRoom"
	EventJoinAdminRoom  = "joinAdminRoom"
	EventJoinUserRoom   = "joinUserRoom"
	EventJoinDoctorRoom = "joinDoctorRoom"
	EventSendMessage    = "sendMessage"
	EventRegisterUser   = "registerUser"
	EventCallUser       = "callUser"
	EventAcceptCall     = "acceptCall"
	EventRejectCall     = "rejectCall"
	EventEndCall        = "endCall"
	EventPing           = "ping"
)

// Outbound events (server -> client).
const (
	EventReceiveMessage = "receiveMessage"
	EventUserList       = "userList"
	EventIncomingCall   = "incomingCall"
	EventCallAccepted   = "callAccepted"
	EventCallRejected   = "callRejected"
	EventCallEnded      = "callEnded"
	EventCallFailed     = "callFailed"
	EventConnected      = "connected"
	EventPong           = "pong"
	EventError          = "error"
)

// Used in both directions.
const (
	EventMessageDeleted = "messageDeleted"
	EventICECandidate   = "iceCandidate"
)
