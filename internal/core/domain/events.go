package domain

// Inbound event types, as sent by clients over the signaling connection.
const (
	EvFriendRequest  = "friend:request"
	EvFriendAccepted = "friend:accepted"
	EvPostReact      = "post:react"
	EvPostComment    = "post:comment"

	EvCallInitiate = "call:initiate"
	EvCallAccept   = "call:accept"
	EvCallReject   = "call:reject"
	EvCallEnd      = "call:end"

	EvWebRTCOffer     = "webrtc:offer"
	EvWebRTCAnswer    = "webrtc:answer"
	EvWebRTCCandidate = "webrtc:iceCandidate"

	EvStreamStart     = "livestream:start"
	EvStreamJoin      = "livestream:join"
	EvStreamLeave     = "livestream:leave"
	EvStreamEnd       = "livestream:end"
	EvStreamOffer     = "livestream:offer"
	EvStreamAnswer    = "livestream:answer"
	EvStreamCandidate = "livestream:iceCandidate"
)

// Outbound event types.
const (
	EvUserOnline  = "user:online"
	EvUserOffline = "user:offline"
	EvOnlineUsers = "users:online"
	EvError       = "error"

	EvNotifyFriendRequest  = "notification:friendRequest"
	EvNotifyFriendAccepted = "notification:friendAccepted"
	EvNotifyReaction       = "notification:reaction"
	EvNotifyComment        = "notification:comment"
	EvReactionUpdate       = "post:reactionUpdate"
	EvNewComment           = "post:newComment"

	EvCallIncoming = "call:incoming"
	EvCallAccepted = "call:accepted"
	EvCallRejected = "call:rejected"
	EvCallEnded    = "call:ended"
	EvCallError    = "call:error"

	EvStreamStarted      = "livestream:started"
	EvStreamReady        = "livestream:ready"
	EvStreamViewerJoined = "livestream:viewerJoined"
	EvStreamViewerLeft   = "livestream:viewerLeft"
	EvStreamEnded        = "livestream:ended"
)
