package domain

// Reaction is an inbound post-reaction event from a client.
type Reaction struct {
	PostID       string
	UserID       UserID
	UserName     string
	ReactionType string
	PostOwnerID  UserID
}

// Comment is an inbound post-comment event from a client.
type Comment struct {
	PostID      string
	CommentID   string
	UserID      UserID
	UserName    string
	Content     string
	PostOwnerID UserID
}

// FriendEvent is a friend-request or friend-accepted notification request.
type FriendEvent struct {
	RecipientID UserID
	SenderID    UserID
	SenderName  string
}
