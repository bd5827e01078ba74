package clients

import "NinesolChat/app/chat"

// Interface is a chat surface: something that accepts user questions and
// shows answers, backed by the shared session manager.
type Interface interface {
	Subscribe(sessions *chat.Manager) error
}

type Client struct {
	sessions *chat.Manager
}
