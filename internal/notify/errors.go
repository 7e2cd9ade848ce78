package notify

import "errors"

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrBufferFull       = errors.New("send buffer full")
	ErrUnknownAudience  = errors.New("unknown audience")
)
