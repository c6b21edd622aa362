package ws

import (
	"errors"
	"time"
)

// OnlineStatus is the global presence broadcast payload. LastSeen is only
// set on the offline edge.
type OnlineStatus struct {
	UserID   uint       `json:"userId"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

const EventOnlineStatus = "online-status"

// MessageRegister announces which user owns this connection. The payload's
// userId is checked against the authenticated socket owner, never trusted
// on its own.
type MessageRegister struct {
	UserID uint `json:"userId"`
}

func (msg *MessageRegister) GetType() string {
	return "registerUser"
}

func (msg *MessageRegister) Process(ctx *MessageContext) error {
	if msg.UserID != 0 && msg.UserID != ctx.UserID {
		return errors.New("cannot register a connection for another user")
	}

	cameOnline, ok := ctx.Hub.RegisterUser(ctx.UserID, ctx.ConnID)
	if !ok {
		return errors.New("connection could not be registered")
	}

	if cameOnline {
		ctx.Hub.BroadcastAll(EventOnlineStatus, OnlineStatus{
			UserID: ctx.UserID,
			Online: true,
		})
	}
	return nil
}

// MessageUserOnline is the legacy alias some clients still send for
// registerUser.
type MessageUserOnline struct {
	UserID uint `json:"userId"`
}

func (msg *MessageUserOnline) GetType() string {
	return "user-online"
}

func (msg *MessageUserOnline) Process(ctx *MessageContext) error {
	register := MessageRegister{UserID: msg.UserID}
	return register.Process(ctx)
}
