package greenapi

// Message kinds reported in the typeMessage field.
const (
	TypeText         = "textMessage"
	TypeImage        = "imageMessage"
	TypeVideo        = "videoMessage"
	TypeAudio        = "audioMessage"
	TypeDocument     = "documentMessage"
	TypeLocation     = "locationMessage"
	TypeVCard        = "vcardMessage"
	TypeReaction     = "reactionMessage"
	TypeQuoted       = "quotedMessage"
	TypeExtendedText = "extendedTextMessage"
)

// GroupSuffix terminates the identifier of every group chat.
const GroupSuffix = "@g.us"

// Message is one entry of a GetChatHistory response. Only the fields the
// harvester stores are decoded.
type Message struct {
	IDMessage   string `json:"idMessage"`
	TypeMessage string `json:"typeMessage"`
	ChatID      string `json:"chatId"`
	SenderID    string `json:"senderId"`
	Timestamp   int64  `json:"timestamp"`
	TextMessage string `json:"textMessage"`
	DownloadURL string `json:"downloadUrl"`
	Caption     string `json:"caption"`
	FileName    string `json:"fileName"`
}

// Chat is one entry of a getChats response.
type Chat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GroupData is the GetGroupData response.
type GroupData struct {
	GroupID      string        `json:"groupId"`
	Subject      string        `json:"subject"`
	Owner        *string       `json:"owner"`
	Participants []Participant `json:"participants"`
}

// Participant is a member of a group.
type Participant struct {
	ID           string `json:"id"`
	IsAdmin      bool   `json:"isAdmin"`
	IsSuperAdmin bool   `json:"isSuperAdmin"`
}

type chatHistoryRequest struct {
	ChatID string `json:"chatId"`
	Count  int    `json:"count"`
}

type groupDataRequest struct {
	GroupID string `json:"groupId"`
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	IDMessage string `json:"idMessage"`
}
