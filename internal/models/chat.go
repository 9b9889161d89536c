package models

import "time"

// 消息发送方
const (
	ChatSenderUser  = "user"
	ChatSenderAgent = "agent"
)

// ChatMessage 聊天消息
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}
