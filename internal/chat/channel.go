// Package chat 客服聊天通道
// 每个通道对应后端客服系统的一条 WebSocket 连接
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/models"
)

// 连接状态
const (
	StatusDisconnected = "disconnected"
	StatusConnecting   = "connecting"
	StatusConnected    = "connected"
)

// 状态机事件
const (
	eventDial       = "dial"
	eventEstablish  = "establish"
	eventDisconnect = "disconnect"
)

// ErrNotConnected 未连接时发送消息返回此错误
var ErrNotConnected = errors.New("chat channel not connected")

// agentFrame 客服端推送的结构化消息
// 无法解析时整帧按纯文本处理
type agentFrame struct {
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// Channel 客服聊天通道
// 消息列表只增不减，按到达顺序保存
type Channel struct {
	logger *zap.Logger
	host   string

	mu       sync.RWMutex
	fsm      *fsm.FSM
	conn     *websocket.Conn
	userID   int64
	messages []models.ChatMessage
	done     chan struct{}

	subMu     sync.Mutex
	msgSubs   []chan models.ChatMessage
	statusSub []chan string
}

// NewChannel 创建聊天通道，host 形如 ws://localhost:9000
func NewChannel(logger *zap.Logger, host string) *Channel {
	c := &Channel{
		logger: logger,
		host:   host,
	}
	c.fsm = fsm.NewFSM(
		StatusDisconnected,
		fsm.Events{
			{Name: eventDial, Src: []string{StatusDisconnected}, Dst: StatusConnecting},
			{Name: eventEstablish, Src: []string{StatusConnecting}, Dst: StatusConnected},
			{Name: eventDisconnect, Src: []string{StatusConnecting, StatusConnected}, Dst: StatusDisconnected},
		},
		fsm.Callbacks{
			"after_event": func(_ context.Context, e *fsm.Event) {
				if e.Src != e.Dst {
					c.notifyStatus(e.Dst)
				}
			},
		},
	)
	return c
}

// Status 当前连接状态
func (c *Channel) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fsm.Current()
}

// History 已收发消息的副本，按时间顺序
func (c *Channel) History() []models.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Messages 订阅新消息
func (c *Channel) Messages() <-chan models.ChatMessage {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	ch := make(chan models.ChatMessage, 16)
	c.msgSubs = append(c.msgSubs, ch)
	return ch
}

// StatusChanges 订阅连接状态变化
func (c *Channel) StatusChanges() <-chan string {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	ch := make(chan string, 4)
	c.statusSub = append(c.statusSub, ch)
	return ch
}

// Connect 以用户身份建立连接
// 已有连接时先拆掉旧连接再拨号；断线后不自动重连，由调用方决定
func (c *Channel) Connect(ctx context.Context, userID int64) error {
	c.Disconnect()

	c.mu.Lock()
	if err := c.fsm.Event(ctx, eventDial); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("chat dial: %w", err)
	}
	c.userID = userID
	c.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	url := fmt.Sprintf("%s/customer-support-agent/%d", c.host, userID)
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		c.mu.Lock()
		c.fsm.Event(ctx, eventDisconnect)
		c.mu.Unlock()
		return fmt.Errorf("dial chat channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.done = make(chan struct{})
	done := c.done
	if err := c.fsm.Event(ctx, eventEstablish); err != nil {
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
		return fmt.Errorf("chat establish: %w", err)
	}
	c.mu.Unlock()

	c.logger.Info("Chat channel connected", zap.Int64("user_id", userID))
	go c.readLoop(conn, done)
	return nil
}

// Disconnect 关闭连接，未连接时无操作
func (c *Channel) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	done := c.done
	c.conn = nil
	c.done = nil
	if c.fsm.Current() != StatusDisconnected {
		c.fsm.Event(context.Background(), eventDisconnect)
	}
	c.mu.Unlock()

	if done != nil {
		close(done)
	}
	if conn != nil {
		conn.Close()
	}
}

// SendMessage 发送一条用户消息
// 成功时消息同时进入本地历史；未连接时返回 ErrNotConnected
func (c *Channel) SendMessage(content string) (models.ChatMessage, error) {
	c.mu.Lock()
	conn := c.conn
	connected := c.fsm.Current() == StatusConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		return models.ChatMessage{}, ErrNotConnected
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(content)); err != nil {
		return models.ChatMessage{}, fmt.Errorf("send chat message: %w", err)
	}

	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    models.ChatSenderUser,
		Timestamp: time.Now(),
	}
	c.append(msg)
	return msg, nil
}

// readLoop 读取客服端推送，连接断开时退出并翻转状态
func (c *Channel) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
				// 主动断开，状态已处理
			default:
				c.logger.Warn("Chat channel read failed", zap.Error(err))
				c.mu.Lock()
				if c.conn == conn {
					c.conn = nil
					c.fsm.Event(context.Background(), eventDisconnect)
				}
				c.mu.Unlock()
			}
			return
		}
		c.append(parseAgentMessage(data))
	}
}

// parseAgentMessage 解析客服消息
// 不是合法 JSON 或缺 content 字段时，整帧作为纯文本消息
func parseAgentMessage(data []byte) models.ChatMessage {
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    models.ChatSenderAgent,
		Timestamp: time.Now(),
	}

	var frame agentFrame
	if err := json.Unmarshal(data, &frame); err == nil && frame.Content != "" {
		msg.Content = frame.Content
		if frame.Sender != "" {
			msg.Sender = frame.Sender
		}
		if ts, err := time.Parse(time.RFC3339, frame.Timestamp); err == nil {
			msg.Timestamp = ts
		}
		return msg
	}

	msg.Content = string(data)
	return msg
}

// append 追加消息并通知订阅者
func (c *Channel) append(msg models.ChatMessage) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.msgSubs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (c *Channel) notifyStatus(status string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.statusSub {
		select {
		case ch <- status:
		default:
		}
	}
}
