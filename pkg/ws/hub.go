package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 推送给界面的消息类型
const (
	MsgTypeInit        = "init"         // 初始快照（完整应用状态）
	MsgTypeStoreUpdate = "store_update" // 应用状态变更
	MsgTypeChatMessage = "chat_message" // 聊天消息
	MsgTypeChatStatus  = "chat_status"  // 聊天连接状态
)

// Message WebSocket 消息结构
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client WebSocket 客户端
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub WebSocket 连接管理中心
// 所有界面连接共享同一份应用状态推送
type Hub struct {
	logger     *zap.Logger
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// 新连接的初始快照提供者
	getSnapshot func() interface{}
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetSnapshotProvider 设置初始快照提供者
func (h *Hub) SetSnapshotProvider(provider func() interface{}) {
	h.getSnapshot = provider
}

// Run 运行 Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("UI client connected", zap.Int("total_clients", h.ClientCount()))

			h.sendSnapshot(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("UI client disconnected", zap.Int("total_clients", h.ClientCount()))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 慢消费者，关闭连接
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// sendSnapshot 给新连接的客户端发一份完整状态
func (h *Hub) sendSnapshot(client *Client) {
	if h.getSnapshot == nil {
		h.logger.Warn("No snapshot provider set")
		return
	}

	msg := Message{
		Type: MsgTypeInit,
		Data: h.getSnapshot(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal snapshot", zap.Error(err))
		return
	}

	select {
	case client.send <- data:
		h.logger.Debug("Sent initial snapshot to client")
	default:
		h.logger.Warn("Failed to send snapshot, client buffer full")
	}
}

// Broadcast 广播消息给所有客户端
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

// BroadcastMessage 广播结构化消息给所有客户端
func (h *Hub) BroadcastMessage(msgType string, data interface{}) {
	msg := Message{
		Type: msgType,
		Data: data,
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	h.Broadcast(jsonData)
}

// BroadcastStoreUpdate 广播应用状态变更
func (h *Hub) BroadcastStoreUpdate(update interface{}) {
	h.BroadcastMessage(MsgTypeStoreUpdate, update)
}

// BroadcastChatMessage 广播聊天消息
func (h *Hub) BroadcastChatMessage(msg interface{}) {
	h.BroadcastMessage(MsgTypeChatMessage, msg)
}

// BroadcastChatStatus 广播聊天连接状态
func (h *Hub) BroadcastChatStatus(status string) {
	h.BroadcastMessage(MsgTypeChatStatus, map[string]string{"status": status})
}

// ClientCount 获取客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NewClient 创建客户端
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register 注册客户端
func (c *Client) Register() {
	c.hub.register <- c
}

// Unregister 注销客户端
func (c *Client) Unregister() {
	c.hub.unregister <- c
}

// ReadPump 读取消息（保持连接活跃）
func (c *Client) ReadPump() {
	defer func() {
		c.Unregister()
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		// 界面不通过 WebSocket 上行，读循环只用于感知断开
	}
}

// WritePump 发送消息
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}
