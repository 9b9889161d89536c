package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/models"
)

// chatServer 模拟客服后端的 WebSocket 测试桩
type chatServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader
	received chan string
	conns    chan *websocket.Conn
}

func newChatServer(t *testing.T) *chatServer {
	t.Helper()
	cs := &chatServer{
		received: make(chan string, 16),
		conns:    make(chan *websocket.Conn, 4),
	}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/customer-support-agent/") {
			http.NotFound(w, r)
			return
		}
		conn, err := cs.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cs.conns <- conn
		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				cs.received <- string(data)
			}
		}()
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *chatServer) wsURL() string {
	return "ws" + strings.TrimPrefix(cs.srv.URL, "http")
}

func waitStatus(t *testing.T, ch *Channel, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if ch.Status() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("channel status = %q, want %q", ch.Status(), want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestConnectTransitionsToConnected(t *testing.T) {
	cs := newChatServer(t)
	ch := NewChannel(zap.NewNop(), cs.wsURL())

	require.Equal(t, StatusDisconnected, ch.Status())

	statusCh := ch.StatusChanges()
	require.NoError(t, ch.Connect(context.Background(), 7))
	assert.Equal(t, StatusConnected, ch.Status())

	// 状态流里先 connecting 后 connected
	first := <-statusCh
	assert.Equal(t, StatusConnecting, first)
	second := <-statusCh
	assert.Equal(t, StatusConnected, second)
}

func TestConnectFailureFallsBackToDisconnected(t *testing.T) {
	ch := NewChannel(zap.NewNop(), "ws://127.0.0.1:1")

	err := ch.Connect(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, StatusDisconnected, ch.Status())
}

func TestSendMessageWhenConnected(t *testing.T) {
	cs := newChatServer(t)
	ch := NewChannel(zap.NewNop(), cs.wsURL())
	require.NoError(t, ch.Connect(context.Background(), 7))

	msg, err := ch.SendMessage("hello support")
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, models.ChatSenderUser, msg.Sender)
	assert.Equal(t, "hello support", msg.Content)

	// 恰好一条消息进历史，一帧到服务端
	require.Len(t, ch.History(), 1)
	select {
	case frame := <-cs.received:
		assert.Equal(t, "hello support", frame)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive the message frame")
	}
}

func TestSendMessageWhenDisconnected(t *testing.T) {
	ch := NewChannel(zap.NewNop(), "ws://127.0.0.1:1")

	msg, err := ch.SendMessage("hello")
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, msg.ID)
	assert.Empty(t, ch.History(), "failed send must not enter the history")
}

func TestAgentJSONMessageParsed(t *testing.T) {
	cs := newChatServer(t)
	ch := NewChannel(zap.NewNop(), cs.wsURL())
	msgCh := ch.Messages()
	require.NoError(t, ch.Connect(context.Background(), 7))

	conn := <-cs.conns
	payload := `{"content":"how can I help?","sender":"agent","timestamp":"2026-08-28T10:00:00Z"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))

	select {
	case msg := <-msgCh:
		assert.Equal(t, "how can I help?", msg.Content)
		assert.Equal(t, models.ChatSenderAgent, msg.Sender)
		assert.Equal(t, 2026, msg.Timestamp.Year())
	case <-time.After(2 * time.Second):
		t.Fatal("agent message not delivered")
	}
}

func TestAgentPlainTextFallback(t *testing.T) {
	cs := newChatServer(t)
	ch := NewChannel(zap.NewNop(), cs.wsURL())
	msgCh := ch.Messages()
	require.NoError(t, ch.Connect(context.Background(), 7))

	conn := <-cs.conns
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("plain text reply")))

	select {
	case msg := <-msgCh:
		// 不是合法 JSON 时整帧按纯文本处理
		assert.Equal(t, "plain text reply", msg.Content)
		assert.Equal(t, models.ChatSenderAgent, msg.Sender)
	case <-time.After(2 * time.Second):
		t.Fatal("agent message not delivered")
	}
}

func TestServerCloseFlipsStatus(t *testing.T) {
	cs := newChatServer(t)
	ch := NewChannel(zap.NewNop(), cs.wsURL())
	require.NoError(t, ch.Connect(context.Background(), 7))

	conn := <-cs.conns
	conn.Close()

	// 断线后不自动重连，停在 disconnected
	waitStatus(t, ch, StatusDisconnected)
}

func TestConnectReplacesExistingConnection(t *testing.T) {
	cs := newChatServer(t)
	ch := NewChannel(zap.NewNop(), cs.wsURL())

	require.NoError(t, ch.Connect(context.Background(), 7))
	require.NoError(t, ch.Connect(context.Background(), 8))

	assert.Equal(t, StatusConnected, ch.Status())
}

func TestParseAgentMessageMissingContent(t *testing.T) {
	msg := parseAgentMessage([]byte(`{"sender":"agent"}`))
	// 缺 content 字段时退回纯文本
	assert.Equal(t, `{"sender":"agent"}`, msg.Content)
}
