package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrConnClosed は切断済みの接続への配信を表す。
	ErrConnClosed = errors.New("connection closed")
	// ErrSendBufferFull は送信バッファ滞留による配信失敗を表す。
	ErrSendBufferFull = errors.New("send buffer full")
)

// Conn は1本のWebSocket接続を包むハンドル。
// 書き込みは専用のwritePumpゴルーチンに集約し、配信側はDeliverで
// バッファ付きチャネルに積むだけにする。
type Conn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	onClose   func(*Conn)
	writeWait time.Duration
}

func newConn(ws *websocket.Conn, sendBuffer int, writeWait time.Duration, onClose func(*Conn)) *Conn {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}
	return &Conn{
		ws:        ws,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
		onClose:   onClose,
		writeWait: writeWait,
	}
}

// Deliver はフレームを送信キューに積む。
// バッファが満杯の場合は遅い購読者とみなして切断し、エラーを返す。
// ブロックしないため、ブロードキャストのファンアウトを滞らせない。
func (c *Conn) Deliver(frame []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		c.Close()
		return ErrSendBufferFull
	}
}

// Close は接続を終了する。複数回呼ばれても後処理は1回だけ実行される（冪等）。
// プロトコルclose、読み書きエラー、送信失敗のいずれが引き金でも同じ経路を通る。
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.onClose != nil {
			c.onClose(c)
		}
		_ = c.ws.Close()
	})
}

// writePump は送信キューのフレームを順にソケットへ書き込む。
// 書き込みエラーで終了し、接続をクローズする。
func (c *Conn) writePump() {
	defer c.Close()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}
