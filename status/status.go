// Package status broadcasts export progress to websocket subscribers.
// The latest message is replayed to every new subscriber, so a page
// opened mid-export still shows the current state.
package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	INFO = iota
	ERROR
	PROGRESS
)

type status struct {
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
	Type     int       `json:"type"`
	Progress float32   `json:"progress"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		unregisterClient(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

func NewClient(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, 32)}
	registerClient(c)
	go c.writePump()
	globalLock.Lock()
	defer globalLock.Unlock()
	if lastMessage != nil {
		c.send <- lastMessage
	}
	return c
}

var statusBroadcast chan *status
var broadcastList map[*client]bool
var globalLock sync.Mutex
var lastMessage []byte = nil

func registerClient(c *client) {
	globalLock.Lock()
	defer globalLock.Unlock()
	broadcastList[c] = true
}

func unregisterClient(c *client) {
	globalLock.Lock()
	defer globalLock.Unlock()
	delete(broadcastList, c)
}

func init() {
	statusBroadcast = make(chan *status, 16)
	broadcastList = make(map[*client]bool)
	go func() {
		for s := range statusBroadcast {
			data, err := json.Marshal(s)
			if err != nil {
				panic(err)
			}
			globalLock.Lock()
			lastMessage = data
			for c := range broadcastList {
				select {
				case c.send <- data:
				default:
					// Slow subscriber, drop the update rather than stall
					// every other client.
				}
			}
			globalLock.Unlock()
		}
	}()
}

func Status(msg string, _type int, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	statusBroadcast <- &status{
		Message:  msg,
		Time:     time.Now(),
		Type:     _type,
		Progress: progress}
}

func Info(format string, a ...interface{}) {
	Status(fmt.Sprintf(format, a...), INFO, 0.0)
}

func Error(format string, a ...interface{}) {
	Status(fmt.Sprintf(format, a...), ERROR, 0.0)
}

func Progress(progress float32, format string, a ...interface{}) {
	Status(fmt.Sprintf(format, a...), PROGRESS, progress)
}
