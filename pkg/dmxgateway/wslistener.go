// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dmxgateway

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Thermoquad/dmxgate/pkg/dmxproto"
)

const wsShutdownTimeout = 2 * time.Second

// WSListener accepts WebSocket connections and serves the command
// protocol over each, all dispatching into one shared Handler. Remote
// hosts get the same commands and responses as the serial channel, as
// binary WebSocket messages.
type WSListener struct {
	handler  *Handler
	log      logrus.FieldLogger
	username string
	password string
	upgrader websocket.Upgrader
}

// NewWSListener creates a listener for handler. With a non-empty
// username, connections must present matching HTTP Basic credentials.
func NewWSListener(handler *Handler, log logrus.FieldLogger, username, password string) *WSListener {
	return &WSListener{
		handler:  handler,
		log:      log,
		username: username,
		password: password,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Serve listens on addr until ctx is cancelled.
func (l *WSListener) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handleWS)

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), wsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	l.log.WithField("addr", addr).Info("websocket listener started")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (l *WSListener) handleWS(w http.ResponseWriter, r *http.Request) {
	if l.username != "" {
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(l.username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(l.password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="dmxgate"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	log := l.log.WithField("remote", r.RemoteAddr)
	log.Info("websocket client connected")

	conn := newWSChannel(ws)
	defer conn.Close()

	srv := NewServer(l.handler, conn, log)
	if err := srv.Run(r.Context()); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Debug("websocket client disconnected")
	} else {
		log.Info("websocket client disconnected")
	}
}

// wsChannel adapts a server-side WebSocket connection to the protocol
// byte channel. A pump goroutine owns all reads, because a gorilla
// connection is unusable after any read error; bounded waits are done
// against the message queue instead of read deadlines.
type wsChannel struct {
	ws      *websocket.Conn
	msgs    chan []byte
	done    chan struct{}
	buf     []byte
	timeout time.Duration
	once    sync.Once
}

func newWSChannel(ws *websocket.Conn) *wsChannel {
	c := &wsChannel{
		ws:   ws,
		msgs: make(chan []byte, 8),
		done: make(chan struct{}),
	}
	go c.pump()
	return c
}

func (c *wsChannel) pump() {
	defer close(c.done)
	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		select {
		case c.msgs <- data:
		default:
			// Slow consumer: drop rather than stall the pump
		}
	}
}

func (c *wsChannel) Read(p []byte) (int, error) {
	if len(c.buf) > 0 {
		n := copy(p, c.buf)
		c.buf = c.buf[n:]
		return n, nil
	}

	var timer <-chan time.Time
	if c.timeout > 0 {
		t := time.NewTimer(c.timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case data := <-c.msgs:
		n := copy(p, data)
		c.buf = data[n:]
		return n, nil
	case <-c.done:
		return 0, errors.New("websocket connection closed")
	case <-timer:
		return 0, dmxproto.ErrTimeout
	}
}

func (c *wsChannel) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsChannel) SetReadTimeout(d time.Duration) error {
	c.timeout = d
	return nil
}

func (c *wsChannel) Close() error {
	var err error
	c.once.Do(func() { err = c.ws.Close() })
	return err
}
