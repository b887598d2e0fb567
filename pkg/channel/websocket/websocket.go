// Package websocket carries TMCL frames over websocket binary messages.
package websocket

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/sius/emotion/pkg/channel"
	"github.com/sius/emotion/pkg/tmcl"
)

// Dial connects to a relay served by Server.
func Dial(url string) (*channel.Buffered, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return channel.NewBuffered(conn), nil
}

// Server relays command frames received from websocket peers to
// a module through Client. Peers are served one exchange at a time
// as Client serializes exchanges.
type Server struct {
	Client *tmcl.Client
}

// NewServer creates a Server.
func NewServer(client *tmcl.Client) *Server {
	return &Server{Client: client}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		s.serve(r.Context(), conn)
	}).ServeHTTP(w, r)
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn) {
	peer := conn.Request().RemoteAddr
	glog.Infof("relay %s connected", peer)
	defer glog.Infof("relay %s disconnected", peer)

	var pending []byte
	for {
		var msg []byte
		if err := websocket.Message.Receive(conn, &msg); err != nil {
			return
		}
		pending = append(pending, msg...)
		for len(pending) >= tmcl.FrameSize {
			var f tmcl.Frame
			copy(f[:], pending)
			pending = pending[tmcl.FrameSize:]
			out, ok := s.relay(ctx, f)
			if !ok {
				continue
			}
			if err := websocket.Message.Send(conn, out[:]); err != nil {
				glog.Warningf("relay %s: %v", peer, err)
				return
			}
		}
	}
}

func (s *Server) relay(ctx context.Context, f tmcl.Frame) (tmcl.Frame, bool) {
	cmd, err := tmcl.DecodeCommand(f)
	if err != nil {
		glog.Warningf("relay: dropped frame % x: %v", f[:], err)
		return f, false
	}
	reply, err := s.Client.Exchange(ctx, cmd)
	if err == nil {
		return reply.Raw, true
	}
	var csErr *tmcl.ChecksumError
	if errors.As(err, &csErr) {
		return csErr.Frame, true
	}
	glog.Warningf("relay %s: %v", cmd, err)
	return f, false
}
