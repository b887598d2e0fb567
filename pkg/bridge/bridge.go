// Package bridge exposes a TMCL bus over MQTT.
//
// Requests published to <id>/cmd are executed in arrival order and
// answered on <id>/reply. While connected the bridge keeps a retained
// JSON description on <id>/meta, cleared on shutdown or, through the
// MQTT will, on connection loss.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/sius/emotion/pkg/bridge/mqtt"
	"github.com/sius/emotion/pkg/bridge/msgs"
	"github.com/sius/emotion/pkg/tmcl"
)

// Topics relative to the bridge ID.
const (
	TopicCmd   = "/cmd"
	TopicReply = "/reply"
	TopicMeta  = "/meta"
)

// RequestQueueSize is the number of requests queued before the bridge
// answers with ErrBusy.
const RequestQueueSize = 64

// ErrBusy is replied when requests come faster than the bus serves them.
var ErrBusy = errors.New("bridge busy")

// Bridge relays requests to a module bus.
type Bridge struct {
	ID     string
	Client *tmcl.Client
	Queue  *mqtt.Queue

	metaJSON []byte
	reqCh    chan []byte
}

// DefaultID identifies the bridge by the machine, falling back to
// the host name.
func DefaultID() string {
	id, err := machineid.ProtectedID("tmcl")
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine id: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "tmcl"
}

// New creates a Bridge connecting to brokerURL.
func New(brokerURL, id string, client *tmcl.Client, meta map[string]string) (*Bridge, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+id+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("tmcl:" + id)
	}
	b := &Bridge{
		ID:       id,
		Client:   client,
		Queue:    mqtt.NewQueue(opts, topicPrefix),
		metaJSON: metaJSON,
		reqCh:    make(chan []byte, RequestQueueSize),
	}
	b.Queue.OnConnect = func(q *mqtt.Queue) {
		q.PubWith(b.ID+TopicMeta, b.metaJSON, 1, true)
	}
	return b, nil
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "bridge"
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.Queue.Sub(b.ID+TopicCmd, b.enqueue)
	defer sub.Close()

	token := b.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	glog.Infof("bridge %s serving", b.ID)

	for {
		select {
		case <-ctx.Done():
			b.Queue.PubWith(b.ID+TopicMeta, nil, 1, true).Wait()
			b.Queue.Close()
			return ctx.Err()
		case payload := <-b.reqCh:
			if out := b.process(ctx, payload); out != nil {
				b.Queue.Pub(b.ID+TopicReply, out)
			}
		}
	}
}

func (b *Bridge) enqueue(topic string, payload []byte) {
	select {
	case b.reqCh <- payload:
		return
	default:
	}
	req, err := msgs.DecodeRequest(payload)
	if err != nil {
		glog.Warningf("%s: bad request: %v", topic, err)
		return
	}
	glog.Warningf("request %d rejected: %v", req.Seq, ErrBusy)
	if out, err := msgs.Encode(msgs.NewReply(req.Seq, tmcl.Reply{}, ErrBusy)); err == nil {
		b.Queue.Pub(b.ID+TopicReply, out)
	}
}

func (b *Bridge) process(ctx context.Context, payload []byte) []byte {
	req, err := msgs.DecodeRequest(payload)
	if err != nil {
		glog.Warningf("bad request: %v", err)
		return nil
	}
	out, err := msgs.Encode(b.Handle(ctx, req))
	if err != nil {
		glog.Errorf("encode reply %d: %v", req.Seq, err)
		return nil
	}
	return out
}

// Handle executes a request and builds its reply.
func (b *Bridge) Handle(ctx context.Context, req *msgs.Request) *msgs.Reply {
	cmd, err := req.Command()
	if err != nil {
		return msgs.NewReply(req.Seq, tmcl.Reply{}, err)
	}
	reply, err := b.Client.Exchange(ctx, cmd)
	if err != nil {
		glog.Warningf("request %d %s: %v", req.Seq, cmd, err)
	}
	return msgs.NewReply(req.Seq, reply, err)
}
