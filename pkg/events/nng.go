package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register transports
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// frameSeparator splits the topic prefix from the JSON body so SUB sockets
// can filter on the topic
const frameSeparator = 0

// NNGPublisher forwards events on an NNG PUB socket as "topic\x00json"
type NNGPublisher struct {
	sock mangos.Socket
	addr string
	mu   sync.Mutex
}

// ListenNNG binds a PUB socket to addr, e.g. "tcp://127.0.0.1:7600"
func ListenNNG(addr string) (*NNGPublisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind PUB socket to %s: %w", addr, err)
	}
	return &NNGPublisher{sock: sock, addr: addr}, nil
}

// Addr returns the bound address
func (p *NNGPublisher) Addr() string {
	return p.addr
}

// Publish implements Publisher
func (p *NNGPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	frame, err := encodeFrame(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sock == nil {
		return ErrClosed
	}
	if err := p.sock.Send(frame); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Topic, err)
	}
	return nil
}

// Close implements Publisher
func (p *NNGPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sock == nil {
		return nil
	}
	err := p.sock.Close()
	p.sock = nil
	return err
}

// NNGSubscriber receives events published by an NNGPublisher
type NNGSubscriber struct {
	sock mangos.Socket
}

// DialNNG connects a SUB socket to addr and subscribes to topic.
// An empty topic receives everything.
func DialNNG(addr, topic string) (*NNGSubscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, []byte(topic)); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to subscribe to %q: %w", topic, err)
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &NNGSubscriber{sock: sock}, nil
}

// Receive waits up to timeout for the next event
func (s *NNGSubscriber) Receive(timeout time.Duration) (Event, error) {
	if err := s.sock.SetOption(mangos.OptionRecvDeadline, timeout); err != nil {
		return Event{}, err
	}
	msg, err := s.sock.Recv()
	if err != nil {
		return Event{}, err
	}
	return decodeFrame(msg)
}

// Close releases the socket
func (s *NNGSubscriber) Close() error {
	return s.sock.Close()
}

func encodeFrame(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	frame := make([]byte, 0, len(e.Topic)+1+len(body))
	frame = append(frame, e.Topic...)
	frame = append(frame, frameSeparator)
	return append(frame, body...), nil
}

// decodeFrame parses a frame; the payload decodes as generic JSON
func decodeFrame(frame []byte) (Event, error) {
	i := bytes.IndexByte(frame, frameSeparator)
	if i < 0 {
		return Event{}, fmt.Errorf("malformed event frame")
	}
	var e Event
	if err := json.Unmarshal(frame[i+1:], &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return e, nil
}
