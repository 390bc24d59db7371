// Package client implements the caller side of the secure channel: a
// correlated request/response contract that mirrors internal/dispatcher
// on the other end of the wire.
package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/codec"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/transport"
)

// remoteID is the stable logical identifier this client pins its one
// paired gateway under, mirroring internal/dispatcher's localRemoteID.
const remoteID domaintypes.RemoteID = "0"

// chanState mirrors internal/dispatcher's connState on the caller side.
type chanState int32

const (
	stateConnecting chanState = iota
	stateOpenUnauth
	stateOpenAuth
	stateClosed
)

// EventListener is invoked for every unsolicited event envelope (one
// carrying no actionId, e.g. "authorized"/"token").
type EventListener func(tag domaintypes.ActionTag, payload []byte)

type pendingCall struct {
	resolve chan []byte
	reject  chan error
}

// Client drives one secure channel end to end: dialing, completing X3DH
// as the initiator, and exchanging correlated ActionEnvelope/
// ResultEnvelope pairs with the gateway.
type Client struct {
	conn    transport.Conn
	ratchet domaininterfaces.Ratchet

	state atomic.Int32

	nextActionID atomic.Uint64

	pendingMu sync.Mutex
	pending   map[string]pendingCall

	listenerMu sync.Mutex
	listeners  []EventListener

	recvDone chan struct{}
}

// errNotOpen is returned verbatim as the exact wire-contract error text
// a caller sees for any call made once the channel is no longer open.
var errNotOpen = errors.New("Socket connection is not open")

// Connect dials addr, sends the X3DH handshake hello as the initiator
// against bundle, and starts the background receive loop. The returned
// Client is immediately usable for actions allowed before authorization.
func Connect(ctx context.Context, addr string, identity domaintypes.Identity, bundle domaintypes.PreKeyBundle, factory domaininterfaces.RatchetFactory) (*Client, error) {
	conn, err := transport.Dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("client: dialing: %w", err)
	}

	ratchet, ephemeral, err := factory.NewInitiator(identity, bundle)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: handshake: %w", err)
	}

	hasOTK := len(bundle.OneTimePreKeys) > 0
	var otkID domaintypes.OneTimePreKeyID
	if hasOTK {
		otkID = bundle.OneTimePreKeys[0].ID
	}
	hello := codec.HandshakeHello{
		IdentityKey:      identity.ExchangePub,
		SigningKey:       identity.SigningPub,
		EphemeralKey:     ephemeral,
		SignedPreKeyID:   bundle.SignedPreKeyID,
		OneTimePreKeyID:  otkID,
		HasOneTimePreKey: hasOTK,
	}
	if err := conn.Send(ctx, hello.Marshal()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: sending handshake: %w", err)
	}

	c := &Client{
		conn:     conn,
		ratchet:  ratchet,
		pending:  make(map[string]pendingCall),
		recvDone: make(chan struct{}),
	}
	c.state.Store(int32(stateOpenUnauth))
	go c.recvLoop()
	return c, nil
}

// AddListener registers fn to receive every unsolicited event envelope.
func (c *Client) AddListener(fn EventListener) {
	c.listenerMu.Lock()
	c.listeners = append(c.listeners, fn)
	c.listenerMu.Unlock()
}

func (c *Client) getState() chanState { return chanState(c.state.Load()) }

// markAuthorized promotes the channel to open-auth, called once the
// "authorized" unsolicited event is observed for a Login this client
// issued.
func (c *Client) markAuthorized() { c.state.Store(int32(stateOpenAuth)) }

// Call sends action with payload and blocks until the matching
// ResultEnvelope arrives, ctx is cancelled, or the channel closes.
func (c *Client) Call(ctx context.Context, action domaintypes.ActionTag, payload []byte) ([]byte, error) {
	state := c.getState()
	if state != stateOpenAuth && !(state == stateOpenUnauth && codec.AllowedInUnauth(action)) {
		return nil, errNotOpen
	}

	id := strconv.FormatUint(c.nextActionID.Add(1), 10)
	call := pendingCall{resolve: make(chan []byte, 1), reject: make(chan error, 1)}
	c.pendingMu.Lock()
	c.pending[id] = call
	c.pendingMu.Unlock()

	env := codec.ActionEnvelope{Action: action, ActionID: id, Payload: payload}
	if err := c.send(ctx, env.Marshal()); err != nil {
		c.dropPending(id)
		return nil, err
	}

	select {
	case data := <-call.resolve:
		return data, nil
	case err := <-call.reject:
		return nil, err
	case <-ctx.Done():
		c.dropPending(id)
		return nil, ctx.Err()
	case <-c.recvDone:
		return nil, transport.ErrClosed
	}
}

func (c *Client) dropPending(id string) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

func (c *Client) send(ctx context.Context, plaintext []byte) error {
	frame, err := c.ratchet.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("client: encrypting: %w", err)
	}
	return c.conn.Send(ctx, frame)
}

func (c *Client) recvLoop() {
	defer close(c.recvDone)
	defer c.rejectAllPending(transport.ErrClosed)

	ctx := context.Background()
	for {
		frame, err := c.conn.Recv(ctx)
		if err != nil {
			c.state.Store(int32(stateClosed))
			return
		}

		plaintext, err := c.ratchet.Decrypt(frame)
		if err != nil {
			c.state.Store(int32(stateClosed))
			return
		}

		result, err := codec.UnmarshalResultEnvelope(plaintext)
		if err != nil {
			continue
		}

		if result.ActionID == "" {
			c.dispatchEvent(result)
			continue
		}

		c.pendingMu.Lock()
		call, ok := c.pending[result.ActionID]
		if ok {
			delete(c.pending, result.ActionID)
		}
		c.pendingMu.Unlock()
		if !ok {
			continue
		}

		if result.Error != "" {
			call.reject <- errors.New(result.Error)
		} else {
			call.resolve <- result.Data
		}
	}
}

func (c *Client) dispatchEvent(result codec.ResultEnvelope) {
	if result.Action == codec.EventAuthorized {
		c.markAuthorized()
	}

	c.listenerMu.Lock()
	listeners := append([]EventListener(nil), c.listeners...)
	c.listenerMu.Unlock()
	for _, fn := range listeners {
		fn(result.Action, result.Data)
	}
}

func (c *Client) rejectAllPending(err error) {
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = make(map[string]pendingCall)
	c.pendingMu.Unlock()

	for _, call := range pending {
		call.reject <- err
	}
}

// Close closes the underlying connection. Every call still pending is
// rejected rather than left to hang forever.
func (c *Client) Close() error {
	c.state.Store(int32(stateClosed))
	err := c.conn.Close()
	<-c.recvDone
	return err
}
