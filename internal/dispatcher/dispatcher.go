package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/codec"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/provider"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/transport"
)

// localRemoteID is the stable logical identifier this gateway pins its one
// paired client under, the server-side counterpart of the literal id a
// client uses for "the unique local server" from its own point of view.
// This gateway serves exactly one paired browser identity at a time, so
// a fixed sentinel stands in for what would otherwise be an address book.
const localRemoteID domaintypes.RemoteID = "0"

// defaultLoginTimeout bounds how long a Login action waits for a
// provider's user-presence prompt before failing with "CryptoLogin
// timeout". The host prompt UI itself is out of scope; Dispatcher supplies
// a PromptFunc that simply waits out the deadline.
const defaultLoginTimeout = 30 * time.Second

// Dispatcher routes decoded ActionEnvelopes from every connected client to
// the right provider operation. It enforces the open-unauth/open-auth
// action-surface split, persists ratchet state before any reply is sent,
// and fans provider hotplug events out to every authorized connection.
type Dispatcher struct {
	log *logrus.Logger

	identity domaintypes.Identity

	preKeys          domaininterfaces.PreKeyStore
	remoteIdentities domaininterfaces.RemoteIdentityStore
	sessionStore     domaininterfaces.RatchetSessionStore
	factory          domaininterfaces.RatchetFactory

	providers *provider.Registry

	loginTimeout time.Duration

	liveMu sync.Mutex
	live   map[*session]transport.Conn
}

// New returns a Dispatcher ready to Serve connections.
func New(
	identity domaintypes.Identity,
	preKeys domaininterfaces.PreKeyStore,
	remoteIdentities domaininterfaces.RemoteIdentityStore,
	sessionStore domaininterfaces.RatchetSessionStore,
	factory domaininterfaces.RatchetFactory,
	providers *provider.Registry,
	log *logrus.Logger,
) *Dispatcher {
	return &Dispatcher{
		log:              log,
		identity:         identity,
		preKeys:          preKeys,
		remoteIdentities: remoteIdentities,
		sessionStore:     sessionStore,
		factory:          factory,
		providers:        providers,
		loginTimeout:     defaultLoginTimeout,
		live:             make(map[*session]transport.Conn),
	}
}

// Serve reads the connection's handshake hello, completes X3DH as the
// responder, then loops decrypting and dispatching ActionEnvelopes until
// the connection closes or ctx is cancelled.
func (d *Dispatcher) Serve(ctx context.Context, conn transport.Conn) error {
	helloFrame, err := conn.Recv(ctx)
	if err != nil {
		return fmt.Errorf("dispatcher: reading handshake: %w", err)
	}
	hello, err := codec.UnmarshalHandshakeHello(helloFrame)
	if err != nil {
		return fmt.Errorf("dispatcher: decoding handshake: %w", err)
	}

	ratchet, err := d.factory.NewResponder(
		d.identity,
		hello.IdentityKey,
		hello.EphemeralKey,
		hello.SignedPreKeyID,
		hello.OneTimePreKeyID,
		hello.HasOneTimePreKey,
		d.preKeys,
	)
	if err != nil {
		return fmt.Errorf("dispatcher: handshake: %w", err)
	}

	if err := d.remoteIdentities.SaveRemoteIdentity(localRemoteID, domaintypes.RemoteIdentity{
		RemoteID:    localRemoteID,
		SigningPub:  hello.SigningKey,
		ExchangePub: hello.IdentityKey,
	}); err != nil {
		return fmt.Errorf("dispatcher: saving remote identity: %w", err)
	}

	sess := newSession(localRemoteID, ratchet)
	if err := d.persistSession(sess); err != nil {
		return fmt.Errorf("dispatcher: persisting session: %w", err)
	}

	d.registerLive(sess, conn)
	defer d.unregisterLive(sess)

	d.log.WithField("remote", string(localRemoteID)).Info("dispatcher: handshake complete")

	for {
		frame, err := conn.Recv(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrClosed) || errors.Is(err, context.Canceled) {
				sess.setState(stateClosed)
				return nil
			}
			sess.setState(stateClosed)
			return err
		}

		sess.ratchetMu.Lock()
		plaintext, decErr := sess.ratchet.Decrypt(frame)
		if decErr == nil {
			decErr = d.persistSessionLocked(sess)
		}
		sess.ratchetMu.Unlock()
		if decErr != nil {
			// Ratchet errors (bad frame, out-of-window message) close the
			// session to force a fresh handshake rather than risk
			// processing a desynchronized stream.
			d.log.WithError(decErr).Warn("dispatcher: ratchet decrypt failed, closing session")
			sess.setState(stateClosed)
			return decErr
		}

		go d.handleEnvelope(ctx, conn, sess, plaintext)
	}
}

func (d *Dispatcher) registerLive(sess *session, conn transport.Conn) {
	d.liveMu.Lock()
	d.live[sess] = conn
	d.liveMu.Unlock()
}

func (d *Dispatcher) unregisterLive(sess *session) {
	d.liveMu.Lock()
	delete(d.live, sess)
	d.liveMu.Unlock()
}

func (d *Dispatcher) persistSession(sess *session) error {
	sess.ratchetMu.Lock()
	defer sess.ratchetMu.Unlock()
	return d.persistSessionLocked(sess)
}

// persistSessionLocked must be called with sess.ratchetMu held. The
// session is written to storage synchronously before any reply tied to
// the advance that produced it reaches the wire, so a crash between ack
// and persist never desyncs the ratchet.
func (d *Dispatcher) persistSessionLocked(sess *session) error {
	blob, err := sess.ratchet.Serialize()
	if err != nil {
		return fmt.Errorf("dispatcher: serializing ratchet: %w", err)
	}
	return d.sessionStore.SaveSession(sess.remote, blob)
}

func (d *Dispatcher) handleEnvelope(ctx context.Context, conn transport.Conn, sess *session, plaintext []byte) {
	env, err := codec.UnmarshalActionEnvelope(plaintext)
	if err != nil {
		d.log.WithError(err).Warn("dispatcher: malformed action envelope, dropping")
		return
	}

	result := d.dispatch(ctx, conn, sess, env)
	d.reply(ctx, conn, sess, result)
}

func (d *Dispatcher) dispatch(ctx context.Context, conn transport.Conn, sess *session, env codec.ActionEnvelope) codec.ResultEnvelope {
	result := codec.ResultEnvelope{Action: env.Action, ActionID: env.ActionID}

	handler, ok := handlerTable[env.Action]
	if !ok {
		result.Error = fmt.Sprintf("Unknown action '%s'", env.Action)
		return result
	}

	if sess.getState() != stateOpenAuth && !codec.AllowedInUnauth(env.Action) {
		result.Error = fmt.Sprintf("Action '%s' requires authorization", env.Action)
		return result
	}

	data, err := handler(ctx, d, sess, conn, env.Payload)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Data = data
	result.HasData = true
	return result
}

func (d *Dispatcher) reply(ctx context.Context, conn transport.Conn, sess *session, result codec.ResultEnvelope) {
	plaintext := result.Marshal()

	sess.ratchetMu.Lock()
	frame, err := sess.ratchet.Encrypt(plaintext)
	if err == nil {
		err = d.persistSessionLocked(sess)
	}
	sess.ratchetMu.Unlock()
	if err != nil {
		d.log.WithError(err).Error("dispatcher: failed to encrypt reply")
		return
	}

	if err := conn.Send(ctx, frame); err != nil {
		d.log.WithError(err).Warn("dispatcher: failed to send reply")
	}
}

// sendUnsolicited ratchet-encrypts and transmits an event envelope that
// carries no matching actionId, distinguishing it from a reply on the
// receiving end.
func (d *Dispatcher) sendUnsolicited(ctx context.Context, conn transport.Conn, sess *session, tag domaintypes.ActionTag, payload []byte) {
	env := codec.ResultEnvelope{Action: tag, Data: payload, HasData: true}
	d.reply(ctx, conn, sess, env)
}

// WatchHotplug fans out provider registry token events to every connection
// currently in open-auth. Callers run it in its own goroutine for the
// lifetime of the daemon; it returns when ctx is cancelled or the
// provider registry's event channel closes.
func (d *Dispatcher) WatchHotplug(ctx context.Context) {
	ch := d.providers.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			d.broadcastTokenEvent(ctx, ev)
		}
	}
}

func (d *Dispatcher) broadcastTokenEvent(ctx context.Context, ev domaintypes.ProviderTokenEvent) {
	payload := codec.MarshalProviderTokenEvent(ev)

	d.liveMu.Lock()
	type target struct {
		sess *session
		conn transport.Conn
	}
	targets := make([]target, 0, len(d.live))
	for s, c := range d.live {
		if s.isAuthorized() {
			targets = append(targets, target{s, c})
		}
	}
	d.liveMu.Unlock()

	for _, t := range targets {
		d.sendUnsolicited(ctx, t.conn, t.sess, codec.EventToken, payload)
	}
}
