package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/config"
	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/dispatcher"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/provider"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/provider/software"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/ratchetproto"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/store"
	badgerstore "github.com/murat-sen-cloudpeer/webcrypto-local/internal/store/badger"
)

// Stores bundles every persistence interface the daemon needs, so both
// the file and badger backends can be constructed behind one return type.
type Stores struct {
	Identity       domaininterfaces.IdentityStore
	RemoteIdentity domaininterfaces.RemoteIdentityStore
	Session        domaininterfaces.RatchetSessionStore
	PreKey         domaininterfaces.PreKeyStore

	// closer is non-nil only for the badger backend, which owns a
	// single shared *badger.DB that must be closed on shutdown.
	closer func() error
}

// Close releases any resources the store backend holds open.
func (s Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// NewStores constructs the configured persistence backend rooted at
// cfg.Home, creating the directory if needed.
func NewStores(cfg config.Daemon) (Stores, error) {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return Stores{}, fmt.Errorf("app: creating home dir: %w", err)
	}

	switch cfg.Store {
	case config.StoreBadger:
		db, err := badgerstore.Open(cfg.Home+"/badger", cfg.Passphrase)
		if err != nil {
			return Stores{}, fmt.Errorf("app: opening badger store: %w", err)
		}
		return Stores{
			Identity:       db,
			RemoteIdentity: db,
			Session:        db,
			PreKey:         db,
			closer:         db.Close,
		}, nil
	case config.StoreFile, "":
		return Stores{
			Identity:       store.NewIdentityFileStore(cfg.Home, cfg.Passphrase),
			RemoteIdentity: store.NewRemoteIdentityFileStore(cfg.Home),
			Session:        store.NewRatchetSessionFileStore(cfg.Home),
			PreKey:         store.NewPreKeyFileStore(cfg.Home),
		}, nil
	default:
		return Stores{}, fmt.Errorf("app: unknown store backend %q", cfg.Store)
	}
}

// LoadOrCreateIdentity loads the persisted identity, generating and
// saving a fresh one on first run.
func LoadOrCreateIdentity(identityStore domaininterfaces.IdentityStore) (domaintypes.Identity, error) {
	id, err := identityStore.LoadIdentity()
	if err == nil {
		return id, nil
	}
	if !os.IsNotExist(err) && !errors.Is(err, badger.ErrKeyNotFound) {
		return domaintypes.Identity{}, fmt.Errorf("app: loading identity: %w", err)
	}

	id, err = generateIdentity()
	if err != nil {
		return domaintypes.Identity{}, fmt.Errorf("app: generating identity: %w", err)
	}
	if err := identityStore.SaveIdentity(id); err != nil {
		return domaintypes.Identity{}, fmt.Errorf("app: saving identity: %w", err)
	}
	return id, nil
}

// App is the fully wired daemon: a dispatcher ready to Serve connections
// plus the identity and pre-key material the discovery endpoint needs to
// publish.
type App struct {
	Identity   domaintypes.Identity
	Stores     Stores
	Providers  *provider.Registry
	Dispatcher *dispatcher.Dispatcher
	Log        *logrus.Logger
}

// New wires stores, the software provider, and the dispatcher together.
// Callers mount internal/discovery and internal/transport on top.
func New(cfg config.Daemon, log *logrus.Logger) (*App, error) {
	stores, err := NewStores(cfg)
	if err != nil {
		return nil, err
	}

	identity, err := LoadOrCreateIdentity(stores.Identity)
	if err != nil {
		return nil, err
	}

	providers := provider.New()
	providers.Add(software.New())

	d := dispatcher.New(
		identity,
		stores.PreKey,
		stores.RemoteIdentity,
		stores.Session,
		ratchetproto.NewFactory(),
		providers,
		log,
	)

	return &App{
		Identity:   identity,
		Stores:     stores,
		Providers:  providers,
		Dispatcher: d,
		Log:        log,
	}, nil
}
