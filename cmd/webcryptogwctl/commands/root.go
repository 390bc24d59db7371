package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/app"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/store"
)

var (
	home       string
	passphrase string
	serverAddr string

	identityStore domaininterfaces.IdentityStore
	identity      domaintypes.Identity
)

// Execute builds the root command tree and runs it.
func Execute() error {
	root := &cobra.Command{
		Use:   "webcryptogwctl",
		Short: "Control CLI for a local WebCrypto gateway",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".webcryptogwctl")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			identityStore = store.NewIdentityFileStore(home, passphrase)
			id, err := app.LoadOrCreateIdentity(identityStore)
			if err != nil {
				return err
			}
			identity = id
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.webcryptogwctl)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting this CLI's own identity")
	root.PersistentFlags().StringVar(&serverAddr, "server", "http://127.0.0.1:8787", "gateway base URL (http://host:port)")

	root.AddCommand(fingerprintCmd(), discoverCmd(), providersCmd())
	return root.Execute()
}
