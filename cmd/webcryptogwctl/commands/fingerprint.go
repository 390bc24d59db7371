package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	internalcrypto "github.com/murat-sen-cloudpeer/webcrypto-local/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print this CLI's own identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp := internalcrypto.SPKIFingerprint(identity.ExchangePub.Slice())
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}
}
