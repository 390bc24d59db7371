package commands

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/discovery"
)

// fetchServerInfo GETs the gateway's well-known discovery route and
// decodes the ServerInfo response.
func fetchServerInfo() (domaintypes.ServerInfo, error) {
	resp, err := http.Get(serverAddr + discovery.WellKnownPath)
	if err != nil {
		return domaintypes.ServerInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domaintypes.ServerInfo{}, fmt.Errorf("Cannot GET response")
	}

	var info domaintypes.ServerInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return domaintypes.ServerInfo{}, err
	}
	return info, nil
}

func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Fetch the gateway's discovery info and pre-key bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := fetchServerInfo()
			if err != nil {
				return err
			}
			bundle, err := discovery.DecodeServerInfo(info)
			if err != nil {
				return err
			}
			fmt.Printf("Name: %s\nVersion: %s\nSignedPreKeyID: %s\nOneTimePreKeys: %d\n",
				info.Name, info.Version, bundle.SignedPreKeyID, len(bundle.OneTimePreKeys))
			return nil
		},
	}
}
