package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/client"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/codec"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/discovery"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/ratchetproto"
)

const dialTimeout = 10 * time.Second

func websocketURL(addr string) string {
	addr = strings.Replace(addr, "http://", "ws://", 1)
	addr = strings.Replace(addr, "https://", "wss://", 1)
	return strings.TrimRight(addr, "/") + "/ws"
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the providers the gateway currently exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := fetchServerInfo()
			if err != nil {
				return err
			}
			bundle, err := discovery.DecodeServerInfo(info)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
			defer cancel()

			c, err := client.Connect(ctx, websocketURL(serverAddr), identity, bundle, ratchetproto.NewFactory())
			if err != nil {
				return err
			}
			defer c.Close()

			data, err := c.Call(ctx, codec.ActionProviderInfo, nil)
			if err != nil {
				return err
			}
			list, err := codec.UnmarshalProviderInfoList(data)
			if err != nil {
				return err
			}
			for _, p := range list {
				fmt.Printf("%s\t%s\trequiresAuth=%v\n", p.ID, p.Name, p.RequiresAuth)
			}
			return nil
		},
	}
}
