package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipkeep/internal/control"
	"go.klb.dev/clipkeep/internal/ipc"
	"go.klb.dev/clipkeep/internal/message"
)

const requestTimeout = 10 * time.Second

// newClientCmd builds a sub-command that talks to the daemon. Every client
// command carries --socket, --json and --config.
func newClientCmd(use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, v *viper.Viper, args []string) error) (*cobra.Command, *viper.Viper) {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return run(cmd, v, args) },
	}
	f := cmd.Flags()
	f.Bool("json", false, "output raw JSON")
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd, v
}

// call sends one request to the daemon.
func call(v *viper.Viper, req *message.Message) (*message.Message, error) {
	socket := v.GetString("socket")
	if !ipc.IsRunning(socket) {
		return nil, fmt.Errorf("no clipkeep daemon listening on %s (start one with \"clipkeep daemon\")", socket)
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return control.Call(ctx, socket, req)
}

func printJSON(x any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(x)
}
