package main

import (
	"fmt"
	"io"
	"os"

	"github.com/casualjim/simmer"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Print channel snapshots written with --snapshot-dir",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := inspect(cmd.OutOrStdout(), path); err != nil {
					return err
				}
			}
			return nil
		},
		SilenceUsage: true,
	}
}

func inspect(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var infos []simmer.ChannelInfo
	if err := json.Unmarshal(data, &infos); err != nil {
		return fmt.Errorf("invalid snapshot %s: %w", path, err)
	}

	fmt.Fprintf(w, "%s %d channels\n", color.CyanString(path), len(infos))
	for _, info := range infos {
		fmt.Fprintf(w, "  %s/%s [%s] receivers=%d capacity=%d\n",
			color.YellowString(info.Actor), info.Channel, info.MessageType, info.Receivers, info.Capacity)
	}
	pp.Fprintln(w, infos)
	return nil
}
