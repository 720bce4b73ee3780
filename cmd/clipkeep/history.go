package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipkeep/internal/message"
)

func newHistoryCmd() *cobra.Command {
	cmd, _ := newClientCmd("history", "List the clipboard history, newest first", cobra.NoArgs, runHistory)
	cmd.Flags().Bool("full", false, "include image bytes (with --json)")
	return cmd
}

func runHistory(_ *cobra.Command, v *viper.Viper, _ []string) error {
	resp, err := call(v, &message.Message{Type: message.TypeHistory, Full: v.GetBool("full")})
	if err != nil {
		return err
	}
	if v.GetBool("json") {
		return printJSON(resp.Items)
	}
	if len(resp.Items) == 0 {
		fmt.Println("History is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "#\tKIND\tCOPIED\tPREVIEW\n")
	_, _ = fmt.Fprintf(tw, "-\t----\t------\t-------\n")
	for i, it := range resp.Items {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, it.Kind, fmtAge(it.Time), it.Preview)
	}
	return tw.Flush()
}

func newPasteCmd() *cobra.Command {
	cmd, _ := newClientCmd("paste <index>", "Put history item <index> back on the clipboard", cobra.ExactArgs(1), runPaste)
	cmd.Long = `Writes the history item at <index> (0 = newest) back to the system
clipboard using the slot matching its kind: text, image or file list.`
	return cmd
}

func runPaste(_ *cobra.Command, v *viper.Viper, args []string) error {
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("index %q: %w", args[0], err)
	}
	_, err = call(v, &message.Message{Type: message.TypePaste, Index: idx})
	return err
}

func newClearCmd() *cobra.Command {
	cmd, _ := newClientCmd("clear", "Empty the clipboard history", cobra.NoArgs, func(_ *cobra.Command, v *viper.Viper, _ []string) error {
		_, err := call(v, &message.Message{Type: message.TypeClear})
		return err
	})
	return cmd
}
