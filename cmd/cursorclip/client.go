package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cursorclip/internal/ipc"
	"go.klb.dev/cursorclip/internal/message"
)

// clientCmd builds a sub-command that talks to a running daemon.
func clientCmd(use, short string, args cobra.PositionalArgs, run func(*cobra.Command, *viper.Viper, []string) error) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, a []string) error { return run(cmd, v, a) },
	}
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func dialDaemon(v *viper.Viper) (*ipc.Client, error) {
	return ipc.Dial(v.GetString("socket"))
}

func newHistoryCmd() *cobra.Command {
	cmd := clientCmd("history", "List the clipboard history, most recent first", cobra.NoArgs, runHistory)
	cmd.Flags().Bool("json", false, "output raw JSON")
	return cmd
}

func runHistory(cmd *cobra.Command, v *viper.Viper, _ []string) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	items, err := c.GetHistory()
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	printHistory(cmd.OutOrStdout(), items)
	return nil
}

func printHistory(out io.Writer, items []message.Preview) {
	if len(items) == 0 {
		fmt.Fprintln(out, "History is empty.")
		return
	}
	tw := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID\tTYPE\tCOPIED\tPREVIEW\n")
	_, _ = fmt.Fprintf(tw, "--\t----\t------\t-------\n")
	for _, it := range items {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			it.ItemID, it.ContentType, fmtAge(time.Unix(int64(it.Timestamp), 0)), oneLine(it.ContentPreview, 60))
	}
	_ = tw.Flush()
}

func newSetCmd() *cobra.Command {
	return clientCmd("set ID", "Make a history entry the current clipboard", cobra.ExactArgs(1), runSet)
}

func runSet(cmd *cobra.Command, v *viper.Viper, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SetClipboardByID(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Clipboard set to entry %d.\n", id)
	return nil
}

func newClearCmd() *cobra.Command {
	return clientCmd("clear", "Empty the clipboard history", cobra.NoArgs, runClear)
}

func runClear(cmd *cobra.Command, v *viper.Viper, _ []string) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.ClearHistory(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
	return nil
}

func newWatchCmd() *cobra.Command {
	return clientCmd("watch", "Print new clipboard entries as they are copied", cobra.NoArgs, runWatch)
}

func runWatch(cmd *cobra.Command, v *viper.Viper, _ []string) error {
	c, err := dialDaemon(v)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(ctx, func() { _ = c.Close() })

	out := cmd.OutOrStdout()
	for {
		resp, err := c.Recv()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return errors.New("daemon closed the connection")
			}
			return err
		}
		if resp.Type != message.ResponseNewItem || resp.Item == nil {
			continue
		}
		it := resp.Item
		fmt.Fprintf(out, "%d\t%s\t%s\n", it.ItemID, it.ContentType, oneLine(it.ContentPreview, 80))
	}
}

// oneLine flattens s to a single line of at most n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
