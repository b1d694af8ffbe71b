package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/and161185/secure-query-proxy/internal/auth"
	"github.com/and161185/secure-query-proxy/internal/rpc"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.out, "sqp %s (%s)\n", version, buildDate)
			return err
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	var (
		key     string
		subject string
		ttl     time.Duration
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token with the server's signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if key == "" {
				key = os.Getenv("SQP_JWT_KEY")
			}
			signer, err := auth.NewSigner([]byte(key))
			if err != nil {
				return fmt.Errorf("signing key (--key or $SQP_JWT_KEY): %w", err)
			}
			tok, exp, err := signer.Issue(subject, ttl)
			if err != nil {
				return err
			}
			if save {
				if err := saveToken(tok, exp); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(a.out, tok)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "HS256 signing key")
	cmd.Flags().StringVar(&subject, "subject", "", "acting user recorded in the audit log")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().BoolVar(&save, "save", false, "store the token for later commands")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newSendCmd(a *app) *cobra.Command {
	var o sendOptions
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a query for a receiver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildCreateRequest(o)
			if err != nil {
				return err
			}
			ctx, cli, done, err := a.client(cmd)
			if err != nil {
				return err
			}
			defer done()

			resp, err := cli.CreateTransmission(ctx, req)
			if err != nil {
				return err
			}
			if a.flags.asJSON {
				return a.printJSON(&resp.Transmission)
			}
			t := resp.Transmission
			_, err = fmt.Fprintf(a.out, "transmission #%s queued for %s (%s)\n", t.ID, t.Receiver, t.Status)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.receiver, "receiver", "", "receiving database")
	f.StringVar(&o.query, "query", "", "query text")
	f.StringVar(&o.file, "file", "", "read query from file (- for stdin)")
	f.StringVar(&o.sender, "sender", "", "sender (default: token subject)")
	f.StringVar(&o.signature, "signature", "", "signature label (default: derived from query)")
	f.StringVar(&o.schema, "schema", defaultSchema, "schema label")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var statusFilter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transmissions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := filterStatus(nil, statusFilter); err != nil {
				return err
			}
			ctx, cli, done, err := a.client(cmd)
			if err != nil {
				return err
			}
			defer done()

			resp, err := cli.ListTransmissions(ctx, &rpc.ListTransmissionsRequest{})
			if err != nil {
				return err
			}
			ts, _ := filterStatus(resp.Transmissions, statusFilter)
			ts = newestFirst(ts)
			if a.flags.asJSON {
				return a.printJSON(&rpc.ListTransmissionsResponse{Transmissions: ts})
			}
			if len(ts) == 0 {
				_, err := fmt.Fprintln(a.out, "No transmissions found.")
				return err
			}
			// IDs are printed whole so they can be passed to accept and reject.
			w := len("ID")
			for _, t := range ts {
				w = max(w, len(t.ID))
			}
			fmt.Fprintf(a.out, "%-*s  %-10s  %-20s  %-24s  %-24s  %s\n", w, "ID", "STATUS", "TIME", "FROM", "TO", "QUERY")
			for _, t := range ts {
				fmt.Fprintf(a.out, "%-*s  %-10s  %-20s  %-24s  %-24s  %s\n",
					w, t.ID, t.Status, localTime(t.Timestamp),
					abbreviate(t.Sender, 24), abbreviate(t.Receiver, 24), abbreviate(t.Query, 40))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "", "pending, processed, completed or rejected")
	return cmd
}

func newStatusCmd(a *app, use, target, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cli, done, err := a.client(cmd)
			if err != nil {
				return err
			}
			defer done()

			resp, err := cli.UpdateStatus(ctx, &rpc.UpdateStatusRequest{ID: args[0], Status: target})
			if err != nil {
				return err
			}
			if a.flags.asJSON {
				return a.printJSON(&resp.Transmission)
			}
			_, err = fmt.Fprintf(a.out, "transmission #%s %s\n", resp.Transmission.ID, resp.Transmission.Status)
			return err
		},
	}
}

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cli, done, err := a.client(cmd)
			if err != nil {
				return err
			}
			defer done()

			resp, err := cli.ListAuditLogs(ctx, &rpc.ListAuditLogsRequest{})
			if err != nil {
				return err
			}
			if a.flags.asJSON {
				return a.printJSON(resp)
			}
			fmt.Fprintf(a.out, "%-20s  %-22s  %-24s  %s\n", "TIME", "ACTION", "USER", "DETAILS")
			for _, e := range resp.AuditLogs {
				fmt.Fprintf(a.out, "%-20s  %-22s  %-24s  %s\n",
					localTime(e.Timestamp), e.Action, abbreviate(e.User, 24), e.Details)
			}
			return nil
		},
	}
}

func newKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Show key metadata and days until expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cli, done, err := a.client(cmd)
			if err != nil {
				return err
			}
			defer done()

			resp, err := cli.ListKeyPairs(ctx, &rpc.ListKeyPairsRequest{})
			if err != nil {
				return err
			}
			if a.flags.asJSON {
				return a.printJSON(resp)
			}
			fmt.Fprintf(a.out, "%-4s  %-28s  %-19s  %-10s  %-12s  %s\n",
				"ID", "NAME", "FINGERPRINT", "CREATED", "EXPIRES", "STATE")
			for _, k := range resp.KeyPairs {
				fmt.Fprintf(a.out, "%-4s  %-28s  %-19s  %-10s  %-12s  %s\n",
					k.ID, abbreviate(k.Name, 28), k.Fingerprint, localDate(k.CreatedAt),
					expiresIn(k.DaysUntilExpiry), keyState(&k))
			}
			return nil
		},
	}
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the receiver's tables and columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cli, done, err := a.client(cmd)
			if err != nil {
				return err
			}
			defer done()

			resp, err := cli.ListSchema(ctx, &rpc.ListSchemaRequest{})
			if err != nil {
				return err
			}
			if a.flags.asJSON {
				return a.printJSON(resp)
			}
			fmt.Fprintf(a.out, "%s (%d tables)\n", resp.Name, len(resp.Tables))
			for _, t := range resp.Tables {
				fmt.Fprintf(a.out, "\n%s  %d rows\n", t.Name, t.RowCount)
				for _, c := range t.Columns {
					null := ""
					if c.Nullable {
						null = "NULL"
					}
					fmt.Fprintf(a.out, "  %-20s  %-24s  %s\n", c.Name, c.Type, null)
				}
			}
			return nil
		},
	}
}

func expiresIn(days int32) string {
	switch {
	case days < 0:
		return fmt.Sprintf("%d days ago", -days)
	case days == 0:
		return "today"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

func keyState(k *rpc.KeyPair) string {
	switch {
	case k.Expired:
		return "expired"
	case k.ExpiringSoon:
		return "expiring soon"
	default:
		return "active"
	}
}

func localTime(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return "-"
	}
	return ts.AsTime().Local().Format("2006-01-02 15:04:05")
}

func localDate(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return "-"
	}
	return ts.AsTime().Local().Format("2006-01-02")
}
