// Command sqp is a CLI client for the secure query proxy.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/and161185/secure-query-proxy/internal/rpc"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "sqp")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sqp")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (run `sqp token --save`)")
	}
	return tf.AccessToken, nil
}

// ---- grpc dial ----

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func loadTLS(caPath string, skipVerify bool) (credentials.TransportCredentials, error) {
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

// globalFlags are shared by every RPC command.
type globalFlags struct {
	addr      string
	caPath    string
	insecure  bool
	plaintext bool
	token     string
	asJSON    bool
	timeout   time.Duration
}

// resolveToken picks --token, then $SQP_TOKEN, then the saved token file.
func (g *globalFlags) resolveToken() (string, error) {
	if g.token != "" {
		return g.token, nil
	}
	if v := os.Getenv("SQP_TOKEN"); v != "" {
		return v, nil
	}
	return loadToken()
}

func (g *globalFlags) dial() (rpc.TransmissionServiceClient, func(), error) {
	token, err := g.resolveToken()
	if err != nil {
		return nil, nil, err
	}
	var creds credentials.TransportCredentials
	if g.plaintext {
		creds = insecure.NewCredentials()
	} else if creds, err = loadTLS(g.caPath, g.insecure); err != nil {
		return nil, nil, err
	}
	cc, err := grpc.NewClient(g.addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(bearerCreds{token: token, secure: !g.plaintext}),
	)
	if err != nil {
		return nil, nil, err
	}
	return rpc.NewTransmissionServiceClient(cc), func() { _ = cc.Close() }, nil
}

// ---- app ----

// app carries the CLI's dependencies so commands can be tested without a server.
type app struct {
	flags globalFlags
	out   io.Writer
	dial  func() (rpc.TransmissionServiceClient, func(), error)
}

func (a *app) client(cmd *cobra.Command) (context.Context, rpc.TransmissionServiceClient, func(), error) {
	cli, closeFn, err := a.dial()
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), a.flags.timeout)
	return ctx, cli, func() { cancel(); closeFn() }, nil
}

// printJSON writes m in its proto3 JSON form, the same shape the HTTP API serves.
func (a *app) printJSON(m rpc.Message) error {
	opts := rpc.JSON
	opts.Multiline = true
	opts.Indent = "  "
	b, err := opts.Marshal(rpc.ToProto(m))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%s\n", b)
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "sqp",
		Short:         "Client for the secure query proxy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.addr, "addr", "localhost:8443", "server addr")
	pf.StringVar(&a.flags.caPath, "cacert", "", "CA cert (PEM)")
	pf.BoolVar(&a.flags.insecure, "insecure", false, "skip cert verify (dev)")
	pf.BoolVar(&a.flags.plaintext, "plaintext", false, "connect without TLS (dev servers)")
	pf.StringVar(&a.flags.token, "token", "", "bearer token (default $SQP_TOKEN or saved token)")
	pf.BoolVar(&a.flags.asJSON, "json", false, "print JSON instead of tables")
	pf.DurationVar(&a.flags.timeout, "timeout", 30*time.Second, "per-command deadline")

	root.AddCommand(
		newVersionCmd(a),
		newTokenCmd(a),
		newSendCmd(a),
		newListCmd(a),
		newStatusCmd(a, "accept", "completed", "Accept a pending transmission"),
		newStatusCmd(a, "reject", "rejected", "Reject a pending transmission"),
		newAuditCmd(a),
		newKeysCmd(a),
		newSchemaCmd(a),
	)
	return root
}

func errorText(err error) string {
	if st, ok := status.FromError(err); ok {
		return fmt.Sprintf("%s: %s", st.Code(), st.Message())
	}
	return err.Error()
}

// main builds the command tree and maps errors to exit code 1.
func main() {
	a := &app{out: os.Stdout}
	a.dial = a.flags.dial
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", errorText(err))
		os.Exit(1)
	}
}
