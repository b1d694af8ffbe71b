package main

import (
	"errors"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/and161185/secure-query-proxy/internal/crypto"
	"github.com/and161185/secure-query-proxy/internal/rpc"
)

const defaultSchema = "hospital_db"

// sendOptions are the flags of `sqp send`.
type sendOptions struct {
	sender    string
	receiver  string
	query     string
	file      string
	signature string
	schema    string
}

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

// buildCreateRequest validates the options and fills derived fields.
// A missing signature becomes the query's display label.
func buildCreateRequest(o sendOptions) (*rpc.CreateTransmissionRequest, error) {
	query := o.query
	if o.file != "" {
		if query != "" {
			return nil, errors.New("use either --query or --file")
		}
		b, err := readAll(o.file)
		if err != nil {
			return nil, err
		}
		query = string(b)
	}
	query = strings.TrimSpace(query)
	receiver := strings.TrimSpace(o.receiver)
	if query == "" || receiver == "" {
		return nil, errors.New("query and receiver are required")
	}

	sig := o.signature
	if sig == "" {
		sig = crypto.SignatureLabel(query)
	}
	schema := o.schema
	if schema == "" {
		schema = defaultSchema
	}
	return &rpc.CreateTransmissionRequest{
		Sender:    strings.TrimSpace(o.sender),
		Receiver:  receiver,
		Query:     query,
		Signature: sig,
		Schema:    schema,
	}, nil
}

// filterStatus keeps transmissions matching want. "processed" matches both terminal states.
func filterStatus(ts []rpc.Transmission, want string) ([]rpc.Transmission, error) {
	switch want {
	case "", "all":
		return ts, nil
	case "pending", "completed", "rejected", "processed":
	default:
		return nil, errors.New("--status must be pending, processed, completed or rejected")
	}
	out := make([]rpc.Transmission, 0, len(ts))
	for _, t := range ts {
		switch {
		case t.Status == want:
		case want == "processed" && (t.Status == "completed" || t.Status == "rejected"):
		default:
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// newestFirst returns a reversed copy; the server lists in insertion order.
func newestFirst(ts []rpc.Transmission) []rpc.Transmission {
	out := slices.Clone(ts)
	slices.Reverse(out)
	return out
}

// abbreviate shortens s to n runes for table output.
func abbreviate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
