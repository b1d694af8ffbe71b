package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/and161185/secure-query-proxy/internal/crypto"
	"github.com/and161185/secure-query-proxy/internal/rpc"
)

func Test_buildCreateRequest_Defaults(t *testing.T) {
	t.Parallel()

	req, err := buildCreateRequest(sendOptions{receiver: " Hospital B Database ", query: " SELECT 1 "})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Receiver != "Hospital B Database" || req.Query != "SELECT 1" {
		t.Fatalf("not trimmed: %+v", req)
	}
	if req.Schema != defaultSchema {
		t.Fatalf("schema: %q", req.Schema)
	}
	if req.Signature != crypto.SignatureLabel("SELECT 1") {
		t.Fatalf("signature: %q", req.Signature)
	}
}

func Test_buildCreateRequest_Explicit(t *testing.T) {
	t.Parallel()

	req, err := buildCreateRequest(sendOptions{
		sender: "a@b", receiver: "B", query: "q", signature: "0xfeed...", schema: "lab",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := rpc.CreateTransmissionRequest{Sender: "a@b", Receiver: "B", Query: "q", Signature: "0xfeed...", Schema: "lab"}
	if *req != want {
		t.Fatalf("got %+v", req)
	}
}

func Test_buildCreateRequest_File(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "q.sql")
	if err := os.WriteFile(p, []byte("SELECT *\nFROM patients\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	req, err := buildCreateRequest(sendOptions{receiver: "B", file: p})
	if err != nil || req.Query != "SELECT *\nFROM patients" {
		t.Fatalf("file: %+v %v", req, err)
	}
	if _, err := buildCreateRequest(sendOptions{receiver: "B", file: p, query: "x"}); err == nil {
		t.Fatalf("want error for --query with --file")
	}
	if _, err := buildCreateRequest(sendOptions{receiver: "B", file: p + ".missing"}); err == nil {
		t.Fatalf("want error for missing file")
	}
}

func Test_buildCreateRequest_Required(t *testing.T) {
	t.Parallel()

	for _, o := range []sendOptions{
		{receiver: "B"},
		{receiver: "B", query: "   "},
		{query: "SELECT 1"},
	} {
		if _, err := buildCreateRequest(o); err == nil {
			t.Fatalf("want error for %+v", o)
		}
	}
}

func Test_filterStatus(t *testing.T) {
	t.Parallel()

	ts := []rpc.Transmission{
		{ID: "1", Status: "completed"},
		{ID: "2", Status: "pending"},
		{ID: "3", Status: "rejected"},
	}
	ids := func(ts []rpc.Transmission) string {
		var b strings.Builder
		for _, t := range ts {
			b.WriteString(t.ID)
		}
		return b.String()
	}
	for want, expect := range map[string]string{
		"":          "123",
		"all":       "123",
		"pending":   "2",
		"completed": "1",
		"rejected":  "3",
		"processed": "13",
	} {
		got, err := filterStatus(ts, want)
		if err != nil || ids(got) != expect {
			t.Fatalf("filter %q: got %q, %v", want, ids(got), err)
		}
	}
	if _, err := filterStatus(ts, "archived"); err == nil {
		t.Fatalf("want error for unknown status")
	}
}

func Test_newestFirst_Copies(t *testing.T) {
	t.Parallel()

	ts := []rpc.Transmission{{ID: "1"}, {ID: "2"}}
	got := newestFirst(ts)
	if got[0].ID != "2" || got[1].ID != "1" {
		t.Fatalf("order: %+v", got)
	}
	if ts[0].ID != "1" {
		t.Fatalf("input must not be modified")
	}
}

func Test_abbreviate(t *testing.T) {
	t.Parallel()

	if got := abbreviate("short", 10); got != "short" {
		t.Fatalf("short: %q", got)
	}
	if got := abbreviate("SELECT *\n  FROM patients", 12); got != "SELECT * FR…" {
		t.Fatalf("long: %q", got)
	}
}
