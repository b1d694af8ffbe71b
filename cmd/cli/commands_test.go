package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/and161185/secure-query-proxy/internal/auth"
	"github.com/and161185/secure-query-proxy/internal/rpc"
)

func at(s string) *timestamppb.Timestamp {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return timestamppb.New(t)
}

type fakeClient struct {
	transmissions []rpc.Transmission
	created       *rpc.CreateTransmissionRequest
	updated       *rpc.UpdateStatusRequest
	updateErr     error
}

func (f *fakeClient) ListTransmissions(context.Context, *rpc.ListTransmissionsRequest, ...grpc.CallOption) (*rpc.ListTransmissionsResponse, error) {
	return &rpc.ListTransmissionsResponse{Transmissions: f.transmissions}, nil
}

func (f *fakeClient) CreateTransmission(_ context.Context, in *rpc.CreateTransmissionRequest, _ ...grpc.CallOption) (*rpc.CreateTransmissionResponse, error) {
	f.created = in
	return &rpc.CreateTransmissionResponse{Transmission: rpc.Transmission{
		ID: "3", Sender: in.Sender, Receiver: in.Receiver, Query: in.Query, Status: "pending",
	}}, nil
}

func (f *fakeClient) UpdateStatus(_ context.Context, in *rpc.UpdateStatusRequest, _ ...grpc.CallOption) (*rpc.UpdateStatusResponse, error) {
	f.updated = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &rpc.UpdateStatusResponse{Transmission: rpc.Transmission{ID: in.ID, Status: in.Status}}, nil
}

func (f *fakeClient) ListAuditLogs(context.Context, *rpc.ListAuditLogsRequest, ...grpc.CallOption) (*rpc.ListAuditLogsResponse, error) {
	return &rpc.ListAuditLogsResponse{AuditLogs: []rpc.AuditLog{{
		ID: "1", Timestamp: at("2025-03-01T12:00:00Z"), Action: "KEY_ROTATED", User: "system", Details: "Rotated keys",
	}}}, nil
}

func (f *fakeClient) ListKeyPairs(context.Context, *rpc.ListKeyPairsRequest, ...grpc.CallOption) (*rpc.ListKeyPairsResponse, error) {
	return &rpc.ListKeyPairsResponse{KeyPairs: []rpc.KeyPair{
		{ID: "1", Name: "Hospital A Primary Key", Fingerprint: "ab12:cd34:ef56:7890", CreatedAt: at("2025-01-30T12:00:00Z"), DaysUntilExpiry: 335},
		{ID: "2", Name: "Backup Key", DaysUntilExpiry: 12, ExpiringSoon: true},
		{ID: "3", Name: "Old Key", DaysUntilExpiry: -2, ExpiringSoon: true, Expired: true},
	}}, nil
}

func (f *fakeClient) ListSchema(context.Context, *rpc.ListSchemaRequest, ...grpc.CallOption) (*rpc.ListSchemaResponse, error) {
	return &rpc.ListSchemaResponse{Name: "hospital_db", Tables: []rpc.TableSchema{
		{Name: "patients", RowCount: 1547, Columns: []rpc.Column{
			{Name: "patient_id", Type: "INT PRIMARY KEY"},
			{Name: "phone", Type: "VARCHAR(20)", Nullable: true},
		}},
		{Name: "doctors", RowCount: 89, Columns: []rpc.Column{{Name: "doctor_id", Type: "INT PRIMARY KEY"}}},
	}}, nil
}

func run(t *testing.T, f *fakeClient, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out}
	a.dial = func() (rpc.TransmissionServiceClient, func(), error) { return f, func() {}, nil }
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, &fakeClient{}, "version")
	if err != nil || !strings.HasPrefix(out, "sqp dev") {
		t.Fatalf("version: %q %v", out, err)
	}
}

func TestCLI_Send(t *testing.T) {
	f := &fakeClient{}
	out, err := run(t, f, "send", "--receiver", "Hospital B Database", "--query", "SELECT 1")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if f.created == nil || f.created.Schema != "hospital_db" || !strings.HasPrefix(f.created.Signature, "0x") {
		t.Fatalf("request: %+v", f.created)
	}
	if !strings.Contains(out, "transmission #3 queued for Hospital B Database") {
		t.Fatalf("output: %q", out)
	}

	f = &fakeClient{}
	if _, err := run(t, f, "send", "--receiver", "B"); err == nil || f.created != nil {
		t.Fatalf("empty query must fail before any call")
	}
}

func TestCLI_ListNewestFirstAndFilter(t *testing.T) {
	f := &fakeClient{transmissions: []rpc.Transmission{
		{ID: "1", Status: "completed", Timestamp: at("2025-03-01T10:00:00Z")},
		{ID: "2", Status: "pending", Timestamp: at("2025-03-01T11:00:00Z")},
		{ID: "3", Status: "rejected", Timestamp: at("2025-03-01T12:00:00Z")},
	}}

	out, err := run(t, f, "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got rpc.ListTransmissionsResponse
	if err := rpc.UnmarshalJSON([]byte(out), &got); err != nil {
		t.Fatalf("json: %v (%q)", err, out)
	}
	ts := got.Transmissions
	if len(ts) != 3 || ts[0].ID != "3" || ts[2].ID != "1" {
		t.Fatalf("order: %+v", ts)
	}
	if !ts[0].Timestamp.AsTime().Equal(at("2025-03-01T12:00:00Z").AsTime()) {
		t.Fatalf("timestamp: %v", ts[0].Timestamp)
	}

	out, err = run(t, f, "list", "--status", "processed")
	if err != nil {
		t.Fatalf("list processed: %v", err)
	}
	if strings.Contains(out, "pending") || !strings.Contains(out, "completed") || !strings.Contains(out, "rejected") {
		t.Fatalf("processed filter: %q", out)
	}

	if _, err := run(t, f, "list", "--status", "archived"); err == nil {
		t.Fatalf("want error for bad status")
	}

	out, err = run(t, &fakeClient{}, "list")
	if err != nil || !strings.Contains(out, "No transmissions found.") {
		t.Fatalf("empty list: %q %v", out, err)
	}
}

func TestCLI_AcceptReject(t *testing.T) {
	f := &fakeClient{}
	out, err := run(t, f, "accept", "2")
	if err != nil || f.updated.Status != "completed" || f.updated.ID != "2" {
		t.Fatalf("accept: %v %+v", err, f.updated)
	}
	if !strings.Contains(out, "transmission #2 completed") {
		t.Fatalf("output: %q", out)
	}

	if _, err := run(t, f, "reject", "5"); err != nil || f.updated.Status != "rejected" {
		t.Fatalf("reject: %v %+v", err, f.updated)
	}

	f.updateErr = status.Error(codes.FailedPrecondition, "transmission already processed")
	_, err = run(t, f, "reject", "5")
	if got := errorText(err); got != "FailedPrecondition: transmission already processed" {
		t.Fatalf("error text: %q", got)
	}

	if _, err := run(t, f, "accept"); err == nil {
		t.Fatalf("want error for missing id")
	}
}

func TestCLI_AuditAndKeys(t *testing.T) {
	out, err := run(t, &fakeClient{}, "audit")
	if err != nil || !strings.Contains(out, "KEY_ROTATED") || !strings.Contains(out, "Rotated keys") {
		t.Fatalf("audit: %q %v", out, err)
	}

	out, err = run(t, &fakeClient{}, "keys")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if !strings.Contains(out, "ab12:cd34:ef56:7890") {
		t.Fatalf("keys output: %q", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 || !strings.Contains(lines[0], "STATE") {
		t.Fatalf("keys table: %q", out)
	}
	for i, want := range []string{"in 335 days", "in 12 days", "2 days ago"} {
		if !strings.Contains(lines[i+1], want) {
			t.Fatalf("row %d: want %q in %q", i+1, want, lines[i+1])
		}
	}
	for i, want := range []string{"active", "expiring soon", "expired"} {
		if !strings.HasSuffix(lines[i+1], want) {
			t.Fatalf("row %d: want state %q in %q", i+1, want, lines[i+1])
		}
	}

	out, err = run(t, &fakeClient{}, "keys", "--json")
	if err != nil {
		t.Fatalf("keys json: %v", err)
	}
	var raw struct {
		KeyPairs []map[string]any `json:"keyPairs"`
	}
	if err := json.Unmarshal([]byte(out), &raw); err != nil || len(raw.KeyPairs) != 3 {
		t.Fatalf("keys json: %v %q", err, out)
	}
	if raw.KeyPairs[1]["expiringSoon"] != true || raw.KeyPairs[2]["expired"] != true {
		t.Fatalf("expiry flags: %v", raw.KeyPairs)
	}
}

func TestCLI_ListPrintsFullIDs(t *testing.T) {
	const id = "7f1c2a9e-3b4d-4c5e-8f90-123456789abc"
	f := &fakeClient{transmissions: []rpc.Transmission{
		{ID: "2", Status: "completed", Timestamp: at("2025-03-01T10:00:00Z")},
		{ID: id, Status: "pending", Timestamp: at("2025-03-01T11:00:00Z"), Query: "SELECT 1"},
	}}

	out, err := run(t, f, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], id+"  pending") {
		t.Fatalf("full id: %q", out)
	}
	if !strings.HasPrefix(lines[2], "2"+strings.Repeat(" ", len(id)-1)+"  completed") {
		t.Fatalf("column width: %q", lines[2])
	}

	if _, err := run(t, f, "accept", id); err != nil || f.updated.ID != id {
		t.Fatalf("accept by listed id: %v %+v", err, f.updated)
	}
}

func TestCLI_Schema(t *testing.T) {
	out, err := run(t, &fakeClient{}, "schema")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, want := range []string{"hospital_db (2 tables)", "patients  1547 rows", "doctors  89 rows", "INT PRIMARY KEY"} {
		if !strings.Contains(out, want) {
			t.Fatalf("want %q in %q", want, out)
		}
	}
	var phone string
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "phone") {
			phone = l
		}
	}
	if !strings.HasSuffix(phone, "NULL") {
		t.Fatalf("nullable column: %q", phone)
	}

	out, err = run(t, &fakeClient{}, "schema", "--json")
	if err != nil {
		t.Fatalf("schema json: %v", err)
	}
	var got rpc.ListSchemaResponse
	if err := rpc.UnmarshalJSON([]byte(out), &got); err != nil || len(got.Tables) != 2 || got.Tables[0].RowCount != 1547 {
		t.Fatalf("schema json: %+v %v", got, err)
	}
}

func TestCLI_Token(t *testing.T) {
	_ = withTmpConfig(t)

	out, err := run(t, &fakeClient{}, "token", "--key", "secret", "--subject", "admin@hospital-a.com", "--save")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	tok := strings.TrimSpace(out)
	signer, _ := auth.NewSigner([]byte("secret"))
	if sub, err := signer.Verify(tok); err != nil || sub != "admin@hospital-a.com" {
		t.Fatalf("verify: %q %v", sub, err)
	}
	if saved, err := loadToken(); err != nil || saved != tok {
		t.Fatalf("saved token: %v", err)
	}

	t.Setenv("SQP_JWT_KEY", "")
	if _, err := run(t, &fakeClient{}, "token", "--subject", "x"); err == nil {
		t.Fatalf("want error without key")
	}
	if _, err := run(t, &fakeClient{}, "token", "--key", "k"); err == nil {
		t.Fatalf("want error without subject")
	}
}

func TestCLI_DialError(t *testing.T) {
	var out bytes.Buffer
	a := &app{out: &out}
	a.dial = func() (rpc.TransmissionServiceClient, func(), error) { return nil, nil, errors.New("no token") }
	cmd := newRootCmd(a)
	cmd.SetArgs([]string{"audit"})
	if err := cmd.Execute(); err == nil || err.Error() != "no token" {
		t.Fatalf("want dial error, got %v", err)
	}
}
