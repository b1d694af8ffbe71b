package model

import (
	"testing"
	"time"
)

func TestTransmissionStatus(t *testing.T) {
	t.Parallel()
	cases := []struct {
		s        TransmissionStatus
		valid    bool
		terminal bool
	}{
		{StatusPending, true, false},
		{StatusCompleted, true, true},
		{StatusRejected, true, true},
		{"archived", false, false},
		{"", false, false},
	}
	for _, c := range cases {
		if got := c.s.Valid(); got != c.valid {
			t.Fatalf("%q Valid=%v want %v", c.s, got, c.valid)
		}
		if got := c.s.IsTerminal(); got != c.terminal {
			t.Fatalf("%q IsTerminal=%v want %v", c.s, got, c.terminal)
		}
	}
}

func TestKeyPair_DaysUntilExpiry(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	k := KeyPair{ExpiresAt: now.Add(335 * day)}
	if got := k.DaysUntilExpiry(now); got != 335 {
		t.Fatalf("exact days: got %d", got)
	}

	k.ExpiresAt = now.Add(10*day + time.Hour)
	if got := k.DaysUntilExpiry(now); got != 11 {
		t.Fatalf("partial day must round up: got %d", got)
	}

	k.ExpiresAt = now.Add(-36 * time.Hour)
	if got := k.DaysUntilExpiry(now); got != -1 {
		t.Fatalf("expired: got %d", got)
	}
	if !k.Expired(now) {
		t.Fatalf("want expired")
	}
	if (KeyPair{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Fatalf("want not expired")
	}
}

func TestKeyPair_ExpiringSoon(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	if (KeyPair{ExpiresAt: now.Add(30 * day)}).ExpiringSoon(now) {
		t.Fatalf("30 days left is not soon")
	}
	if !(KeyPair{ExpiresAt: now.Add(29 * day)}).ExpiringSoon(now) {
		t.Fatalf("29 days left is soon")
	}
	if !(KeyPair{ExpiresAt: now.Add(-day)}).ExpiringSoon(now) {
		t.Fatalf("expired keys are flagged too")
	}
}

func TestSchema_CloneIsDeep(t *testing.T) {
	t.Parallel()

	s := Schema{Name: "hospital_db", Tables: []TableSchema{{
		Name: "patients", Columns: []Column{{Name: "patient_id", Type: "INT PRIMARY KEY"}}, RowCount: 1,
	}}}
	c := s.Clone()
	c.Tables[0].Columns[0].Name = "changed"
	c.Tables[0].RowCount = 2
	if s.Tables[0].Columns[0].Name != "patient_id" || s.Tables[0].RowCount != 1 {
		t.Fatalf("clone shares state: %+v", s)
	}
}
