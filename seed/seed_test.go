// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/campus-vote/testutil"
)

const sampleSeed = `
election:
  id: sg-2026
  name: Student Government Election 2026
  status: voting_open
  current_phase: voting
phases:
  - key: campaign
    label: Campaign Period
    starts_at: 2026-08-01T00:00:00Z
    ends_at: 2026-08-20T00:00:00Z
  - key: voting
    label: Voting Day
    starts_at: 2026-08-21T07:00:00Z
    ends_at: 2026-08-21T17:00:00Z
candidates:
  - ballot_number: 1
    name: Pair One
    tagline: Forward together
  - ballot_number: 2
    name: Pair Two
stations:
  - name: Gym A
  - name: Library Hall
voters:
  - name: Alice Online
    channel: online
  - name: Bob Station
    channel: tps
    station: Gym A
  - name: Carol Blocked
    channel: online
    blocked: true
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeSeedFile(t, sampleSeed)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if f.Election == nil || f.Election.ID != "sg-2026" {
		t.Fatalf("Expected election sg-2026, got %+v", f.Election)
	}
	if len(f.Phases) != 2 {
		t.Errorf("Expected 2 phases, got %d", len(f.Phases))
	}
	if len(f.Candidates) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(f.Candidates))
	}
	if len(f.Voters) != 3 {
		t.Errorf("Expected 3 voters, got %d", len(f.Voters))
	}
	if f.Voters[1].Station != "Gym A" {
		t.Errorf("Expected station reference Gym A, got %q", f.Voters[1].Station)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/no/such/file.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeSeedFile(t, "election: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestApply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	f, err := Load(writeSeedFile(t, sampleSeed))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := Apply(db, f); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	var elections, phases, candidates, stations, voters, statuses int
	counts := []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(*) FROM election", &elections},
		{"SELECT COUNT(*) FROM phase", &phases},
		{"SELECT COUNT(*) FROM candidate", &candidates},
		{"SELECT COUNT(*) FROM station", &stations},
		{"SELECT COUNT(*) FROM voter", &voters},
		{"SELECT COUNT(*) FROM voter_status", &statuses},
	}
	for _, c := range counts {
		if err := db.QueryRow(c.query).Scan(c.dst); err != nil {
			t.Fatalf("%s: %v", c.query, err)
		}
	}

	if elections != 1 || phases != 2 || candidates != 2 || stations != 2 || voters != 3 || statuses != 3 {
		t.Errorf("Unexpected row counts: elections=%d phases=%d candidates=%d stations=%d voters=%d statuses=%d",
			elections, phases, candidates, stations, voters, statuses)
	}

	// The station reference resolved to a real id
	var stationID string
	err = db.QueryRow(`
		SELECT vs.station_id FROM voter_status vs
		JOIN voter v ON v.id = vs.voter_id
		WHERE v.name = 'Bob Station'
	`).Scan(&stationID)
	if err != nil {
		t.Fatalf("Failed to query station assignment: %v", err)
	}
	var stationName string
	if err := db.QueryRow(`SELECT name FROM station WHERE id = $1`, stationID).Scan(&stationName); err != nil {
		t.Fatalf("Failed to resolve station: %v", err)
	}
	if stationName != "Gym A" {
		t.Errorf("Expected Gym A, got %s", stationName)
	}

	// The blocked flag carried over
	var blocked bool
	err = db.QueryRow(`
		SELECT vs.blocked FROM voter_status vs
		JOIN voter v ON v.id = vs.voter_id
		WHERE v.name = 'Carol Blocked'
	`).Scan(&blocked)
	if err != nil {
		t.Fatalf("Failed to query blocked flag: %v", err)
	}
	if !blocked {
		t.Error("Expected Carol Blocked to be blocked")
	}
}

// Applying the same file twice must not duplicate rows; startup runs
// the seed on every boot.
func TestApplyIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	f, err := Load(writeSeedFile(t, sampleSeed))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := Apply(db, f); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	if err := Apply(db, f); err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}

	var elections, stations, voters int
	if err := db.QueryRow("SELECT COUNT(*) FROM election").Scan(&elections); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM station").Scan(&stations); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM voter").Scan(&voters); err != nil {
		t.Fatal(err)
	}
	if elections != 1 {
		t.Errorf("Expected 1 election after double apply, got %d", elections)
	}
	if stations != 2 {
		t.Errorf("Expected 2 stations after double apply, got %d", stations)
	}
	if voters != 3 {
		t.Errorf("Expected 3 voters after double apply, got %d", voters)
	}
}

func TestApplyValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	// Empty file is a no-op
	if err := Apply(db, &File{}); err != nil {
		t.Errorf("Apply(empty) error = %v", err)
	}

	// Election without an id is rejected
	if err := Apply(db, &File{Election: &Election{Name: "No ID"}}); err == nil {
		t.Error("Expected error for election without id")
	}

	// A voter referencing an unknown station is rejected
	f := &File{
		Election: &Election{ID: "e1", Name: "E1"},
		Voters:   []Voter{{Name: "Ghost", Channel: "tps", Station: "Nowhere"}},
	}
	if err := Apply(db, f); err == nil {
		t.Error("Expected error for unknown station reference")
	}
}
