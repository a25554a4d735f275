// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/models"
)

// File is the YAML seed document. Everything is optional; absent
// sections are skipped.
type File struct {
	Election   *Election   `yaml:"election"`
	Phases     []Phase     `yaml:"phases"`
	Candidates []Candidate `yaml:"candidates"`
	Stations   []Station   `yaml:"stations"`
	Voters     []Voter     `yaml:"voters"`
}

type Election struct {
	ID            string     `yaml:"id"`
	Name          string     `yaml:"name"`
	Status        string     `yaml:"status"`
	OnlineEnabled *bool      `yaml:"online_enabled"`
	TPSEnabled    *bool      `yaml:"tps_enabled"`
	CurrentPhase  string     `yaml:"current_phase"`
	VotingStart   *time.Time `yaml:"voting_start"`
	VotingEnd     *time.Time `yaml:"voting_end"`
}

type Phase struct {
	Key      string     `yaml:"key"`
	Label    string     `yaml:"label"`
	StartsAt *time.Time `yaml:"starts_at"`
	EndsAt   *time.Time `yaml:"ends_at"`
}

type Candidate struct {
	ID           string `yaml:"id"`
	BallotNumber int    `yaml:"ballot_number"`
	Name         string `yaml:"name"`
	Tagline      string `yaml:"tagline"`
}

type Station struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type Voter struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Token    string `yaml:"token"`
	Channel  string `yaml:"channel"`
	Station  string `yaml:"station"` // station name, resolved to id
	Eligible *bool  `yaml:"eligible"`
	Blocked  bool   `yaml:"blocked"`
}

// Load parses a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// Apply inserts the seed data. Existing rows are left alone (inserts
// use ON CONFLICT DO NOTHING), so applying the same file on every
// startup is safe.
func Apply(db *sql.DB, f *File) error {
	if f.Election == nil {
		return nil
	}
	e := f.Election
	if e.ID == "" || e.Name == "" {
		return fmt.Errorf("seed election needs id and name")
	}
	if e.Status == "" {
		e.Status = models.ElectionDraft
	}
	onlineEnabled := e.OnlineEnabled == nil || *e.OnlineEnabled
	tpsEnabled := e.TPSEnabled == nil || *e.TPSEnabled

	_, err := db.Exec(`
		INSERT INTO election (id, name, status, online_enabled, tps_enabled, current_phase, voting_start, voting_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT DO NOTHING
	`, e.ID, e.Name, e.Status, onlineEnabled, tpsEnabled,
		nullString(e.CurrentPhase), nullTime(e.VotingStart), nullTime(e.VotingEnd), time.Now())
	if err != nil {
		return fmt.Errorf("failed to seed election: %w", err)
	}

	for _, p := range f.Phases {
		_, err := db.Exec(`
			INSERT INTO phase (election_id, key, label, starts_at, ends_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING
		`, e.ID, p.Key, nullString(p.Label), nullTime(p.StartsAt), nullTime(p.EndsAt))
		if err != nil {
			return fmt.Errorf("failed to seed phase %q: %w", p.Key, err)
		}
	}

	for _, c := range f.Candidates {
		id := c.ID
		if id == "" {
			id, _ = auth.GenerateID(12)
		}
		_, err := db.Exec(`
			INSERT INTO candidate (id, election_id, ballot_number, name, tagline)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING
		`, id, e.ID, c.BallotNumber, c.Name, nullString(c.Tagline))
		if err != nil {
			return fmt.Errorf("failed to seed candidate %q: %w", c.Name, err)
		}
	}

	stationIDs := make(map[string]string, len(f.Stations))
	for _, s := range f.Stations {
		id := s.ID
		if id == "" {
			id, _ = auth.GenerateID(8)
		}
		_, err := db.Exec(`
			INSERT INTO station (id, name) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, id, s.Name)
		if err != nil {
			return fmt.Errorf("failed to seed station %q: %w", s.Name, err)
		}
		// The insert may have been a no-op; read back the real id.
		var realID string
		if err := db.QueryRow(`SELECT id FROM station WHERE name = $1`, s.Name).Scan(&realID); err != nil {
			return fmt.Errorf("failed to read station %q: %w", s.Name, err)
		}
		stationIDs[s.Name] = realID
	}

	for _, v := range f.Voters {
		// Voters with generated ids are matched by name on re-apply so
		// the seed never duplicates them.
		var id string
		err := db.QueryRow(`SELECT id FROM voter WHERE name = $1`, v.Name).Scan(&id)
		if err == sql.ErrNoRows {
			id = v.ID
			if id == "" {
				id, _ = auth.GenerateID(12)
			}
			token := v.Token
			if token == "" {
				token, err = auth.GenerateVoterToken()
				if err != nil {
					return fmt.Errorf("failed to generate voter token: %w", err)
				}
			}
			_, err = db.Exec(`
				INSERT INTO voter (id, token, name, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT DO NOTHING
			`, id, token, v.Name, time.Now())
		}
		if err != nil {
			return fmt.Errorf("failed to seed voter %q: %w", v.Name, err)
		}

		channel := v.Channel
		if channel == "" {
			channel = models.ChannelNone
		}
		eligible := v.Eligible == nil || *v.Eligible
		var stationID interface{}
		if v.Station != "" {
			sid, ok := stationIDs[v.Station]
			if !ok {
				return fmt.Errorf("voter %q references unknown station %q", v.Name, v.Station)
			}
			stationID = sid
		}
		_, err = db.Exec(`
			INSERT INTO voter_status (voter_id, election_id, eligible, blocked, channel, station_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING
		`, id, e.ID, eligible, v.Blocked, channel, stationID)
		if err != nil {
			return fmt.Errorf("failed to seed voter status for %q: %w", v.Name, err)
		}

		slog.Info("seeded voter", "name", v.Name, "channel", channel)
	}

	slog.Info("seed applied", "election_id", e.ID,
		"phases", len(f.Phases), "candidates", len(f.Candidates),
		"stations", len(f.Stations), "voters", len(f.Voters))
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
