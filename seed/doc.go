// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package seed bootstraps an election from a YAML file.

Election administration (creating cycles, importing voter rolls,
managing candidates) lives outside this service; the seed file is how
a deployment or a development environment gets an election into the
database without those tools:

	election:
	  id: senate-2025
	  name: Student Senate 2025
	  status: voting_open
	  voting_start: 2025-12-01T08:00:00Z
	  voting_end: 2025-12-03T17:00:00Z
	phases:
	  - key: registration
	    starts_at: 2025-11-01T00:00:00Z
	    ends_at: 2025-11-14T23:59:59Z
	  - key: voting
	    starts_at: 2025-12-01T08:00:00Z
	    ends_at: 2025-12-03T17:00:00Z
	candidates:
	  - ballot_number: 1
	    name: Ada
	stations:
	  - name: Library Hall
	voters:
	  - name: alice
	    channel: online

Apply is idempotent: inserts use ON CONFLICT DO NOTHING, so the same
file can be applied on every startup.
*/
package seed
