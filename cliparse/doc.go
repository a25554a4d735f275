// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

# Settings

Required:

  - DATABASE_URL (-d): connection string (postgres URL or sqlite path)
  - CREDENTIAL_SALT (--credential-salt): secret for TPS credential HMAC

Optional:

  - PORT (-p): server port (default: 4172)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - SEED_FILE (--seed): YAML seed file applied at startup

CLI flags take precedence over environment variables. Secrets should
come from the environment in production; the flags exist for local
development.
*/
package cliparse
