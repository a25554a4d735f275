// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is the HTTP client for the campus-vote API and the
glue between the vote-casting state machines and the server.

It implements every voteflow collaborator interface:

  - Caster: cast endpoints, with 409 conflict codes mapped onto
    voteflow.AlreadyRecorded instead of surfacing as errors
  - CredentialValidator: /tps/validate, with credential codes mapped
    onto ErrCredentialExpired / ErrCredentialInvalid
  - StatusFetcher: the voter status endpoint
  - ScheduleReporter: election + phases combined into a Schedule via
    the phase resolver, preferring the server-reported current phase

All requests take a context; cancelling it abandons the fetch so a
stale result cannot land on a since-replaced view.
*/
package client
