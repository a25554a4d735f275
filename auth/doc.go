// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and the rotating TPS credential
scheme.

# Voter Tokens

Voter session tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateVoterToken()

Tokens are URL-safe base64 encoded and sent in the X-Voter-Token
header.

# TPS Credentials

A TPS credential is the QR token a voter presents at a polling
station. It carries voter ID, election ID, a rotation nonce and an
expiry, signed with HMAC-SHA256:

	token := auth.GenerateCredential(auth.Credential{...}, salt)
	cred, err := auth.ParseCredential(token, salt)

ParseCredential only proves the token is authentic and unexpired. The
rotation nonce must still match the voter's stored current nonce;
rotating stores a fresh nonce, which instantly invalidates every
previously issued token. A credential is single-purpose: nothing in
the online voting path accepts one.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving audit columns:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
