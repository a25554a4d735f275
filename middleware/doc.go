// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Middleware

  - WithLogging: request start/completion logging via slog
  - CORS: cross-origin headers including the voter token header

# Helpers

  - JSONResponse / ErrorResponse / CodedErrorResponse: JSON writers;
    the coded variant carries the machine-readable error code
  - ParseJSONBody: request body decoding
  - GetClientIP: X-Forwarded-For / X-Real-IP aware client address
*/
package middleware
