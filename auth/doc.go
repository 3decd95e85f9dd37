// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifiers, credentials and request identity.

# Row IDs

	id := auth.NewID()  // 26-char ULID

IDs are time-ordered, so sorting by ID follows insertion order. The
activity feed and feature listings use this as their tie-breaker.

# Passwords

Passwords are hashed with bcrypt at the default cost:

	hash, err := auth.HashPassword(password)
	err := auth.CheckPassword(hash, password)

CheckPassword returns ErrInvalidCredentials on mismatch so callers can't
tell a wrong password from a malformed hash.

# Sessions

Session tokens are random UUIDs stored server-side:

	token := auth.NewSessionToken()

The session middleware resolves a token into a Principal and stores it
in the request context:

	ctx = auth.WithPrincipal(ctx, p)
	p, err := auth.PrincipalFrom(ctx) // ErrNoSession when absent

# Visitor Identity

Voters are not accounts. They are identified by network address, which
is hashed before it reaches the database:

	hash := auth.HashVisitor(addr, salt)

Returns the first 16 bytes (32 hex chars) of HMAC-SHA256.

# Slugs

	err := auth.ValidateSlug("my-board")

Slugs are 2-64 characters of lowercase letters and digits separated by
single hyphens.
*/
package auth
