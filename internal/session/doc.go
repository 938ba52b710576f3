// Package session supplies the signed-in identity that purchase records are
// committed for. Tokens are HS256 JWTs carrying sub, email and exp claims,
// persisted in a small file under the user's config directory.
package session
