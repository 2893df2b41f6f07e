package utils

import (
	"crypto/rsa" // RSA keys for RS256
	"errors"     // Sentinel errors
	"fmt"        // Error wrapping
	"time"       // Token lifetimes

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// SecureTokenIssuerPrefix is the issuer prefix of Firebase ID tokens
const SecureTokenIssuerPrefix = "https://securetoken.google.com/"

var (
	ErrMissingKeyID   = errors.New("token has no kid header")          // Token header lacks a key id
	ErrMissingSubject = errors.New("token has no subject")             // sub claim empty
	ErrSubjectTooLong = errors.New("token subject exceeds 128 bytes")  // sub claim too long
	ErrAuthTimeFuture = errors.New("token auth_time is in the future") // auth_time claim after now
)

// IDTokenClaims are the claims of a Firebase-style ID token
type IDTokenClaims struct {
	Email                string `json:"email,omitempty"`     // Email of the user
	AuthTime             int64  `json:"auth_time,omitempty"` // Time the user authenticated (unix seconds)
	jwt.RegisteredClaims                                     // Standard JWT claims (sub, aud, iss, exp, iat)
}

// Issuer returns the expected issuer for a project
func Issuer(projectID string) string {
	return SecureTokenIssuerPrefix + projectID
}

// GenerateIDToken signs an RS256 ID token for uid, used for local development and tests
func GenerateIDToken(key *rsa.PrivateKey, keyID, projectID, uid, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	// Set token claims
	claims := IDTokenClaims{
		Email:    email,      // Email claim
		AuthTime: now.Unix(), // Authenticated now
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,                              // Subject is the user id
			Audience:  jwt.ClaimStrings{projectID},      // Audience is the project id
			Issuer:    Issuer(projectID),                // Issuer derived from the project id
			IssuedAt:  jwt.NewNumericDate(now),          // Issued at current time
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token expires after ttl
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims) // Create token with claims
	token.Header["kid"] = keyID                                // Key id used by the verifier to pick the key
	return token.SignedString(key)                             // Sign the token with the private key
}

// ParseIDToken parses and validates an ID token. keyFor resolves the public key for a kid.
func ParseIDToken(tokenStr, projectID string, keyFor func(kid string) (*rsa.PublicKey, error)) (*IDTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &IDTokenClaims{}, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string) // Key id from header
		if kid == "" {
			return nil, ErrMissingKeyID
		}
		return keyFor(kid) // Return the public key for validation
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), // Only RS256 is accepted
		jwt.WithAudience(projectID),                                  // aud must be the project id
		jwt.WithIssuer(Issuer(projectID)),                            // iss must match the project
		jwt.WithExpirationRequired(),                                 // exp is mandatory
		jwt.WithIssuedAt(),                                           // iat must not be in the future
	)
	// Check for parsing errors
	if err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}
	claims, ok := token.Claims.(*IDTokenClaims)
	// Validate token and extract claims
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	if len(claims.Subject) > 128 {
		return nil, ErrSubjectTooLong
	}
	if claims.AuthTime > time.Now().Unix() {
		return nil, ErrAuthTimeFuture
	}
	return claims, nil // Return claims if valid
}
