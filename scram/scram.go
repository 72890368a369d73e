// Package scram implements the client half of RFC 5802 SCRAM-SHA-256, the
// only SASL mechanism the authentication handshake negotiates. It is a
// small deterministic sub-state machine: construct a Client, call its
// three steps in order, and it either produces the next message to send
// or an error that should be surfaced as a fatal authentication failure.
package scram

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/nsidnev/edgedb-go/edgeerr"
)

const minIterations = 4096

// Client drives one SCRAM-SHA-256 exchange for a single (user, password)
// pair. It is used once and discarded; a new Client must be constructed
// for every authentication attempt.
type Client struct {
	user     string
	password string

	clientNonce      string
	clientFirstBare  string
	serverFirst      string
	saltedPassword   []byte
	authMessage      string
}

// New returns a Client ready to produce the client-first message.
func New(user, password string) *Client {
	return &Client{user: saslprep(user), password: saslprep(password)}
}

// ClientFirst returns "n,,n=<user>,r=<nonce>", the GS2 header plus the
// bare client-first-message the AuthMessage is built from.
func (c *Client) ClientFirst() (string, error) {
	nonce, err := randomNonce(18)
	if err != nil {
		return "", edgeerr.New(edgeerr.AuthenticationError, "scram: generating client nonce: %v", err)
	}
	c.clientNonce = nonce
	c.clientFirstBare = fmt.Sprintf("n=%s,r=%s", escape(c.user), c.clientNonce)
	return "n,," + c.clientFirstBare, nil
}

// ServerFirst consumes "r=<nonce>,s=<salt>,i=<iter>" and returns the
// client-final-message including the proof.
func (c *Client) ServerFirst(msg string) (string, error) {
	fields, err := parseFields(msg)
	if err != nil {
		return "", err
	}
	nonce, ok := fields["r"]
	if !ok || !strings.HasPrefix(nonce, c.clientNonce) {
		return "", edgeerr.New(edgeerr.AuthenticationError, "scram: server nonce does not extend client nonce")
	}
	saltB64, ok := fields["s"]
	if !ok {
		return "", edgeerr.New(edgeerr.AuthenticationError, "scram: server-first-message missing salt")
	}
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return "", edgeerr.New(edgeerr.AuthenticationError, "scram: invalid salt encoding: %v", err)
	}
	iterStr, ok := fields["i"]
	if !ok {
		return "", edgeerr.New(edgeerr.AuthenticationError, "scram: server-first-message missing iteration count")
	}
	iter, err := strconv.Atoi(iterStr)
	if err != nil || iter < minIterations {
		return "", edgeerr.New(edgeerr.AuthenticationError, "scram: iteration count %q is invalid or below the minimum of %d", iterStr, minIterations)
	}

	c.serverFirst = msg
	c.saltedPassword = pbkdf2.Key([]byte(c.password), salt, iter, sha256.Size, sha256.New)

	withoutProof := "c=biws,r=" + nonce
	c.authMessage = c.clientFirstBare + "," + c.serverFirst + "," + withoutProof

	clientKey := hmacSHA256(c.saltedPassword, []byte("Client Key"))
	storedKey := sha256.Sum256(clientKey)
	clientSignature := hmacSHA256(storedKey[:], []byte(c.authMessage))

	proof := make([]byte, len(clientKey))
	for i := range proof {
		proof[i] = clientKey[i] ^ clientSignature[i]
	}

	final := withoutProof + ",p=" + base64.StdEncoding.EncodeToString(proof)
	return final, nil
}

// ServerFinal consumes "v=<signature>" and verifies it against the
// server key derived from the same salted password. A mismatch means the
// server does not know the password and must be treated as a fatal
// authentication failure, not retried.
func (c *Client) ServerFinal(msg string) error {
	fields, err := parseFields(msg)
	if err != nil {
		return err
	}
	sigB64, ok := fields["v"]
	if !ok {
		return edgeerr.New(edgeerr.AuthenticationError, "scram: server-final-message missing signature")
	}
	got, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return edgeerr.New(edgeerr.AuthenticationError, "scram: invalid server signature encoding: %v", err)
	}

	serverKey := hmacSHA256(c.saltedPassword, []byte("Server Key"))
	want := hmacSHA256(serverKey, []byte(c.authMessage))
	if !hmac.Equal(got, want) {
		return edgeerr.New(edgeerr.AuthenticationError, "scram: server signature mismatch")
	}
	return nil
}

func hmacSHA256(key, data []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(data)
	return m.Sum(nil)
}

func randomNonce(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// parseFields splits a comma-separated "k=v,k=v" SCRAM message. Values
// may contain "=" themselves (base64), so splitting only cuts on the
// first "=" of each field.
func parseFields(msg string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range strings.Split(msg, ",") {
		i := strings.IndexByte(part, '=')
		if i < 0 {
			return nil, edgeerr.New(edgeerr.AuthenticationError, "scram: malformed field %q", part)
		}
		out[part[:i]] = part[i+1:]
	}
	return out, nil
}

// escape applies SCRAM's username escaping: "=" -> "=3D", "," -> "=2C".
func escape(s string) string {
	s = strings.ReplaceAll(s, "=", "=3D")
	s = strings.ReplaceAll(s, ",", "=2C")
	return s
}

// saslprep is a conservative stand-in for RFC 4013 SASLprep: the
// usernames and passwords this driver ever sends are ASCII (instance
// names, roles, generated secret keys), so the only normalization that
// can matter in practice is trimming stray whitespace.
func saslprep(s string) string {
	return strings.TrimSpace(s)
}
