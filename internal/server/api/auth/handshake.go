package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nexusgame/hydra/apitypes"
)

const (
	HandshakeMagic = "HYD1\x00"
	NonceSize      = 32
	authContext    = "hydrad-auth-v1"
	handshakeOK    = "OK\x00"
)

// ErrInvalidPassword is returned by the server side when the client proof
// does not match.
var ErrInvalidPassword = errors.New("invalid password")

// ReadClientNonce reads the 32-byte client nonce. The magic must already be consumed.
func ReadClientNonce(r io.Reader) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return nil, fmt.Errorf("read client nonce: %w", err)
	}
	return nonce, nil
}

// WriteServerHandshake sends "OK\0" followed by a fresh server nonce.
func WriteServerHandshake(w io.Writer) ([]byte, error) {
	if w == nil {
		return nil, errors.New("write response: nil writer")
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate server nonce: %w", err)
	}
	if _, err := w.Write(append([]byte(handshakeOK), nonce...)); err != nil {
		return nil, fmt.Errorf("write response: %w", err)
	}
	return nonce, nil
}

// IsAuthHandshake reports whether the buffered stream starts with the handshake magic.
func IsAuthHandshake(r *bufio.Reader) (bool, error) {
	b, err := r.Peek(len(HandshakeMagic))
	if err != nil {
		return false, err
	}
	return string(b) == HandshakeMagic, nil
}

func clientProof(key, clientNonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(authContext))
	_, _ = mac.Write(clientNonce)
	return mac.Sum(nil)
}

// ClientHandshake sends magic, nonce and proof, then reads the server nonce.
// A problem+json reply from the server is returned as *apitypes.ApiError.
func ClientHandshake(r *bufio.Reader, w io.Writer, key []byte) (clientNonce, serverNonce []byte, err error) {
	if r == nil || w == nil {
		return nil, nil, errors.New("handshake: nil stream")
	}
	if len(key) == 0 {
		return nil, nil, errors.New("handshake: missing key")
	}

	clientNonce = make([]byte, NonceSize)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, nil, fmt.Errorf("generate client nonce: %w", err)
	}
	msg := append([]byte(HandshakeMagic), clientNonce...)
	msg = append(msg, clientProof(key, clientNonce)...)
	if _, err := w.Write(msg); err != nil {
		return nil, nil, fmt.Errorf("write handshake: %w", err)
	}

	prefix := make([]byte, len(handshakeOK))
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(prefix) != handshakeOK {
		rest, _ := io.ReadAll(r)
		line := strings.TrimSuffix(string(append(prefix, rest...)), "\n")
		var apiErr apitypes.ApiError
		if err := json.Unmarshal([]byte(line), &apiErr); err == nil && (apiErr.Status != 0 || apiErr.Title != "") {
			return nil, nil, &apiErr
		}
		return nil, nil, fmt.Errorf("invalid handshake response from server: %q", line)
	}

	serverNonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return nil, nil, fmt.Errorf("read server nonce: %w", err)
	}
	return clientNonce, serverNonce, nil
}

// ServerHandshake verifies the client proof and answers with the server nonce.
func ServerHandshake(r *bufio.Reader, w io.Writer, key []byte) (clientNonce, serverNonce []byte, err error) {
	if r == nil {
		return nil, nil, errors.New("handshake: nil reader")
	}
	if len(key) == 0 {
		return nil, nil, errors.New("handshake: missing key")
	}
	if _, err := r.Discard(len(HandshakeMagic)); err != nil {
		return nil, nil, fmt.Errorf("discard handshake magic: %w", err)
	}
	clientNonce, err = ReadClientNonce(r)
	if err != nil {
		return nil, nil, err
	}

	proof := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, proof); err != nil {
		return nil, nil, fmt.Errorf("read client auth: %w", err)
	}
	if !hmac.Equal(proof, clientProof(key, clientNonce)) {
		return nil, nil, ErrInvalidPassword
	}

	serverNonce, err = WriteServerHandshake(w)
	if err != nil {
		return nil, nil, err
	}
	return clientNonce, serverNonce, nil
}
