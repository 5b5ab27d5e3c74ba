package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// maxPacketSize bounds a single sealed packet. Feed traffic is a stream of
// 41-byte frames, so this is generous.
const maxPacketSize = 1 << 20

// Conn seals every Write into one length-prefixed packet:
// len:u32be nonce[12] ciphertext. Reads unseal whole packets and buffer the
// plaintext.
type Conn struct {
	net.Conn
	aead cipher.AEAD

	wmu     sync.Mutex
	sendCtr uint64

	rmu     sync.Mutex
	recvBuf bytes.Buffer
}

// WrapConn returns conn secured with sessionKey.
func WrapConn(conn net.Conn, sessionKey []byte) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, aead: aead}, nil
}

func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	nonce := make([]byte, c.aead.NonceSize())
	binary.BigEndian.PutUint64(nonce[len(nonce)-8:], c.sendCtr)
	c.sendCtr++

	sealed := c.aead.Seal(nil, nonce, p, nil)
	pkt := make([]byte, 4, 4+len(nonce)+len(sealed))
	binary.BigEndian.PutUint32(pkt, uint32(len(nonce)+len(sealed)))
	pkt = append(pkt, nonce...)
	pkt = append(pkt, sealed...)

	if _, err := c.Conn.Write(pkt); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) Read(p []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	if c.recvBuf.Len() == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
			return 0, err
		}
		length := binary.BigEndian.Uint32(hdr[:])
		ns := c.aead.NonceSize()
		if length > maxPacketSize || int(length) < ns {
			return 0, io.ErrUnexpectedEOF
		}

		pkt := make([]byte, length)
		if _, err := io.ReadFull(c.Conn, pkt); err != nil {
			return 0, err
		}
		pt, err := c.aead.Open(nil, pkt[:ns], pkt[ns:], nil)
		if err != nil {
			return 0, err
		}
		c.recvBuf.Write(pt)
	}
	return c.recvBuf.Read(p)
}
