package scout

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgAfter(t *testing.T) {
	tests := []struct {
		name string
		line string
		verb string
		want string
	}{
		{"simple argument", "TRAVERSE /tmp", "TRAVERSE", "/tmp"},
		{"bare verb", "TRAVERSE", "TRAVERSE", ""},
		{"verb with trailing space only", "TRAVERSE ", "TRAVERSE", ""},
		{"argument with spaces survives", "INSPECT /tmp/a file.txt", "INSPECT", "/tmp/a file.txt"},
		{"double space keeps leading space", "TRAVERSE  /tmp", "TRAVERSE", " /tmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, argAfter(tt.line, tt.verb))
		})
	}
}

// closingConn delivers one payload together with io.EOF, the way a
// stream can end in the same read that carries its final bytes.
type closingConn struct {
	net.Conn
	data []byte
	read bool
}

func (c *closingConn) Read(p []byte) (int, error) {
	if c.read {
		return 0, io.EOF
	}
	c.read = true
	return copy(p, c.data), io.EOF
}

func TestReadChunkKeepsBytesDeliveredWithError(t *testing.T) {
	s := &session{conn: &closingConn{data: []byte("EXIT\n")}}
	buf := make([]byte, bufferSize)

	line, err := s.readChunk(buf)
	require.NoError(t, err)
	assert.Equal(t, "EXIT", line, "the final command is dispatched, not dropped")

	_, err = s.readChunk(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadChunkStripsLineEndings(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	s := &session{conn: server}
	buf := make([]byte, bufferSize)

	tests := []struct {
		sent string
		want string
	}{
		{"TRAVERSE /tmp\n", "TRAVERSE /tmp"},
		{"TRAVERSE /tmp\r\n", "TRAVERSE /tmp"},
		{"EXIT", "EXIT"},
	}

	for _, tt := range tests {
		go func() { _, _ = client.Write([]byte(tt.sent)) }()
		got, err := s.readChunk(buf)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
