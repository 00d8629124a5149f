package relay

import (
	"net"
	"syscall"
)

// listenConfig returns a net.ListenConfig that sets SO_REUSEADDR on
// the listening socket before bind, so a restarted relay can rebind a
// port still in TIME_WAIT.
func listenConfig() net.ListenConfig {
	return net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
}

// tuneConn applies the relay's fixed per-connection socket settings:
// disable Nagle's algorithm for low latency, and size the kernel
// send/receive buffers for a steady stream of 20 ms frames.
func tuneConn(conn net.Conn) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tcpConn.SetNoDelay(true)
	_ = tcpConn.SetReadBuffer(SocketBufferSize)
	_ = tcpConn.SetWriteBuffer(SocketBufferSize)
}

// SocketBufferSize is the fixed send/receive buffer size applied to
// every accepted connection.
const SocketBufferSize = 32 * 1024

// ListenPort is the relay's fixed listening port.
const ListenPort = 9797
