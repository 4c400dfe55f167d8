package websocket

import (
	"bufio"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// upgradeWriter defers the 101 handshake until after the hijack. The
// upgrade library writes the switching-protocols status through the
// ResponseWriter before hijacking, but gin's writer refuses to hijack
// once a status has been recorded. Swallowing the 101 here and replaying
// it onto the hijacked connection satisfies both sides.
type upgradeWriter struct {
	gin.ResponseWriter
	status int
}

func newUpgradeWriter(w gin.ResponseWriter) *upgradeWriter {
	return &upgradeWriter{ResponseWriter: w}
}

func (w *upgradeWriter) WriteHeader(code int) {
	if code == http.StatusSwitchingProtocols {
		w.status = code
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

// WriteHeaderNow is a no-op: the deferred handshake is written by Hijack.
// The upgrade library calls this to flush the 101 on gin writers, which
// would mark the response written and make the hijack fail.
func (w *upgradeWriter) WriteHeaderNow() {}

// Hijack takes over the connection while gin still considers the response
// unwritten, then writes the recorded handshake directly to the socket.
func (w *upgradeWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	conn, brw, err := hj.Hijack()
	if err != nil {
		return nil, nil, err
	}

	status := w.status
	if status == 0 {
		status = http.StatusSwitchingProtocols
	}
	if _, err := fmt.Fprintf(brw.Writer, "HTTP/1.1 %d %s\r\n", status, http.StatusText(status)); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := w.Header().Write(brw.Writer); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if _, err := brw.Writer.WriteString("\r\n"); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := brw.Writer.Flush(); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, brw, nil
}
