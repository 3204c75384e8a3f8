package rover_nav

import (
	"fmt"
	"net"
)

// TelemetrySender sends per-tick reports over UDP as CSV.
type TelemetrySender struct {
	conn *net.UDPConn
}

// NewTelemetrySender creates a UDP sender for the given address. An empty
// address yields a sender that drops everything.
func NewTelemetrySender(addr string) (*TelemetrySender, error) {
	if addr == "" {
		return &TelemetrySender{}, nil
	}
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, err
	}
	return &TelemetrySender{conn: conn}, nil
}

// Close releases the UDP socket.
func (s *TelemetrySender) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Send writes "t,run,stage,action,left,right,distance,bits" as a CSV payload.
func (s *TelemetrySender) Send(r TickReport) {
	if s == nil || s.conn == nil {
		return
	}
	_, _ = s.conn.Write([]byte(r.CSV()))
}

// CSV renders the report as a single telemetry line without a trailing newline.
func (r TickReport) CSV() string {
	return fmt.Sprintf("%.3f,%s,%s,%s,%d,%d,%d,%s",
		r.T.Seconds(), r.RunID, r.Stage, r.Action, r.Command.Left, r.Command.Right, int(r.Distance), r.Pattern.Bits())
}
