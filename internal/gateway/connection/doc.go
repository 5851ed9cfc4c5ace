// Package connection manages the client connection to an ECI gateway.
//
// A Gateway moves between two observable states, closed and open:
//
//	closed --Open--> open --Close--> closed
//
// Open dials TCP, or TLS when the configuration carries a keyring, and
// performs the Hello/HelloAck handshake within the connect timeout. While
// open, Flow multiplexes program calls over the one socket. A transport
// failure closes the gateway and fails every pending flow.
package connection
