// Package tmcl provides TMCL protocol support.
package tmcl

// TMCL is the binary command protocol of Trinamic stepper motor modules.
// The host sends a command datagram addressed to a module and the module
// answers with exactly one reply datagram. Both are 9 bytes long:
//
//	command: address, opcode, type, motor, value (4 bytes BE), checksum
//	reply:   reply address, module address, status, opcode, value (4 bytes BE), checksum
//
// The checksum is the 8-bit truncating sum of the first 8 bytes. It can't
// detect swapped bytes or two errors cancelling each other out, but the
// modules require exactly this algorithm.
//
// The codec holds no state. Receive polls a Channel and never blocks; the
// caller owns the polling cadence (see Client).
//
// Producer: host
// Consumer: TMCL module
