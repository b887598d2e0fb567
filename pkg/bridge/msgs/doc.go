// Package msgs defines the messages exchanged with the TMCL bridge.
package msgs

// Requests carry a TMCL command for a module on the bridged bus and
// are answered in order, each reply echoing the request Seq.
//
// Producer: remote host
// Consumer: TMCL bridge
