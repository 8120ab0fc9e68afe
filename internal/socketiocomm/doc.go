// Package socketiocomm implements the comm.Runtime capability over
// socket.io for sessions whose tiles are rendered by separate processes,
// usually on separate machines.
//
// One process, the conductor, selected by configuring a listen address,
// hosts a socket.io server; every participant, the conductor's own process
// included, connects as a client. The protocol:
//
//	hello(identity)        peer → conductor   startup identity exchange
//	roster(identities)     conductor → all    live set, canonical order
//	late()                 conductor → peer   rejection after publication
//	arrive(frame)          peer → conductor   barrier arrival for a frame
//	release(frame)         conductor → all    barrier complete for a frame
//	clock(round, payload)  relayed both ways  rank-0 broadcast payload
//	lost(identity)         conductor → all    a roster member disconnected
//
// The conductor closes the startup window after the configured join
// timeout: the roster is then published with whoever said hello, and
// membership validation upstream turns missing members into a named,
// structured failure instead of a hang.
package socketiocomm
