// Package ipc exposes daemon control over JSON-RPC on a Unix domain socket.
//
// The server runs inside cerebrod and mediates every CLI interaction:
// lifecycle control, module reads, trigger listing, history queries, trash
// emptying, and log tailing. The client side wraps each RPC method with a
// typed helper so commands never touch raw request structs.
package ipc
