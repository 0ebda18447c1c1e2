// Package wire converts between HTTP/1.1 bytes and Request/Response values.
//
// It knows nothing about sockets or files: ReadMessage accumulates a request from any
// io.Reader, Parse turns the bytes into a Request and Serialize renders a Response.
package wire
