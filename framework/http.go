package framework

import (
	"time"
)

// outcome is how a connection ended
type outcome int

const (
	// outcomeServed means a response was written in full
	outcomeServed outcome = iota
	// outcomeDropped means the peer closed before sending anything
	outcomeDropped
	// outcomeIOError means reading or writing the connection failed
	outcomeIOError
	// outcomePanic means the worker panicked and was recovered
	outcomePanic
)

// connRecord is what a worker reports about the one connection it owned
type connRecord struct {
	outcome outcome
	// statusCode is the status sent, 0 if no response was sent
	statusCode int
	// bytesRecv and bytesSent count raw wire bytes
	bytesRecv int
	bytesSent int
	// latency is the time from accept to close
	latency time.Duration
}
