package framework

import (
	"math"
	"sort"
	"time"
)

// Stats is the summary of every connection a server handled
type Stats struct {
	// Connections is the total number of connections accepted
	// Responses is the number of complete responses written
	Connections int64
	Responses   int64
	// BytesRecv is the total number of request bytes read
	// BytesSent is the total number of response bytes written
	BytesRecv int64
	BytesSent int64

	// Statuses counts responses per status code
	Statuses map[int]int64

	// Latencies is all latency in frequency map, key is microseconds (us, 1/1000ms)
	// Latencies[1234]=3 => 3 connections took 1.234 ms
	// MinLatency is the min latency, in microseconds (us, 1/1000ms)
	// MaxLatency is the max latency, in microseconds (us, 1/1000ms)
	Latencies  map[int64]int64
	MinLatency int64
	MaxLatency int64

	StatusErrors int64 // responses with status > 399
	Dropped      int64 // peers that closed without sending a byte
	IOErrors     int64 // connections abandoned on a read or write error
	Panics       int64 // workers recovered from a panic

	mean float64 // LatencyMean of the latency
}

func newStats() *Stats {
	return &Stats{
		Statuses:   make(map[int]int64),
		Latencies:  make(map[int64]int64),
		MinLatency: math.MaxInt64,
	}
}

// record folds one connection into the stats
func (s *Stats) record(rec connRecord) {
	s.Connections++
	s.BytesRecv += int64(rec.bytesRecv)
	s.BytesSent += int64(rec.bytesSent)
	s.mean = 0

	switch rec.outcome {
	case outcomeDropped:
		s.Dropped++
	case outcomeIOError:
		s.IOErrors++
	case outcomePanic:
		s.Panics++
	}
	if rec.outcome == outcomeServed {
		s.Responses++
		s.Statuses[rec.statusCode]++
		// verify response code
		if rec.statusCode > 399 {
			s.StatusErrors++
		}
	}

	latency := int64(rec.latency / time.Microsecond)
	s.Latencies[latency]++
	if latency < s.MinLatency {
		s.MinLatency = latency
	}
	if latency > s.MaxLatency {
		s.MaxLatency = latency
	}
}

// samples is the number of latencies recorded
func (s *Stats) samples() int64 {
	return s.Connections
}

// sortedLatencies returns the distinct latencies in increasing order
func (s *Stats) sortedLatencies() []int64 {
	keys := make([]int64, 0, len(s.Latencies))
	for k := range s.Latencies {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s *Stats) LatencyMean() float64 {
	if s.samples() == 0 {
		return 0
	}
	// already calculated
	if s.mean > 0 {
		return s.mean
	}
	var sum int64 = 0
	for latency, count := range s.Latencies {
		sum += latency * count
	}
	s.mean = float64(sum) / float64(s.samples())
	return s.mean
}

func (s *Stats) LatencyStdev() float64 {
	// not enough data
	if s.samples() < 2 {
		return 0
	}
	var sum float64 = 0
	mean := s.LatencyMean()
	for latency, count := range s.Latencies {
		dif := float64(latency) - mean
		sum += dif * dif * float64(count)
	}
	return math.Sqrt(sum / float64(s.samples()-1))
}

func (s *Stats) LatencyPercentageWithinStdev(n int) float64 {
	if s.samples() == 0 {
		return 0
	}
	mean := s.LatencyMean()
	stdev := s.LatencyStdev()
	upper := int64(math.Ceil(mean + (float64(n) * stdev)))
	lower := int64(math.Floor(mean - (float64(n) * stdev)))

	var sum int64 = 0
	for latency, count := range s.Latencies {
		if latency >= lower && latency <= upper {
			sum += count
		}
	}
	return 100.0 * float64(sum) / float64(s.samples())
}

func (s *Stats) LatencyPercentile(percent float64) int64 {
	if percent < 0.0 || percent > 100 || s.samples() == 0 {
		return 0
	}
	if percent == 100.0 {
		return s.MaxLatency
	}
	rank := int64(math.Round(percent/100.0*float64(s.samples()) + 0.5))
	var total int64 = 0
	for _, latency := range s.sortedLatencies() {
		total += s.Latencies[latency]
		if total >= rank {
			return latency
		}
	}
	return s.MaxLatency
}

// Min returns MinLatency, or 0 when nothing was recorded
func (s *Stats) Min() int64 {
	if s.samples() == 0 {
		return 0
	}
	return s.MinLatency
}
