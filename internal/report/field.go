package report

import "strings"

// Field identifies one received flag of the report.
type Field uint8

const (
	FieldRSSI Field = 1 << iota
	FieldLatency
	FieldThroughput
	FieldOFDMA
	FieldTWT

	// AllFields is the full emit condition. FieldThroughput has no
	// sampler, so a report requiring it is never complete.
	AllFields = FieldRSSI | FieldLatency | FieldThroughput | FieldOFDMA | FieldTWT
)

var fieldNames = []struct {
	f    Field
	name string
}{
	{FieldRSSI, "rssi"},
	{FieldLatency, "latency"},
	{FieldThroughput, "throughput"},
	{FieldOFDMA, "ofdma"},
	{FieldTWT, "twt"},
}

// Has reports whether every field in o is set in f.
func (f Field) Has(o Field) bool {
	return f&o == o
}

func (f Field) String() string {
	if f == 0 {
		return "none"
	}

	var names []string
	for _, fn := range fieldNames {
		if f.Has(fn.f) {
			names = append(names, fn.name)
		}
	}

	return strings.Join(names, ",")
}
