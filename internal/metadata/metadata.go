// Package metadata holds the header map carried alongside payment events and
// its conversions to and from Watermill message metadata.
package metadata

// Keys used across the event pipeline.
const (
	KeyCorrelationID = "correlation_id"
	KeyPartition     = "partition_key"
	KeyEventSchema   = "event_schema"
)

// Metadata represents the headers carried alongside an event.
type Metadata map[string]string

// With returns a copy of the metadata containing the provided key/value
// pair. The receiver stays unchanged.
func (m Metadata) With(key, value string) Metadata {
	cloned := make(Metadata, len(m)+1)
	for k, v := range m {
		cloned[k] = v
	}
	cloned[key] = value
	return cloned
}
