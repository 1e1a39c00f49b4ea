// Package deliver sends report chunks to their destination channel. A Sink
// abstracts the channel; the Telegram implementation is the production one.
package deliver

import "context"

// Sink delivers one report chunk. Chunks arrive pre-sized for the channel;
// a sink never re-splits them.
type Sink interface {
	Deliver(ctx context.Context, chunk string) error
}

// Notifier sends short out-of-band diagnostics, such as a no-data notice,
// on the same channel as the report.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
