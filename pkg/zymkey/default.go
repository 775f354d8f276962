package zymkey

import "sync"

var (
	defaultOnce   sync.Once
	defaultClient *Client
	defaultErr    error
)

// Default returns the process-wide client on the native library, opening it
// on first use. Later calls return the same client, or the same error if the
// first open failed. The session stays open until the process exits.
func Default() (*Client, error) {
	defaultOnce.Do(func() {
		defaultClient, defaultErr = Open(NativeLibrary())
	})
	return defaultClient, defaultErr
}
