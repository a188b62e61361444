package stream

import "io"

// Envelope is one unit of relayed stream output. A terminal envelope has
// Done=true and empty Text; it is sent exactly once, last. An error
// envelope carries Error and Done=true.
type Envelope struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
	Done  bool   `json:"done"`
}

// Sink receives relayed envelopes on the caller's live channel. A Send
// error means the caller is gone; the relay stops immediately so the
// upstream read can be abandoned.
type Sink interface {
	Send(Envelope) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Envelope) error

// Send implements Sink.
func (f SinkFunc) Send(e Envelope) error { return f(e) }

// SinkError reports the caller's sink failing mid-relay. The upstream
// stream itself was still healthy when the relay stopped.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string { return "relay sink failed: " + e.Err.Error() }

func (e *SinkError) Unwrap() error { return e.Err }

// Relay forwards each chunk verbatim to sink as it arrives, with no added
// buffering. On normal completion it sends one terminal envelope and
// returns nil. On abnormal termination it sends one error envelope and
// returns the stream error; envelopes already sent are not retracted. A
// sink failure aborts the relay and is returned as a SinkError, without a
// terminal envelope, since the channel it would travel on is gone.
func Relay(chunks *ChunkReader, sink Sink) error {
	for {
		chunk, err := chunks.Next()
		if err == io.EOF {
			if serr := sink.Send(Envelope{Done: true}); serr != nil {
				return &SinkError{Err: serr}
			}
			return nil
		}
		if err != nil {
			sink.Send(Envelope{Error: err.Error(), Done: true})
			return err
		}
		if serr := sink.Send(Envelope{Text: chunk}); serr != nil {
			return &SinkError{Err: serr}
		}
	}
}
