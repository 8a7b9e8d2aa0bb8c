package mqtt

// FakeReporter records published payloads for test assertions.
type FakeReporter struct {
	// Payloads contains all payloads that were published.
	Payloads []Payload

	// Connected controls the return value of IsConnected.
	Connected bool

	// ConnectError, if set, will be returned (wrapped) by Connect.
	ConnectError error

	// PublishError, if set, will be returned (wrapped) by Publish.
	PublishError error

	ConnectCalls    int
	DisconnectCalls int
}

// NewFakeReporter creates a disconnected FakeReporter.
func NewFakeReporter() *FakeReporter {
	return &FakeReporter{}
}

// Connect marks the reporter connected unless ConnectError is set.
func (f *FakeReporter) Connect() error {
	f.ConnectCalls++
	if f.ConnectError != nil {
		return &ConnectError{Endpoint: "fake", Err: f.ConnectError}
	}
	f.Connected = true
	return nil
}

// IsConnected reports whether the fake reporter is "connected".
func (f *FakeReporter) IsConnected() bool {
	return f.Connected
}

// Publish records the payload.
func (f *FakeReporter) Publish(p Payload) error {
	if !f.Connected {
		return ErrNotConnected
	}
	if f.PublishError != nil {
		return &PublishError{Topic: "fake", Err: f.PublishError}
	}
	f.Payloads = append(f.Payloads, p)
	return nil
}

// Disconnect marks the reporter disconnected.
func (f *FakeReporter) Disconnect() {
	f.DisconnectCalls++
	f.Connected = false
}
