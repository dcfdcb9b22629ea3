package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/CHAND7/ETE-Robotics-App/internal/compose"
)

type fakeSender struct {
	calls  int
	errs   []error
	lastTo []string
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	f.calls++
	if len(msgs) > 0 {
		rcpts, _ := msgs[0].GetRecipients()
		f.lastTo = rcpts
	}
	if f.calls <= len(f.errs) {
		return f.errs[f.calls-1]
	}
	return nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func testBundle() *compose.Bundle {
	return &compose.Bundle{
		RFQRef:   "RFQ/ETE/2026-0830",
		PDFName:  "rfq.pdf",
		PDF:      []byte("%PDF-1.4 fake"),
		DeckName: "rfq_deck.pdf",
		Deck:     []byte("%PDF-1.4 fake deck"),
	}
}

func TestSendOK(t *testing.T) {
	fake := &fakeSender{}
	m := newMailerWithSender(fake, "rfq@ete.example", "RFQ")

	res, err := m.Send(context.Background(), testBundle(), "sales@ete.example")
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, 1, res.Attempts)
	require.Equal(t, 1, fake.calls)
	require.Contains(t, fake.lastTo, "sales@ete.example")
}

func TestSendRetriesOnceOnTransientFailure(t *testing.T) {
	fake := &fakeSender{errs: []error{timeoutErr{}}}
	m := newMailerWithSender(fake, "rfq@ete.example", "")

	res, err := m.Send(context.Background(), testBundle(), "sales@ete.example")
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, 2, res.Attempts)
}

func TestSendStopsAfterSecondTransientFailure(t *testing.T) {
	fake := &fakeSender{errs: []error{timeoutErr{}, timeoutErr{}}}
	m := newMailerWithSender(fake, "rfq@ete.example", "")

	res, err := m.Send(context.Background(), testBundle(), "sales@ete.example")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.True(t, terr.Transient)
	require.False(t, res.OK)
	require.Equal(t, 2, res.Attempts)
	require.Equal(t, 2, fake.calls, "exactly one retry")
}

func TestSendDoesNotRetryPermanentFailure(t *testing.T) {
	fake := &fakeSender{errs: []error{errors.New("550 mailbox unavailable")}}
	m := newMailerWithSender(fake, "rfq@ete.example", "")

	_, err := m.Send(context.Background(), testBundle(), "sales@ete.example")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.False(t, terr.Transient)
	require.Equal(t, 1, fake.calls)
}

func TestSendRejectsBadRecipient(t *testing.T) {
	fake := &fakeSender{}
	m := newMailerWithSender(fake, "rfq@ete.example", "")

	_, err := m.Send(context.Background(), testBundle(), "not-an-address")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, 0, fake.calls, "invalid recipient never reaches the wire")
}

func TestIsTransientClassification(t *testing.T) {
	require.True(t, isTransient(timeoutErr{}))
	require.False(t, isTransient(errors.New("plain failure")))
	require.False(t, isTransient(nil))
}
