package prefs

import (
	"github.com/widdle/reader"
)

// MailboxKey is the preference key holding the most recent pending
// playback command.
const MailboxKey = "pending_media_command"

// Mailbox is the durable last-resort command channel: a single
// preference key, last-write-wins. It implements reader.Mailbox.
type Mailbox struct {
	store *Store
}

// NewMailbox returns a mailbox backed by the given store.
func NewMailbox(store *Store) *Mailbox {
	return &Mailbox{store: store}
}

// PostCommand overwrites the pending command.
func (m *Mailbox) PostCommand(cmd reader.PlaybackCommand) error {
	data, err := cmd.MarshalBinary()
	if err != nil {
		return err
	}

	return m.store.Set(MailboxKey, data)
}

// TakeCommand returns the pending command and clears it. An empty
// mailbox yields (nil, nil): a missing key means no pending command,
// not an error.
func (m *Mailbox) TakeCommand() (*reader.PlaybackCommand, error) {
	data, err := m.store.Get(MailboxKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	cmd := new(reader.PlaybackCommand)
	if err := cmd.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	if err := m.store.Delete(MailboxKey); err != nil {
		return nil, err
	}

	return cmd, nil
}

// Peek returns the pending command without clearing it.
func (m *Mailbox) Peek() (*reader.PlaybackCommand, error) {
	data, err := m.store.Get(MailboxKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	cmd := new(reader.PlaybackCommand)
	if err := cmd.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	return cmd, nil
}
