package entity

import "time"

// Record is one issued code bound to an owner and an operation.
type Record struct {
	ID          int64
	OwnerID     int64
	OperationID string
	// Code is the plaintext code. The ledger stores a digest only, so records
	// read back from storage carry an empty Code.
	Code      string
	Channel   Channel
	Status    Status
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the record's deadline has passed at now.
func (r Record) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Recipient carries the owner's delivery addresses as supplied by the caller.
type Recipient struct {
	OwnerID        int64
	OperationID    string
	Email          string
	Phone          string
	TelegramChatID string
}

// Address returns the address used by ch and whether it is present.
// The file channel needs no address.
func (r Recipient) Address(ch Channel) (string, bool) {
	switch ch {
	case ChannelEmail:
		return r.Email, r.Email != ""
	case ChannelSMS:
		return r.Phone, r.Phone != ""
	case ChannelTelegram:
		return r.TelegramChatID, r.TelegramChatID != ""
	case ChannelFile:
		return "", true
	default:
		return "", false
	}
}

// SweepResult summarizes one expiry sweep.
type SweepResult struct {
	Scanned int
	Expired int
	Skipped int
	Failed  int
}
