package storage

import "fmt"

// Key addresses a single value in the store. Keys are built through the typed
// constructors below; the layer above never assembles raw strings.
type Key string

// Kind names an entity id space. Payment and refund ids are allocated
// independently.
type Kind string

const (
	KindPayment Kind = "payment"
	KindRefund  Kind = "refund"
)

// EntityKey addresses the stored record for an entity id.
func EntityKey(kind Kind, id uint64) Key {
	return Key(fmt.Sprintf("%s:%d", kind, id))
}

// CounterKey addresses the id allocator counter for an entity kind.
func CounterKey(kind Kind) Key {
	return Key(fmt.Sprintf("%s:counter", kind))
}

// StatusEntryKey addresses slot pos of the dense per-status id array.
func StatusEntryKey(kind Kind, status string, pos uint64) Key {
	return Key(fmt.Sprintf("%s:status:%s:%d", kind, status, pos))
}

// StatusCountKey addresses the length of the per-status id array.
func StatusCountKey(kind Kind, status string) Key {
	return Key(fmt.Sprintf("%s:status_count:%s", kind, status))
}

// StatusPosKey addresses the reverse mapping from an entity id to its current
// position in its status array.
func StatusPosKey(kind Kind, id uint64) Key {
	return Key(fmt.Sprintf("%s:status_pos:%d", kind, id))
}

// PartyEntryKey addresses entry seq of an append-only per-party id list.
// index names the list (e.g. "customer", "merchant", "payment").
func PartyEntryKey(kind Kind, index, party string, seq uint64) Key {
	return Key(fmt.Sprintf("%s:%s:%s:%d", kind, index, party, seq))
}

// PartyCountKey addresses the length of a per-party id list.
func PartyCountKey(kind Kind, index, party string) Key {
	return Key(fmt.Sprintf("%s:%s:%s:count", kind, index, party))
}

// ProcessedTotalKey addresses the running total of processed refund amounts
// for a payment id.
func ProcessedTotalKey(paymentID uint64) Key {
	return Key(fmt.Sprintf("refund:processed_total:%d", paymentID))
}

// AdminKey addresses the refund ledger's stored admin address.
func AdminKey() Key {
	return Key("refund:admin")
}
