// Package outbox stores emitted execution reports durably while they
// await delivery to the report topic. Only output lives here; book state
// is never persisted. Each record moves NEW -> SENT -> ACKED, and a
// failed send stays SENT so the next sweep retries it.
package outbox

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"florin/domain/report"
)

// State is the delivery state of one outbox record.
type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

var keyPrefix = []byte("report/")

// key layout: "report/" + big-endian emission seq, so iteration order is
// emission order.
func keyFor(seq uint64) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], seq)
	return key
}

// value layout: [state:1][payload...]
func encodeValue(state State, payload []byte) []byte {
	buf := make([]byte, 1+len(payload))
	buf[0] = byte(state)
	copy(buf[1:], payload)
	return buf
}

func decodeValue(b []byte) (State, []byte, error) {
	if len(b) < 1 {
		return 0, nil, errors.New("outbox: empty record")
	}
	return State(b[0]), b[1:], nil
}

// Outbox is a pebble-backed durable queue of report payloads keyed by
// emission sequence.
type Outbox struct {
	db   *pebble.DB
	next atomic.Uint64
}

// Open opens (or creates) an outbox in dir and resumes the emission
// sequence after the highest stored record.
func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	o := &Outbox{db: db}
	if err := o.resume(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return o, nil
}

func (o *Outbox) resume() error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: keyPrefix,
		UpperBound: append(append([]byte{}, keyPrefix...), 0xff),
	})
	if err != nil {
		return err
	}
	defer iter.Close()
	if iter.Last() && len(iter.Key()) == len(keyPrefix)+8 {
		o.next.Store(binary.BigEndian.Uint64(iter.Key()[len(keyPrefix):]))
	}
	return iter.Error()
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// Emit stores one report as a NEW record. Implements engine.Sink.
func (o *Outbox) Emit(rec report.Execution) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = o.Append(payload)
	return err
}

// Append stores a raw payload and returns its emission sequence.
func (o *Outbox) Append(payload []byte) (uint64, error) {
	seq := o.next.Add(1)
	return seq, o.db.Set(keyFor(seq), encodeValue(StateNew, payload), pebble.Sync)
}

// MarkSent records that a send was attempted.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.setState(seq, StateSent)
}

// MarkAcked records broker acknowledgment; acked records are skipped by
// every later sweep.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.setState(seq, StateAcked)
}

func (o *Outbox) setState(seq uint64, state State) error {
	key := keyFor(seq)
	val, closer, err := o.db.Get(key)
	if err != nil {
		return err
	}
	_, payload, err := decodeValue(val)
	updated := encodeValue(state, payload)
	closer.Close()
	if err != nil {
		return err
	}
	return o.db.Set(key, updated, pebble.Sync)
}

// State returns the delivery state of a record.
func (o *Outbox) State(seq uint64) (State, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return 0, err
	}
	defer closer.Close()
	state, _, err := decodeValue(val)
	return state, err
}

// ScanPending visits every record not yet acked, in emission order.
func (o *Outbox) ScanPending(fn func(seq uint64, payload []byte) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: keyPrefix,
		UpperBound: append(append([]byte{}, keyPrefix...), 0xff),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) != len(keyPrefix)+8 {
			continue
		}
		state, payload, err := decodeValue(iter.Value())
		if err != nil {
			return err
		}
		if state == StateAcked {
			continue
		}
		seq := binary.BigEndian.Uint64(key[len(keyPrefix):])
		buf := append([]byte{}, payload...)
		if err := fn(seq, buf); err != nil {
			return err
		}
	}
	return iter.Error()
}
