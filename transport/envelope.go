// Package transport moves Tracks snapshots between a publishing process and
// remote UIs over HTTP and websockets.
package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go2tv.app/trackstate/bundle"
	"go2tv.app/trackstate/tracks"
	"golang.org/x/mod/semver"
)

// SchemaVersion tags every envelope. Readers accept any envelope with the
// same major version; unknown fields in newer minors are ignored.
const SchemaVersion = "v1.0.0"

// ErrIncompatibleSchema is returned for envelopes from another major version.
var ErrIncompatibleSchema = errors.New("transport: incompatible schema version")

// Envelope is the wire form of a published snapshot.
type Envelope struct {
	ID        uuid.UUID     `json:"id"`
	Schema    string        `json:"schema"`
	CreatedAt time.Time     `json:"created_at"`
	Tracks    bundle.Bundle `json:"tracks"`
}

// Snapshot is a decoded envelope.
type Snapshot struct {
	ID        uuid.UUID
	Schema    string
	CreatedAt time.Time
	Tracks    tracks.Tracks
}

// Encode wraps t in a new envelope and returns its JSON form.
func Encode(t tracks.Tracks) ([]byte, error) {
	env := Envelope{
		ID:        uuid.New(),
		Schema:    SchemaVersion,
		CreatedAt: time.Now().UTC(),
		Tracks:    t.ToBundle(),
	}

	out, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "Encode")
	}
	return out, nil
}

// Decode parses an envelope and the Tracks it carries.
func Decode(data []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return Snapshot{}, errors.Wrap(err, "Decode")
	}
	if _, err := dec.Token(); err != io.EOF {
		return Snapshot{}, errors.Wrap(bundle.ErrTrailingData, "Decode")
	}

	if !Compatible(env.Schema) {
		return Snapshot{}, errors.Wrapf(ErrIncompatibleSchema, "Decode: got %q, want %s", env.Schema, semver.Major(SchemaVersion))
	}

	t, err := tracks.FromBundle(env.Tracks)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "Decode")
	}

	return Snapshot{
		ID:        env.ID,
		Schema:    env.Schema,
		CreatedAt: env.CreatedAt,
		Tracks:    t,
	}, nil
}

// Compatible reports whether an envelope tagged with schema can be read.
func Compatible(schema string) bool {
	if !semver.IsValid(schema) {
		return false
	}
	return semver.Major(schema) == semver.Major(SchemaVersion)
}
