// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/agamjn/rumi/vectorstore"
)

// pointRecord is the stored form of one vector point. The payload map is
// JSON-encoded before MUS serialization because its value types are
// caller-defined.
type pointRecord struct {
	ChunkID string
	Vector  []float32
	Payload []byte
}

var vectorSer = ord.NewSliceSer[float32](raw.Float32)

// marshalPoint serializes a pointRecord to bytes.
func marshalPoint(record *pointRecord) []byte {
	size := ord.String.Size(record.ChunkID) +
		vectorSer.Size(record.Vector) +
		ord.ByteSlice.Size(record.Payload)

	buf := make([]byte, size)
	n := ord.String.Marshal(record.ChunkID, buf)
	n += vectorSer.Marshal(record.Vector, buf[n:])
	ord.ByteSlice.Marshal(record.Payload, buf[n:])
	return buf
}

// unmarshalPoint deserializes a pointRecord from bytes.
func unmarshalPoint(data []byte) (*pointRecord, error) {
	chunkID, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk id: %v", vectorstore.ErrSerializationFailed, err)
	}

	vector, m, err := vectorSer.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %v", vectorstore.ErrSerializationFailed, err)
	}
	n += m

	payload, _, err := ord.ByteSlice.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", vectorstore.ErrSerializationFailed, err)
	}

	return &pointRecord{ChunkID: chunkID, Vector: vector, Payload: payload}, nil
}

// marshalDimension serializes the collection marker, which records the
// dimension the collection was created with.
func marshalDimension(dimension int) []byte {
	buf := make([]byte, varint.Int.Size(dimension))
	varint.Int.Marshal(dimension, buf)
	return buf
}

// unmarshalDimension deserializes the collection marker.
func unmarshalDimension(data []byte) (int, error) {
	dimension, _, err := varint.Int.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: collection marker: %v", vectorstore.ErrSerializationFailed, err)
	}
	return dimension, nil
}
