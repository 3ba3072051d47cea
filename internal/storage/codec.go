package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"lgpkit/internal/compress"
	"lgpkit/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion stamps records written by this build.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeSolution(record model.SolutionRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeSolution(data []byte) (model.SolutionRecord, error) {
	var record model.SolutionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.SolutionRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.SolutionRecord{}, err
	}
	return record, nil
}

// EncodeSolutionPayload encodes then compresses a record for storage.
func EncodeSolutionPayload(record model.SolutionRecord, codec compress.Codec) ([]byte, error) {
	data, err := EncodeSolution(record)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("compress %s payload: %w", codec.Name(), err)
	}
	return payload, nil
}

func DecodeSolutionPayload(payload []byte, codec compress.Codec) (model.SolutionRecord, error) {
	data, err := codec.Decompress(payload)
	if err != nil {
		return model.SolutionRecord{}, fmt.Errorf("decompress %s payload: %w", codec.Name(), err)
	}
	return DecodeSolution(data)
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
