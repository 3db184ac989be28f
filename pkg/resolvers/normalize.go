package resolvers

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/aretw0/coredata/pkg/domain"
)

// decodeRecord decodes a payload holding exactly one JSON object.
func decodeRecord(payload []byte) (domain.Record, error) {
	var record domain.Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return record, nil
}

// decodeRecords turns a collection payload into an ordered list of records.
//
// Arrays keep their order. An object whose members are all objects is a keyed collection
// (e.g. /wp/v2/types) and yields its members in document order. Any other object is a
// single record.
func decodeRecords(payload []byte) ([]domain.Record, error) {
	_, dataType, _, err := jsonparser.Get(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	switch dataType {
	case jsonparser.Array:
		records := []domain.Record{}
		if err := json.Unmarshal(payload, &records); err != nil {
			return nil, fmt.Errorf("decoding records: %w", err)
		}
		return records, nil

	case jsonparser.Object:
		members, keyed, err := objectMembers(payload)
		if err != nil {
			return nil, err
		}
		if !keyed {
			record, err := decodeRecord(payload)
			if err != nil {
				return nil, err
			}
			return []domain.Record{record}, nil
		}

		records := make([]domain.Record, 0, len(members))
		for _, member := range members {
			record, err := decodeRecord(member)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		return records, nil

	default:
		return nil, fmt.Errorf("decoding records: unexpected %s payload", dataType)
	}
}

// objectMembers returns the raw members of a JSON object in document order and whether
// every member is itself an object.
func objectMembers(payload []byte) ([][]byte, bool, error) {
	members := [][]byte{}
	keyed := true

	err := jsonparser.ObjectEach(payload, func(_ []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Object {
			keyed = false
			return nil
		}
		members = append(members, value)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("decoding records: %w", err)
	}

	return members, keyed, nil
}
