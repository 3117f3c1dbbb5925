package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrEmptyBatch = errors.New("empty batch")

// DecodeBatch parses a JSON array of submissions. A single object is
// accepted as a batch of one.
func DecodeBatch(b []byte) ([]Submission, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, ErrEmptyBatch
	}

	var subs []Submission
	if b[0] == '{' {
		var one Submission
		if err := json.Unmarshal(b, &one); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		subs = []Submission{one}
	} else if err := json.Unmarshal(b, &subs); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}

	if len(subs) == 0 {
		return nil, ErrEmptyBatch
	}
	return subs, nil
}
