package invoice

import (
	"encoding/json"
	"fmt"
)

// The hosted store keeps documents flat, so line items are persisted as a
// serialized JSON array in a single string attribute. These two functions are
// the only serialization boundary; everything in memory works on []LineItem.

// StringifyLineItems encodes line items for the store.
func StringifyLineItems(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode line items: %w", err)
	}
	return string(data), nil
}

// ParseLineItems decodes line items from the store. An empty value yields an
// empty slice rather than an error.
func ParseLineItems(raw string) ([]LineItem, error) {
	if raw == "" {
		return []LineItem{}, nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	return items, nil
}
