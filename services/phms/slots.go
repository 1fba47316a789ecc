package phms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"mindbloom/models"
)

// Slots lists every slot the backend publishes.
func (c *Client) Slots(ctx context.Context, token string) ([]models.Slot, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/slot/get", token, nil, &raw); err != nil {
		return nil, err
	}
	var slots []models.Slot
	if err := json.Unmarshal(unwrap(raw, "slots"), &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

// BookSlot marks a slot as booked and returns its id.
func (c *Client) BookSlot(ctx context.Context, token string, req models.SlotBookRequest) (int64, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/slot/book", token, req, &raw); err != nil {
		return 0, err
	}
	id, err := parseID(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to read booked slot id: %w", err)
	}
	return id, nil
}
