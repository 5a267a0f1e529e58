// package store provides persistence for settings and the tracked item map.
//
// The engine treats storage as an async key-value map; Store is that map.
// Client layers typed accessors for the two blobs the engine cares about on
// top of any Store implementation.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/trax/internal/track"
)

const (
	// SettingsKey addresses the user settings blob.
	SettingsKey = "trax:settings"
	// ItemsKey addresses the canonical-key -> tracked item map.
	ItemsKey = "trax:items"
)

// Store defines the raw key-value operations the engine depends on.
//
// Get returns (nil, nil) when the key is absent. The last write wins; no
// transactional isolation is provided.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Client provides typed access to the settings blob and the item map.
type Client struct {
	kv Store
}

// NewClient creates a Client backed by the given Store.
func NewClient(kv Store) *Client {
	return &Client{kv: kv}
}

// Settings loads stored settings merged over defaults, so fields added after
// the blob was written still get their default values.
func (c *Client) Settings(ctx context.Context) (track.Settings, error) {
	settings := track.DefaultSettings()

	data, err := c.kv.Get(ctx, SettingsKey)
	if err != nil {
		return settings, fmt.Errorf("failed to load settings: %w", err)
	}
	if data == nil {
		return settings, nil
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return track.DefaultSettings(), fmt.Errorf("failed to decode settings: %w", err)
	}
	if settings.Auth == nil {
		settings.Auth = map[track.Tracker]track.Auth{}
	}
	return settings, nil
}

// SaveSettings persists the full settings blob.
func (c *Client) SaveSettings(ctx context.Context, settings track.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := c.kv.Set(ctx, SettingsKey, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Items loads the full canonical-key -> item map. Missing blob yields an
// empty map.
func (c *Client) Items(ctx context.Context) (map[string]*track.Item, error) {
	data, err := c.kv.Get(ctx, ItemsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	items := map[string]*track.Item{}
	if data == nil {
		return items, nil
	}

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

// Item loads one item by canonical key; returns (nil, nil) when absent.
func (c *Client) Item(ctx context.Context, key string) (*track.Item, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	return items[key], nil
}

// SaveItem writes one item back into the map blob (read-modify-write).
func (c *Client) SaveItem(ctx context.Context, item *track.Item) error {
	items, err := c.Items(ctx)
	if err != nil {
		return err
	}
	items[item.Key] = item
	return c.saveItems(ctx, items)
}

// DeleteItem removes one item from the map blob.
func (c *Client) DeleteItem(ctx context.Context, key string) error {
	items, err := c.Items(ctx)
	if err != nil {
		return err
	}
	delete(items, key)
	return c.saveItems(ctx, items)
}

func (c *Client) saveItems(ctx context.Context, items map[string]*track.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}
	if err := c.kv.Set(ctx, ItemsKey, data); err != nil {
		return fmt.Errorf("failed to save items: %w", err)
	}
	return nil
}
