package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// favoriteRecord is the persisted shape of a Favorite.
type favoriteRecord struct {
	ID      string          `json:"id"`
	Type    FavoriteKind    `json:"type"`
	Data    json.RawMessage `json:"data"`
	AddedAt time.Time       `json:"addedAt"`
}

// MarshalJSON encodes the favorite as {id, type, data, addedAt}.
func (f Favorite) MarshalJSON() ([]byte, error) {
	var data interface{}
	switch f.Kind {
	case KindRepository:
		data = f.Repository
	case KindUser:
		data = f.User
	default:
		return nil, fmt.Errorf("unknown favorite kind %q", f.Kind)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(favoriteRecord{
		ID:      f.ID,
		Type:    f.Kind,
		Data:    raw,
		AddedAt: f.AddedAt,
	})
}

// UnmarshalJSON decodes the data payload according to the record type.
func (f *Favorite) UnmarshalJSON(b []byte) error {
	var rec favoriteRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	out := Favorite{ID: rec.ID, Kind: rec.Type, AddedAt: rec.AddedAt}
	switch rec.Type {
	case KindRepository:
		var repo Repository
		if err := json.Unmarshal(rec.Data, &repo); err != nil {
			return fmt.Errorf("failed to decode favorite repository %s: %w", rec.ID, err)
		}
		out.Repository = &repo
	case KindUser:
		var user User
		if err := json.Unmarshal(rec.Data, &user); err != nil {
			return fmt.Errorf("failed to decode favorite user %s: %w", rec.ID, err)
		}
		out.User = &user
	default:
		return fmt.Errorf("unknown favorite kind %q", rec.Type)
	}
	*f = out
	return nil
}
