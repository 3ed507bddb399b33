package session

import (
	"encoding/json"

	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// refreshGate allows one refresh in flight. Callers arriving while it runs
// join it and receive the same outcome; the slot is free again once it settles.
type refreshGate struct {
	group singleflight.Group
}

func (g *refreshGate) do(refresh func() (json.RawMessage, error)) (json.RawMessage, error) {
	result, err, _ := g.group.Do(refreshKey, func() (any, error) {
		return refresh()
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}
