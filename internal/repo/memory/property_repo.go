package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbediako/rentpadi/internal/domain/model"
)

type PropertyRepo struct {
	mu         sync.Mutex
	properties map[int64]model.Property
	nextID     int64
}

func NewPropertyRepo() *PropertyRepo {
	return &PropertyRepo{
		properties: make(map[int64]model.Property),
		nextID:     1,
	}
}

func (r *PropertyRepo) GetProperty(_ context.Context, propertyID int64) (model.Property, bool, error) {
	if propertyID <= 0 {
		return model.Property{}, false, fmt.Errorf("invalid property id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	property, ok := r.properties[propertyID]
	return property, ok, nil
}

// Seed inserts a listing, assigning an id when none is set. Dev-mode and
// test fixture helper.
func (r *PropertyRepo) Seed(property model.Property) model.Property {
	r.mu.Lock()
	defer r.mu.Unlock()

	if property.ID <= 0 {
		property.ID = r.nextID
	}
	if property.ID >= r.nextID {
		r.nextID = property.ID + 1
	}
	r.properties[property.ID] = property
	return property
}
