package model

import "sort"

// Selection is the set of assets picked for label printing. It belongs to a
// UI session and is never persisted.
type Selection struct {
	keys map[AssetKey]struct{}
}

func NewSelection() *Selection {
	return &Selection{keys: make(map[AssetKey]struct{})}
}

// Set marks or unmarks key
func (s *Selection) Set(key AssetKey, selected bool) {
	if selected {
		s.keys[key] = struct{}{}
	} else {
		delete(s.keys, key)
	}
}

// Toggle flips key and returns the new state
func (s *Selection) Toggle(key AssetKey) bool {
	_, ok := s.keys[key]
	s.Set(key, !ok)
	return !ok
}

func (s *Selection) Has(key AssetKey) bool {
	_, ok := s.keys[key]
	return ok
}

func (s *Selection) Len() int {
	return len(s.keys)
}

// Clear resets the selection, as a reload does
func (s *Selection) Clear() {
	s.keys = make(map[AssetKey]struct{})
}

// SelectAll marks every given asset
func (s *Selection) SelectAll(assets []*Asset) {
	for _, a := range assets {
		s.keys[a.Key()] = struct{}{}
	}
}

// Keys returns the selected keys sorted by task then code
func (s *Selection) Keys() []AssetKey {
	keys := make([]AssetKey, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].TaskID != keys[j].TaskID {
			return keys[i].TaskID < keys[j].TaskID
		}
		return keys[i].Code < keys[j].Code
	})
	return keys
}

// Resolve returns the selected assets among assets, in input order. Keys
// without a matching asset are ignored.
func (s *Selection) Resolve(assets []*Asset) []*Asset {
	result := make([]*Asset, 0, len(s.keys))
	for _, a := range assets {
		if s.Has(a.Key()) {
			result = append(result, a)
		}
	}
	return result
}
