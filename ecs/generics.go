package ecs

import "github.com/milk9111/soundbox/ecs/component"

func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	storeFor(w, kind, true).set(e, value)
	return nil
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := storeFor(w, kind, false)
	if s == nil {
		return false
	}
	return s.remove(e)
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := storeFor(w, kind, false)
	return s != nil && s.has(e)
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	s := storeFor(w, kind, false)
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

// ForEach visits every live entity holding a component of kind. The visit
// order is the store's dense order; callers may add or remove components of
// other kinds but must not remove kind itself while iterating.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := storeFor(w, kind, false)
	if s == nil || fn == nil {
		return
	}
	for i := 0; i < len(s.dense); i++ {
		e := s.dense[i]
		if !w.entities.isAlive(e) {
			continue
		}
		fn(e, s.values[i])
	}
}

// ForEach2 visits entities that hold both components, iterating the first
// kind's store.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa := storeFor(w, ka, false)
	sb := storeFor(w, kb, false)
	if sa == nil || sb == nil || fn == nil {
		return
	}
	for i := 0; i < len(sa.dense); i++ {
		e := sa.dense[i]
		if !w.entities.isAlive(e) {
			continue
		}
		b, ok := sb.get(e)
		if !ok {
			continue
		}
		fn(e, sa.values[i], b)
	}
}

// Query returns the live entities holding a component of kind.
func Query[T any](w *World, kind component.ComponentKind[T]) []Entity {
	s := storeFor(w, kind, false)
	if s == nil {
		return nil
	}
	out := make([]Entity, 0, len(s.dense))
	for _, e := range s.dense {
		if w.entities.isAlive(e) {
			out = append(out, e)
		}
	}
	return out
}
