package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	// Start transaction
	s.Lock()

	ctx := context.WithValue(c, ctxTransactionKey{}, true)

	// Within this block everything is transactional
	err := f(ctx)
	if err != nil {
		// Rollback
		s.Unlock()

		return err
	}

	// Commit
	s.Unlock()

	return nil
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) Delete(c context.Context, uid string) error {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	delete(s.Items, uid)

	return nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	result := make([]T, 0, len(s.Items))
	for _, v := range s.Items {
		result = append(result, v)
	}

	return result, nil
}

func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(all))
	for _, item := range all {
		if matchesFilters(item, filters) {
			result = append(result, item)
		}
	}

	orderBy(result, orderByField)

	return result, nil
}

// matchesFilters only supports equality, which is all the services need.
func matchesFilters[T any](item T, filters []Filter) bool {
	v := reflect.ValueOf(item)
	for _, filter := range filters {
		if filter.Compare != "=" {
			continue
		}
		field := v.FieldByName(filter.Field)
		if !field.IsValid() {
			return false
		}
		if fmt.Sprintf("%v", field.Interface()) != fmt.Sprintf("%v", filter.Value) {
			return false
		}
	}
	return true
}

func orderBy[T any](items []T, fieldName string) {
	if fieldName == "" {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		a := reflect.ValueOf(items[i]).FieldByName(fieldName)
		b := reflect.ValueOf(items[j]).FieldByName(fieldName)
		if !a.IsValid() || !b.IsValid() {
			return false
		}
		if at, ok := a.Interface().(time.Time); ok {
			bt := b.Interface().(time.Time)
			return at.Before(bt)
		}
		return fmt.Sprintf("%v", a.Interface()) < fmt.Sprintf("%v", b.Interface())
	})
}
