package mocks

import (
	"context"

	"github.com/opsdeck/opsdeck/internal/table"
	"github.com/stretchr/testify/mock"
)

// Source is a mock for source.Source.
type Source struct {
	mock.Mock
	TableKind table.Kind
}

func (m *Source) Kind() table.Kind {
	return m.TableKind
}

func (m *Source) Fetch(ctx context.Context) (table.Table, error) {
	args := m.Called(ctx)
	if tbl, ok := args.Get(0).(table.Table); ok {
		return tbl, args.Error(1)
	}
	return nil, args.Error(1)
}
