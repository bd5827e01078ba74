package models

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (*Generation, error) {
	args := m.Called(ctx, prompt)
	if g := args.Get(0); g != nil {
		return g.(*Generation), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}
