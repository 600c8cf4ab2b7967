package stats

import "github.com/stretchr/testify/mock"

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Incr(name string) {
	m.Called(name)
}
func (m *MockProvider) Decr(name string) {
	m.Called(name)
}

// NopProvider discards all updates.
type NopProvider struct{}

func (NopProvider) Incr(string) {}
func (NopProvider) Decr(string) {}
