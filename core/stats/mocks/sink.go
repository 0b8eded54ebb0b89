package mocks

import (
	"region-sync/core/stats"

	"github.com/stretchr/testify/mock"
)

// Sink is a mock implementation of stats.Sink
type Sink struct {
	mock.Mock
}

func (m *Sink) StartRun() stats.RunToken {
	args := m.Called()
	if token, ok := args.Get(0).(stats.RunToken); ok {
		return token
	}
	return stats.RunToken{}
}

func (m *Sink) EndRunSuccess(token stats.RunToken) {
	m.Called(token)
}

func (m *Sink) EndRunFailure(token stats.RunToken, errorMessage string) {
	m.Called(token, errorMessage)
}

func (m *Sink) RecordRegionAccess(region string) {
	m.Called(region)
}

func (m *Sink) RecordRegionError(region string) {
	m.Called(region)
}

func (m *Sink) SetTotalRecords(count int64) {
	m.Called(count)
}
