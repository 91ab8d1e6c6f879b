// Code generated by hand in the style of mockgen; keep the EXPECT()
// recorder shape consistent with a real `mockgen -source=provider.go`
// output so a future regeneration is a drop-in replacement. Grounded on
// the teacher's own hand-maintained MockDevice/MockPort pattern
// (sarchlab-zeonica/api/driver_internal_test.go).
package device

import (
	gomock "github.com/golang/mock/gomock"
)

// MockProvider is a mock of the Provider interface.
type MockProvider struct {
	ctrl     *gomock.Controller
	recorder *MockProviderMockRecorder
}

// MockProviderMockRecorder is the mock recorder for MockProvider.
type MockProviderMockRecorder struct {
	mock *MockProvider
}

// NewMockProvider creates a new mock instance.
func NewMockProvider(ctrl *gomock.Controller) *MockProvider {
	mock := &MockProvider{ctrl: ctrl}
	mock.recorder = &MockProviderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockProvider) EXPECT() *MockProviderMockRecorder {
	return m.recorder
}

// Facts mocks base method.
func (m *MockProvider) Facts(d Device) Facts {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Facts", d)
	ret0, _ := ret[0].(Facts)
	return ret0
}

// Facts indicates an expected call of Facts.
func (mr *MockProviderMockRecorder) Facts(d any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Facts", func() {}, d)
}

// Layout mocks base method.
func (m *MockProvider) Layout(d Device) FuseLayout {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Layout", d)
	ret0, _ := ret[0].(FuseLayout)
	return ret0
}

// Layout indicates an expected call of Layout.
func (mr *MockProviderMockRecorder) Layout(d any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Layout", func() {}, d)
}
