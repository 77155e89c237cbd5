package mocks

// MockMetrics counts recorder calls. It satisfies every *MetricsRecorder
// interface of the service layer.
type MockMetrics struct {
	AccountLockoutCalls    int
	UserCreatedCalls       int
	ProductionDeclarations int
	NonConformitySync      map[string]int
	CauseDeclarations      map[string]int
	Exports                map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		NonConformitySync: make(map[string]int),
		CauseDeclarations: make(map[string]int),
		Exports:           make(map[string]int),
	}
}

func (m *MockMetrics) RecordAccountLockout() {
	m.AccountLockoutCalls++
}

func (m *MockMetrics) RecordUserCreated() {
	m.UserCreatedCalls++
}

func (m *MockMetrics) RecordProductionDeclaration() {
	m.ProductionDeclarations++
}

func (m *MockMetrics) RecordNonConformitySync(action string) {
	m.NonConformitySync[action]++
}

func (m *MockMetrics) RecordCauseDeclaration(result string) {
	m.CauseDeclarations[result]++
}

func (m *MockMetrics) RecordExport(kind string) {
	m.Exports[kind]++
}
