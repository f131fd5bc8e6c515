package stats

// MockStatsManager tracks tasks without logging them.
type MockStatsManager struct{}

func (s *MockStatsManager) StartDumping() {}

func (s *MockStatsManager) StopDumping() {}

func (s *MockStatsManager) AddTaskWatcher(taskName string) *TaskWatcher {
	return NewTaskWatcher(taskName)
}

func NewMockStatsManager() *MockStatsManager {
	return &MockStatsManager{}
}
