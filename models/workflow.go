package models

// TaskNode mirrors a task into the dependency graph.
type TaskNode struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Blocked   bool   `json:"blocked"`
}

// TaskDependencyRelation says ToTaskID cannot proceed until FromTaskID is done.
type TaskDependencyRelation struct {
	FromTaskID string `json:"fromTaskId"`
	ToTaskID   string `json:"toTaskId"`
}
