package models

// FeedbackStatus is the lifecycle state of a feedback item. Transitions are
// either explicit edits (any enumerated value is accepted) or one of three
// automatic cascades driven by related entities: the first task created
// against an open feedback moves it to in-development, a task completing
// moves it to completed, and marking a comment as the answer closes it.
type FeedbackStatus string

const (
	FeedbackOpen          FeedbackStatus = "open"
	FeedbackInDevelopment FeedbackStatus = "in-development"
	FeedbackCompleted     FeedbackStatus = "completed"
	FeedbackClosed        FeedbackStatus = "closed"
)

// Valid reports whether s is one of the enumerated feedback statuses.
func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackOpen, FeedbackInDevelopment, FeedbackCompleted, FeedbackClosed:
		return true
	}
	return false
}

// TaskStatus is the kanban column of a task. The guided advance control
// walks the ordered sequence one step at a time; testing requires an
// explicit approve (completed) or reject (next-up) decision.
type TaskStatus string

const (
	TaskBacklog    TaskStatus = "backlog"
	TaskNextUp     TaskStatus = "next-up"
	TaskInProgress TaskStatus = "in-progress"
	TaskTesting    TaskStatus = "testing"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the enumerated task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskBacklog, TaskNextUp, TaskInProgress, TaskTesting, TaskCompleted:
		return true
	}
	return false
}

// Next returns the following status in the guided sequence. It returns
// false at testing (an approve/reject decision is required) and at
// completed (terminal).
func (s TaskStatus) Next() (TaskStatus, bool) {
	switch s {
	case TaskBacklog:
		return TaskNextUp, true
	case TaskNextUp:
		return TaskInProgress, true
	case TaskInProgress:
		return TaskTesting, true
	}
	return "", false
}

// TaskPriority orders tasks on the board.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is one of the enumerated priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
