package core

import "time"

type TaskType string

const (
	TaskReview  TaskType = "REVIEW"
	TaskSign    TaskType = "SIGN"
	TaskApprove TaskType = "APPROVE"
)

type TaskState string

const (
	TaskOpen      TaskState = "OPEN"
	TaskDone      TaskState = "DONE"
	TaskCancelled TaskState = "CANCELLED"
)

// Task is the actionable unit surfaced on one user's task list. Tasks are
// never reassigned; a changed assignee set gets new tasks.
type Task struct {
	ID         string
	Type       TaskType
	DocID      string
	WorkflowID string
	State      TaskState
	AssignedTo string
	Notes      string
	TsCreated  int64
	TsDone     int64
}

type TaskDB interface {
	GetTask(id string) (*Task, error)
	GetTasks(uid string, state TaskState) ([]*Task, error) // state "" means any, newest first
	GetDocumentTasks(docID string) ([]*Task, error)
	InsertTasks(tasks []*Task) error // assigns ids
	UpdateTask(t *Task) error
	CompleteTasks(docID, uid, notes string) (int, error) // all OPEN tasks of uid for the document
	CancelOpenTasks(docID string) (int, error)
}

// CompleteTask resolves a single task from its assignee's list.
func (c *CoreDB) CompleteTask(actor *User, taskID, notes string) (*Task, error) {

	task, err := c.TaskDB.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if actor == nil || (!actor.IsAdmin() && actor.ID != task.AssignedTo) {
		return nil, ErrUnauthorized
	}

	if task.State != TaskOpen {
		return nil, Conflictf("task_not_open", "task is %s", task.State)
	}

	task.State = TaskDone
	task.Notes = notes
	task.TsDone = time.Now().Unix()

	if err := c.TaskDB.UpdateTask(task); err != nil {
		return nil, err
	}

	return task, nil
}
