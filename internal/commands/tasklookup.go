package commands

import (
	"errors"
	"fmt"

	"chaintodo/internal/service"
)

// ErrAlreadyCompleted is returned for tasks that offer no complete action.
var ErrAlreadyCompleted = errors.New("task already completed")

// findOpenTask returns the task at index in the snapshot. Only incomplete
// tasks can be completed.
func findOpenTask(tasks []service.Task, index int) (service.Task, error) {
	for _, t := range tasks {
		if t.Index != index {
			continue
		}
		if t.Completed {
			return service.Task{}, fmt.Errorf("%w: %d", ErrAlreadyCompleted, index)
		}
		return t, nil
	}
	return service.Task{}, fmt.Errorf("task index out of range: %d", index)
}
