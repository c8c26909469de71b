package types

import (
	"strconv"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// TaskID identifies an inventory task. Values are millisecond timestamps
// made strictly increasing within the process.
type TaskID int64

var (
	taskIDMu   sync.Mutex
	lastTaskID TaskID
)

// NewTaskID returns a new TaskID that is greater than any previously issued
// one in this process.
func NewTaskID() TaskID {
	taskIDMu.Lock()
	defer taskIDMu.Unlock()

	id := TaskID(time.Now().UnixMilli())
	if id <= lastTaskID {
		id = lastTaskID + 1
	}
	lastTaskID = id
	return id
}

// ParseTaskID parses a decimal task ID
func ParseTaskID(s string) (TaskID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, goerr.New("invalid task ID", goerr.V("task_id", s))
	}
	return TaskID(v), nil
}

// Int64 returns the numeric value
func (id TaskID) Int64() int64 {
	return int64(id)
}

// String returns the decimal representation of TaskID
func (id TaskID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
