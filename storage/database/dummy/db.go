package dummydb

import (
	"sync"

	"github.com/trezcool/ratiba/core/workload"
)

type (
	DB struct {
		workload *workloadTables
	}

	workloadTables struct {
		sync.RWMutex
		teachers    map[string]*workload.Teacher
		subjects    map[string]*workload.Subject
		classrooms  map[string]*workload.Classroom
		assignments map[string]*workload.Assignment
	}
)

func Open() (*DB, error) {
	db := &DB{
		workload: newWorkloadTables(),
	}
	return db, nil
}

func newWorkloadTables() *workloadTables {
	return &workloadTables{
		teachers:    make(map[string]*workload.Teacher),
		subjects:    make(map[string]*workload.Subject),
		classrooms:  make(map[string]*workload.Classroom),
		assignments: make(map[string]*workload.Assignment),
	}
}
