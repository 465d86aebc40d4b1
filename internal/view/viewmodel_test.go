package view

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dela/internal/storage"
	"dela/internal/task"
)

// fakeStore is an in-memory Store with injectable failures and call
// counters, standing in for the sqlite adapter.
type fakeStore struct {
	tasks  []task.Task
	nextID int

	listErr   error
	insertErr error
	updateErr error
	deleteErr error

	listCalls   int
	insertCalls int
	updateCalls int
	deleteCalls int
}

func newFakeStore(seed ...task.Task) *fakeStore {
	fs := &fakeStore{nextID: 1}
	for _, t := range seed {
		if t.ID >= fs.nextID {
			fs.nextID = t.ID + 1
		}
		fs.tasks = append(fs.tasks, t)
	}
	return fs
}

func (fs *fakeStore) ListAll() ([]task.Task, error) {
	fs.listCalls++
	if fs.listErr != nil {
		return nil, fs.listErr
	}
	out := make([]task.Task, len(fs.tasks))
	copy(out, fs.tasks)
	return out, nil
}

func (fs *fakeStore) Insert(d task.Draft, status task.Status) (int, error) {
	fs.insertCalls++
	if fs.insertErr != nil {
		return 0, fs.insertErr
	}
	id := fs.nextID
	fs.nextID++
	fs.tasks = append(fs.tasks, task.Task{ID: id, Title: d.Title, Description: d.Description, Status: status})
	return id, nil
}

func (fs *fakeStore) Update(id int, d task.Draft) error {
	fs.updateCalls++
	if fs.updateErr != nil {
		return fs.updateErr
	}
	for i := range fs.tasks {
		if fs.tasks[i].ID == id {
			fs.tasks[i].Title = d.Title
			fs.tasks[i].Description = d.Description
			return nil
		}
	}
	return storage.ErrNotFound
}

func (fs *fakeStore) SetStatus(id int, status task.Status) error {
	for i := range fs.tasks {
		if fs.tasks[i].ID == id {
			fs.tasks[i].Status = status
			return nil
		}
	}
	return storage.ErrNotFound
}

func (fs *fakeStore) DeleteByID(id int) error {
	fs.deleteCalls++
	if fs.deleteErr != nil {
		return fs.deleteErr
	}
	for i := range fs.tasks {
		if fs.tasks[i].ID == id {
			fs.tasks = append(fs.tasks[:i], fs.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func kinds(vm *ViewModel) []Kind {
	var out []Kind
	for _, n := range vm.Notifications() {
		out = append(out, n.Kind)
	}
	return out
}

func TestSubmitInsertsTrimmedActiveTask(t *testing.T) {
	fs := newFakeStore()
	vm := New(fs)
	require.NoError(t, vm.Reload())

	require.NoError(t, vm.Submit("  Write tests  ", "  coverage first "))

	snap := vm.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "Write tests", snap[0].Title)
	assert.Equal(t, "coverage first", snap[0].Description)
	assert.Equal(t, task.StatusActive, snap[0].Status)
}

func TestSubmitEmptyTitleWritesNothing(t *testing.T) {
	fs := newFakeStore()
	vm := New(fs)
	require.NoError(t, vm.Reload())
	listBefore := fs.listCalls

	err := vm.Submit("   ", "ignored")
	assert.ErrorIs(t, err, task.ErrEmptyTitle)

	assert.Zero(t, fs.insertCalls, "no store write on validation failure")
	assert.Zero(t, fs.updateCalls)
	assert.Equal(t, listBefore, fs.listCalls, "no reload on validation failure")
	assert.Equal(t, []Kind{KindWarn}, kinds(vm))
}

func TestSubmitWhileEditingUpdatesExistingTask(t *testing.T) {
	fs := newFakeStore(task.Task{ID: 7, Title: "old", Description: "old desc", Status: task.StatusCompleted})
	vm := New(fs)
	require.NoError(t, vm.Reload())

	_, ok := vm.StartEdit(7)
	require.True(t, ok)
	require.NoError(t, vm.Submit("new", "new desc"))

	_, editing := vm.Editing()
	assert.False(t, editing, "edit marker cleared after submit")
	assert.Zero(t, fs.insertCalls)
	assert.Equal(t, 1, fs.updateCalls)

	snap := vm.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "new", snap[0].Title)
	assert.Equal(t, "new desc", snap[0].Description)
	assert.Equal(t, task.StatusCompleted, snap[0].Status, "editing must not change status")
}

func TestSubmitClearsEditMarkerEvenOnStoreFailure(t *testing.T) {
	fs := newFakeStore(task.Task{ID: 1, Title: "x", Status: task.StatusActive})
	vm := New(fs)
	require.NoError(t, vm.Reload())
	fs.updateErr = errors.New("disk full")

	_, ok := vm.StartEdit(1)
	require.True(t, ok)
	err := vm.Submit("y", "")
	require.Error(t, err)

	_, editing := vm.Editing()
	assert.False(t, editing)
	assert.GreaterOrEqual(t, fs.listCalls, 2, "reload still runs after a failed update")
}

func TestRemoveAbsentIDStillReloads(t *testing.T) {
	fs := newFakeStore(task.Task{ID: 1, Title: "keep", Status: task.StatusActive})
	vm := New(fs)
	require.NoError(t, vm.Reload())
	listBefore := fs.listCalls

	require.NoError(t, vm.Remove(99))

	assert.Equal(t, 1, fs.deleteCalls)
	assert.Equal(t, listBefore+1, fs.listCalls)
	require.Len(t, vm.Snapshot(), 1)
}

func TestReloadFailureClearsLoadingAndKeepsSnapshot(t *testing.T) {
	fs := newFakeStore(task.Task{ID: 1, Title: "cached", Status: task.StatusActive})
	vm := New(fs)
	require.NoError(t, vm.Reload())

	fs.listErr = errors.New("store unavailable")
	err := vm.Reload()
	require.Error(t, err)

	assert.False(t, vm.Loading(), "loading flag must never stay set")
	assert.Len(t, vm.Snapshot(), 1, "failed reload keeps the previous snapshot")
	assert.Equal(t, []Kind{KindError}, kinds(vm))
}

func TestInitialLoadFailureYieldsEmptyState(t *testing.T) {
	fs := newFakeStore(task.Task{ID: 1, Title: "unreachable", Status: task.StatusActive})
	fs.listErr = errors.New("store unavailable")
	vm := New(fs)

	require.Error(t, vm.Reload())
	assert.Empty(t, vm.Filtered())
	assert.False(t, vm.Loading())
}

func TestToggleStatus(t *testing.T) {
	fs := newFakeStore(task.Task{ID: 1, Title: "flip", Status: task.StatusActive})
	vm := New(fs)
	require.NoError(t, vm.Reload())

	require.NoError(t, vm.ToggleStatus(1))
	assert.Equal(t, task.StatusCompleted, vm.Snapshot()[0].Status)

	require.NoError(t, vm.ToggleStatus(1))
	assert.Equal(t, task.StatusActive, vm.Snapshot()[0].Status)

	// Unknown ids are ignored without a store call.
	require.NoError(t, vm.ToggleStatus(42))
}

func TestFilteredTracksQuery(t *testing.T) {
	fs := newFakeStore(
		task.Task{ID: 1, Title: "Купить продукты", Description: "Молоко, хлеб, яйца", Status: task.StatusActive},
		task.Task{ID: 2, Title: "Завершить отчет", Status: task.StatusActive},
	)
	vm := New(fs)
	require.NoError(t, vm.Reload())

	vm.SetSearchQuery("отчет")
	got := vm.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)

	vm.SetSearchQuery("")
	assert.Len(t, vm.Filtered(), 2)
}

// The documented first-run scenario, end to end against the real store:
// seed three tasks, reload, and search for "отчет".
func TestSeededSearchScenario(t *testing.T) {
	s, err := storage.Open(filepath.Join(t.TempDir(), "dela.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.SeedIfEmpty())

	vm := New(s)
	require.NoError(t, vm.Reload())
	require.Len(t, vm.Snapshot(), 3)

	vm.SetSearchQuery("отчет")
	got := vm.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "Завершить отчет", got[0].Title)
	assert.Equal(t, task.StatusActive, got[0].Status)
}
