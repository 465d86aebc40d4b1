// Package view holds the in-memory mirror of the task store: the last
// loaded snapshot, the search query, and the mutation handlers. Every
// mutation ends with a full reload; the filtered view is recomputed from
// the snapshot and the query on demand, never patched in place.
package view

import (
	"dela/internal/task"
)

// Store is the persistence surface the view model depends on. The sqlite
// adapter satisfies it; tests substitute an in-memory fake.
type Store interface {
	ListAll() ([]task.Task, error)
	Insert(d task.Draft, status task.Status) (int, error)
	Update(id int, d task.Draft) error
	SetStatus(id int, status task.Status) error
	DeleteByID(id int) error
}

type ViewModel struct {
	store    Store
	snapshot []task.Task
	query    string
	loading  bool
	editing  *int
	notes    queue
}

func New(store Store) *ViewModel {
	return &ViewModel{store: store}
}

// Reload replaces the snapshot with the store's current contents. The
// loading flag is cleared on every exit path; a failed load keeps the
// previous snapshot (empty on first run) and surfaces a notification.
func (vm *ViewModel) Reload() error {
	vm.loading = true
	defer func() { vm.loading = false }()

	tasks, err := vm.store.ListAll()
	if err != nil {
		vm.Notify(KindError, "Load failed: "+err.Error())
		return err
	}
	vm.snapshot = tasks
	return nil
}

// SetSearchQuery updates the search string. Filtered reflects it on the
// next call.
func (vm *ViewModel) SetSearchQuery(q string) {
	vm.query = q
}

func (vm *ViewModel) Query() string { return vm.query }

func (vm *ViewModel) Loading() bool { return vm.loading }

// Snapshot returns the last loaded tasks in store order.
func (vm *ViewModel) Snapshot() []task.Task { return vm.snapshot }

// Filtered applies the search filter to the snapshot, preserving order.
func (vm *ViewModel) Filtered() []task.Task {
	return task.Filter(vm.snapshot, vm.query)
}

// Submit is the upsert handler. With an edit in progress it updates that
// task's title and description; otherwise it inserts a new active task.
// An empty title is rejected before any store call and without a reload.
// Both write paths clear the edit marker and reload unconditionally.
func (vm *ViewModel) Submit(title, description string) error {
	d := task.Draft{Title: title, Description: description}.Normalize()
	if err := d.Validate(); err != nil {
		vm.Notify(KindWarn, "Title cannot be empty")
		return err
	}

	editing := vm.editing
	vm.editing = nil

	var err error
	if editing != nil {
		if err = vm.store.Update(*editing, d); err != nil {
			vm.Notify(KindError, "Update failed: "+err.Error())
		} else {
			vm.Notify(KindInfo, "Task updated")
		}
	} else {
		if _, err = vm.store.Insert(d, task.StatusActive); err != nil {
			vm.Notify(KindError, "Save failed: "+err.Error())
		} else {
			vm.Notify(KindInfo, "Task added")
		}
	}
	vm.Reload()
	return err
}

// Remove deletes by id and reloads. An absent id is a store-level no-op,
// so the handler never fails on it.
func (vm *ViewModel) Remove(id int) error {
	err := vm.store.DeleteByID(id)
	if err != nil {
		vm.Notify(KindError, "Delete failed: "+err.Error())
	} else {
		vm.Notify(KindInfo, "Task deleted")
	}
	vm.Reload()
	return err
}

// ToggleStatus flips a task between active and completed, then reloads.
// The task must be present in the current snapshot.
func (vm *ViewModel) ToggleStatus(id int) error {
	t, ok := vm.find(id)
	if !ok {
		return nil
	}
	err := vm.store.SetStatus(id, t.Status.Toggled())
	if err != nil {
		vm.Notify(KindError, "Toggle failed: "+err.Error())
	}
	vm.Reload()
	return err
}

// StartEdit marks the task as being edited and returns it for prefilling
// the form. Submitting while the marker is set turns the submit into an
// update of that id.
func (vm *ViewModel) StartEdit(id int) (task.Task, bool) {
	t, ok := vm.find(id)
	if !ok {
		return task.Task{}, false
	}
	vm.editing = &t.ID
	return t, true
}

func (vm *ViewModel) CancelEdit() {
	vm.editing = nil
}

// Editing returns the id under edit, if any.
func (vm *ViewModel) Editing() (int, bool) {
	if vm.editing == nil {
		return 0, false
	}
	return *vm.editing, true
}

func (vm *ViewModel) find(id int) (task.Task, bool) {
	for _, t := range vm.snapshot {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}
