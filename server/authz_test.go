package main

import "testing"

func TestCanAccessAdminArea(t *testing.T) {
	if canAccessAdminArea(nil) {
		t.Error("anonymous caller allowed into admin area")
	}
	if canAccessAdminArea(&User{ID: 1}) {
		t.Error("non-admin allowed into admin area")
	}
	if !canAccessAdminArea(&User{ID: 1, IsAdmin: true}) {
		t.Error("admin denied admin area")
	}
}

func TestCanMutateTask(t *testing.T) {
	owner := &User{ID: 7}
	task := Task{ID: 1, UserID: 7}
	if !canMutateTask(owner, task) {
		t.Error("owner denied own task")
	}
	if canMutateTask(&User{ID: 8}, task) {
		t.Error("non-owner allowed to mutate a foreign task")
	}
	if canMutateTask(nil, task) {
		t.Error("anonymous caller allowed to mutate a task")
	}
}

func TestCanDeleteUser(t *testing.T) {
	admin := &User{ID: 1, IsAdmin: true}
	otherAdmin := &User{ID: 2, IsAdmin: true}
	regular := &User{ID: 3}
	cases := []struct {
		name          string
		actor, target *User
		want          bool
	}{
		{"admin deletes regular", admin, regular, true},
		{"admin deletes admin", admin, otherAdmin, false},
		{"admin deletes self", admin, admin, false},
		{"regular deletes regular", regular, &User{ID: 4}, false},
		{"nil actor", nil, regular, false},
		{"nil target", admin, nil, false},
	}
	for _, tc := range cases {
		if got := canDeleteUser(tc.actor, tc.target); got != tc.want {
			t.Errorf("%s: canDeleteUser = %v, want %v", tc.name, got, tc.want)
		}
	}
}
