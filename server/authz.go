package main

// Authorization policy. Pure decision functions; every mutating store call
// happens only after the relevant check returns true.

// canAccessAdminArea allows only authenticated admins.
func canAccessAdminArea(u *User) bool {
	return u != nil && u.IsAdmin
}

// canMutateTask restricts toggle/delete (and implicitly add) to the task's
// owner. Tasks are always created with the session user's ID; the owner is
// never client-supplied.
func canMutateTask(u *User, t Task) bool {
	return u != nil && t.UserID == u.ID
}

// canDeleteUser allows an admin to delete non-admin accounts only. Admin
// self-delete is therefore always denied.
func canDeleteUser(actor, target *User) bool {
	return actor != nil && target != nil && actor.IsAdmin && !target.IsAdmin
}
