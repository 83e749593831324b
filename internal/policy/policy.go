// Package policy is the single place where role and ownership rules are
// decided. Every predicate is a pure function of the acting user and the
// resource, so the service layer can consult it without touching the
// database and tests can enumerate the full permission matrix.
package policy

import "echoboard/internal/models"

// Actor is the resolved identity attached to a request. A zero Actor
// (UserID == 0) means the caller is unauthenticated.
type Actor struct {
	UserID uint
	Role   models.Role
}

// Authenticated reports whether the actor carries a resolved identity.
func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

// CanManageTopics gates topic create/update. Admin only.
func CanManageTopics(a Actor) bool {
	return a.Role == models.RoleAdmin
}

// CanDeleteTopic gates topic deletion. Admin only.
func CanDeleteTopic(a Actor) bool {
	return a.Role == models.RoleAdmin
}

// CanCreateFeedback allows any authenticated user to file feedback.
func CanCreateFeedback(a Actor) bool {
	return a.Authenticated()
}

// CanUpdateFeedback allows the original creator or staff.
func CanUpdateFeedback(a Actor, f *models.Feedback) bool {
	return f.UserID == a.UserID || a.Role.Staff()
}

// CanDeleteFeedback allows the original creator or an admin. Developers may
// edit feedback but not delete it.
func CanDeleteFeedback(a Actor, f *models.Feedback) bool {
	return f.UserID == a.UserID || a.Role == models.RoleAdmin
}

// CanUpvote allows any authenticated user to toggle an upvote.
func CanUpvote(a Actor) bool {
	return a.Authenticated()
}

// CanManageTasks gates task create/update and the guided advance control.
func CanManageTasks(a Actor) bool {
	return a.Role.Staff()
}

// CanDeleteTask gates task deletion. Admin only.
func CanDeleteTask(a Actor) bool {
	return a.Role == models.RoleAdmin
}

// CanManageChangelogs gates changelog create/update.
func CanManageChangelogs(a Actor) bool {
	return a.Role.Staff()
}

// CanDeleteChangelog gates changelog deletion. Stricter than update: admin
// only, an intentional asymmetry.
func CanDeleteChangelog(a Actor) bool {
	return a.Role == models.RoleAdmin
}

// CanComment allows any authenticated user to post a comment.
func CanComment(a Actor) bool {
	return a.Authenticated()
}

// CanMarkAnswer allows an admin or the feedback's creator (not the comment
// author) to toggle a comment's answer status.
func CanMarkAnswer(a Actor, f *models.Feedback) bool {
	return a.Role == models.RoleAdmin || f.UserID == a.UserID
}

// CanDeleteComment allows an admin, the comment's author, or the feedback's
// creator to delete a comment.
func CanDeleteComment(a Actor, c *models.Comment, f *models.Feedback) bool {
	return a.Role == models.RoleAdmin || c.UserID == a.UserID || f.UserID == a.UserID
}

// CanManageUsers gates the user directory and role changes. Admin only.
func CanManageUsers(a Actor) bool {
	return a.Role == models.RoleAdmin
}
