package service

import (
	"context"
	"sort"

	"echoboard/internal/models"
	"echoboard/internal/observability"
	"echoboard/internal/policy"
	"echoboard/internal/repository"
	"echoboard/internal/validation"

	"gorm.io/gorm"
)

// CommentService runs the discussion thread under each feedback item. It
// reconstructs the reply tree from the flat comment rows, enforces the
// single-answer invariant with a sweep-then-mark transaction, and applies
// the soft/hard delete split: a comment with replies is kept as a marker
// row, a childless one is removed outright.
type CommentService struct {
	commentRepo  repository.CommentRepository
	feedbackRepo repository.FeedbackRepository
	db           *gorm.DB
}

type PostCommentInput struct {
	Content    string
	FeedbackID uint
	ParentID   *uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	feedbackRepo repository.FeedbackRepository,
	db *gorm.DB,
) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		feedbackRepo: feedbackRepo,
		db:           db,
	}
}

func (s *CommentService) PostComment(ctx context.Context, actor policy.Actor, in PostCommentInput) (*models.Comment, error) {
	if !policy.CanComment(actor) {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	if err := validation.CommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.feedbackRepo.GetByID(ctx, in.FeedbackID, 0); err != nil {
		return nil, orNotFound(err, "Feedback", in.FeedbackID)
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, orNotFound(err, "Comment", *in.ParentID)
		}
		if parent.FeedbackID != in.FeedbackID {
			return nil, models.NewValidationError("Parent comment belongs to a different feedback")
		}
	}

	comment := &models.Comment{
		Content:    in.Content,
		FeedbackID: in.FeedbackID,
		UserID:     actor.UserID,
		ParentID:   in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListThread returns the feedback's comments as a tree of root comments,
// answer first, then oldest first. Replies are always oldest first.
func (s *CommentService) ListThread(ctx context.Context, feedbackID uint) ([]*models.Comment, error) {
	if _, err := s.feedbackRepo.GetByID(ctx, feedbackID, 0); err != nil {
		return nil, orNotFound(err, "Feedback", feedbackID)
	}

	comments, err := s.commentRepo.ListByFeedback(ctx, feedbackID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return BuildThread(comments), nil
}

// BuildThread assembles the reply tree from a flat, created_at-ascending
// comment list. Two passes: index every comment by id, then attach each
// reply to its parent. A reply whose parent is missing from the slice is
// promoted to a root rather than dropped. Roots are displayed answer
// first, then newest first; replies keep their oldest-first storage order.
func BuildThread(comments []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		c.Replies = nil
		byID[c.ID] = c
	}

	roots := make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		roots = append(roots, c)
	}

	// Input order is creation order, so replies are already oldest first.
	// Roots float the answer to the top and otherwise show newest first.
	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].IsAnswer != roots[j].IsAnswer {
			return roots[i].IsAnswer
		}
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	return roots
}

// UpdateComment lets the author edit their own comment. Soft-deleted
// comments are tombstones and cannot be revived by editing.
func (s *CommentService) UpdateComment(ctx context.Context, actor policy.Actor, id uint, content string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Comment", id)
	}

	if comment.UserID != actor.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	if comment.Deleted() {
		return nil, models.NewConflictError("Deleted comments cannot be edited")
	}
	if err := validation.CommentContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// MarkAnswer toggles a comment's answer status. Marking sweeps every other
// answer flag on the feedback first, then marks the chosen comment and
// closes the feedback, all in one transaction so no two answers can
// coexist. Marking the current answer unmarks it instead; the feedback
// stays closed.
func (s *CommentService) MarkAnswer(ctx context.Context, actor policy.Actor, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, orNotFound(err, "Comment", commentID)
	}

	feedback, err := s.feedbackRepo.GetByID(ctx, comment.FeedbackID, 0)
	if err != nil {
		return nil, orNotFound(err, "Feedback", comment.FeedbackID)
	}
	if !policy.CanMarkAnswer(actor, feedback) {
		return nil, models.NewForbiddenError("Only an admin or the feedback's creator can mark an answer")
	}
	if comment.Deleted() {
		return nil, models.NewConflictError("A deleted comment cannot be the answer")
	}

	if comment.IsAnswer {
		comment.IsAnswer = false
		if err := s.commentRepo.Update(ctx, comment); err != nil {
			return nil, models.NewInternalError(err)
		}
		return s.commentRepo.GetByID(ctx, comment.ID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := repository.NewCommentRepository(tx)
		feedbacks := repository.NewFeedbackRepository(tx)

		if err := comments.UnmarkAnswers(ctx, comment.FeedbackID); err != nil {
			return models.NewInternalError(err)
		}
		comment.IsAnswer = true
		if err := comments.Update(ctx, comment); err != nil {
			return models.NewInternalError(err)
		}
		if err := feedbacks.UpdateStatus(ctx, comment.FeedbackID, models.FeedbackClosed); err != nil {
			return models.NewInternalError(err)
		}
		observability.StatusCascades.WithLabelValues("answer_marked").Inc()
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// UnmarkAnswer clears the answer flag. The feedback's status is left alone:
// closing is a one-way door that only an explicit edit reopens.
func (s *CommentService) UnmarkAnswer(ctx context.Context, actor policy.Actor, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, orNotFound(err, "Comment", commentID)
	}

	feedback, err := s.feedbackRepo.GetByID(ctx, comment.FeedbackID, 0)
	if err != nil {
		return nil, orNotFound(err, "Feedback", comment.FeedbackID)
	}
	if !policy.CanMarkAnswer(actor, feedback) {
		return nil, models.NewForbiddenError("Only an admin or the feedback's creator can unmark an answer")
	}
	if !comment.IsAnswer {
		return comment, nil
	}

	comment.IsAnswer = false
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment. With replies attached the row must stay
// to anchor the subtree, so only its content is replaced by the deletion
// marker; without replies the row is removed for real. Either way a deleted
// answer stops being the answer.
func (s *CommentService) DeleteComment(ctx context.Context, actor policy.Actor, id uint) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return orNotFound(err, "Comment", id)
	}

	feedback, err := s.feedbackRepo.GetByID(ctx, comment.FeedbackID, 0)
	if err != nil {
		return orNotFound(err, "Feedback", comment.FeedbackID)
	}
	if !policy.CanDeleteComment(actor, comment, feedback) {
		return models.NewForbiddenError("You don't have permission to delete this comment")
	}

	replies, err := s.commentRepo.CountReplies(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}

	if replies > 0 {
		comment.Content = models.DeletedCommentMarker
		comment.IsAnswer = false
		if err := s.commentRepo.Update(ctx, comment); err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
