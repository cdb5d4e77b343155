package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/entities"
	"crazzzytube/repository"
)

type CommentService interface {
	List(ctx context.Context, videoID primitive.ObjectID) ([]entities.CommentView, error)
	Add(ctx context.Context, videoID, ownerID primitive.ObjectID, content string) (*entities.Comment, error)
	Update(ctx context.Context, commentID, ownerID primitive.ObjectID, content string) (*entities.Comment, error)
	Delete(ctx context.Context, commentID, ownerID primitive.ObjectID) error
	LikeCount(ctx context.Context, commentID primitive.ObjectID) (int64, error)
}

type commentService struct {
	comments repository.CommentRepository
	videos   repository.VideoRepository
	likes    repository.LikeRepository
}

func NewCommentService(comments repository.CommentRepository, videos repository.VideoRepository, likes repository.LikeRepository) CommentService {
	return &commentService{comments: comments, videos: videos, likes: likes}
}

func (s *commentService) List(ctx context.Context, videoID primitive.ObjectID) ([]entities.CommentView, error) {
	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return nil, fromRepo(err, "video")
	}
	comments, err := s.comments.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, fromRepo(err, "comment")
	}
	return comments, nil
}

func (s *commentService) Add(ctx context.Context, videoID, ownerID primitive.ObjectID, content string) (*entities.Comment, error) {
	content, err := requireContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return nil, fromRepo(err, "video")
	}

	comment, err := s.comments.Create(ctx, &entities.Comment{
		Content: content,
		Video:   videoID,
		Owner:   ownerID,
	})
	if err != nil {
		return nil, fromRepo(err, "comment")
	}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, commentID, ownerID primitive.ObjectID, content string) (*entities.Comment, error) {
	content, err := requireContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, commentID, ownerID); err != nil {
		return nil, err
	}

	comment, err := s.comments.UpdateContent(ctx, commentID, content)
	if err != nil {
		return nil, fromRepo(err, "comment")
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, commentID, ownerID primitive.ObjectID) error {
	if _, err := s.owned(ctx, commentID, ownerID); err != nil {
		return err
	}
	if _, err := s.comments.DeleteByID(ctx, commentID); err != nil {
		return fromRepo(err, "comment")
	}
	if _, err := s.likes.DeleteByTarget(ctx, entities.LikeTargetComment, commentID); err != nil {
		return fromRepo(err, "like")
	}
	return nil
}

func (s *commentService) LikeCount(ctx context.Context, commentID primitive.ObjectID) (int64, error) {
	if _, err := s.comments.FindByID(ctx, commentID); err != nil {
		return 0, fromRepo(err, "comment")
	}
	n, err := s.likes.Count(ctx, entities.LikeTargetComment, commentID)
	if err != nil {
		return 0, fromRepo(err, "like")
	}
	return n, nil
}

func (s *commentService) owned(ctx context.Context, commentID, ownerID primitive.ObjectID) (*entities.Comment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, fromRepo(err, "comment")
	}
	if comment.Owner != ownerID {
		return nil, apperror.Forbidden("only the author can modify this comment")
	}
	return comment, nil
}
