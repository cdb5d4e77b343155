package service

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/dto"
	"crazzzytube/entities"
	"crazzzytube/repository"
)

type PlaylistService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, req dto.PlaylistRequest) (*entities.Playlist, error)
	Get(ctx context.Context, playlistID primitive.ObjectID) (*entities.Playlist, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]entities.Playlist, error)
	Update(ctx context.Context, playlistID, ownerID primitive.ObjectID, req dto.UpdatePlaylistRequest) (*entities.Playlist, error)
	Delete(ctx context.Context, playlistID, ownerID primitive.ObjectID) error
	AddVideo(ctx context.Context, playlistID, videoID, ownerID primitive.ObjectID) (*entities.Playlist, error)
	RemoveVideo(ctx context.Context, playlistID, videoID, ownerID primitive.ObjectID) (*entities.Playlist, error)
}

type playlistService struct {
	playlists repository.PlaylistRepository
	videos    repository.VideoRepository
}

func NewPlaylistService(playlists repository.PlaylistRepository, videos repository.VideoRepository) PlaylistService {
	return &playlistService{playlists: playlists, videos: videos}
}

func (s *playlistService) Create(ctx context.Context, ownerID primitive.ObjectID, req dto.PlaylistRequest) (*entities.Playlist, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}

	playlist, err := s.playlists.Create(ctx, &entities.Playlist{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Owner:       ownerID,
	})
	if err != nil {
		return nil, fromRepo(err, "playlist")
	}
	return playlist, nil
}

func (s *playlistService) Get(ctx context.Context, playlistID primitive.ObjectID) (*entities.Playlist, error) {
	playlist, err := s.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return nil, fromRepo(err, "playlist")
	}
	return playlist, nil
}

func (s *playlistService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]entities.Playlist, error) {
	playlists, err := s.playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fromRepo(err, "playlist")
	}
	return playlists, nil
}

func (s *playlistService) Update(ctx context.Context, playlistID, ownerID primitive.ObjectID, req dto.UpdatePlaylistRequest) (*entities.Playlist, error) {
	set := bson.M{}
	if name := strings.TrimSpace(req.Name); name != "" {
		set["name"] = name
	}
	if description := strings.TrimSpace(req.Description); description != "" {
		set["description"] = description
	}
	if len(set) == 0 {
		return nil, apperror.Validation("name or description is required")
	}

	if _, err := s.owned(ctx, playlistID, ownerID); err != nil {
		return nil, err
	}
	playlist, err := s.playlists.UpdateByID(ctx, playlistID, set)
	if err != nil {
		return nil, fromRepo(err, "playlist")
	}
	return playlist, nil
}

func (s *playlistService) Delete(ctx context.Context, playlistID, ownerID primitive.ObjectID) error {
	if _, err := s.owned(ctx, playlistID, ownerID); err != nil {
		return err
	}
	if _, err := s.playlists.DeleteByID(ctx, playlistID); err != nil {
		return fromRepo(err, "playlist")
	}
	return nil
}

func (s *playlistService) AddVideo(ctx context.Context, playlistID, videoID, ownerID primitive.ObjectID) (*entities.Playlist, error) {
	if _, err := s.owned(ctx, playlistID, ownerID); err != nil {
		return nil, err
	}
	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return nil, fromRepo(err, "video")
	}

	playlist, err := s.playlists.AddVideo(ctx, playlistID, videoID)
	if err != nil {
		return nil, fromRepo(err, "playlist")
	}
	return playlist, nil
}

func (s *playlistService) RemoveVideo(ctx context.Context, playlistID, videoID, ownerID primitive.ObjectID) (*entities.Playlist, error) {
	playlist, err := s.owned(ctx, playlistID, ownerID)
	if err != nil {
		return nil, err
	}
	if !playlist.Contains(videoID) {
		return nil, apperror.NotFound("video is not in this playlist")
	}

	playlist, err = s.playlists.RemoveVideo(ctx, playlistID, videoID)
	if err != nil {
		return nil, fromRepo(err, "playlist")
	}
	return playlist, nil
}

func (s *playlistService) owned(ctx context.Context, playlistID, ownerID primitive.ObjectID) (*entities.Playlist, error) {
	playlist, err := s.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return nil, fromRepo(err, "playlist")
	}
	if playlist.Owner != ownerID {
		return nil, apperror.Forbidden("only the owner can modify this playlist")
	}
	return playlist, nil
}
