package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"crazzzytube/constant"
	"crazzzytube/entities"
)

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *entities.Playlist) (*entities.Playlist, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*entities.Playlist, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*entities.Playlist, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*entities.Playlist, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]entities.Playlist, error)
	AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (*entities.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (*entities.Playlist, error)
	// PullVideoEverywhere drops videoID from every playlist that holds it.
	PullVideoEverywhere(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

type playlistRepo struct {
	collection[entities.Playlist]
}

func NewPlaylistRepository(db *mongo.Database) PlaylistRepository {
	return &playlistRepo{collection: newCollection[entities.Playlist](db, constant.CollectionPlaylists)}
}

func (r *playlistRepo) Create(ctx context.Context, playlist *entities.Playlist) (*entities.Playlist, error) {
	if playlist.ID.IsZero() {
		playlist.ID = primitive.NewObjectID()
	}
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	if _, err := r.insert(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (r *playlistRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entities.Playlist, error) {
	return r.findByID(ctx, id)
}

func (r *playlistRepo) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*entities.Playlist, error) {
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *playlistRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) (*entities.Playlist, error) {
	return r.deleteByID(ctx, id)
}

func (r *playlistRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]entities.Playlist, error) {
	return r.find(ctx, bson.M{"owner": owner}, newestFirst())
}

func (r *playlistRepo) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (*entities.Playlist, error) {
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"videos": videoID}})
}

func (r *playlistRepo) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (*entities.Playlist, error) {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"videos": videoID}})
}

func (r *playlistRepo) PullVideoEverywhere(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"videos": videoID},
		bson.M{"$pull": bson.M{"videos": videoID}},
	)
	if err != nil {
		return 0, convertMongoError(err)
	}
	return res.ModifiedCount, nil
}
