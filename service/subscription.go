package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/entities"
	"crazzzytube/repository"
)

type SubscriptionService interface {
	Toggle(ctx context.Context, subscriberID, channelID primitive.ObjectID) (bool, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID primitive.ObjectID) (bool, error)
	Subscribers(ctx context.Context, channelID primitive.ObjectID) ([]entities.Channel, error)
	SubscribedChannels(ctx context.Context, subscriberID primitive.ObjectID) ([]entities.Channel, error)
}

type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
}

func NewSubscriptionService(subscriptions repository.SubscriptionRepository, users repository.UserRepository) SubscriptionService {
	return &subscriptionService{subscriptions: subscriptions, users: users}
}

func (s *subscriptionService) Toggle(ctx context.Context, subscriberID, channelID primitive.ObjectID) (bool, error) {
	if subscriberID == channelID {
		return false, apperror.Validation("you cannot subscribe to your own channel")
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return false, fromRepo(err, "channel")
	}

	existing, err := s.subscriptions.Find(ctx, subscriberID, channelID)
	switch {
	case err == nil:
		if err := s.subscriptions.DeleteByID(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return false, fromRepo(err, "subscription")
		}
		return false, nil
	case errors.Is(err, repository.ErrNotFound):
		_, err := s.subscriptions.Create(ctx, subscriberID, channelID)
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return false, fromRepo(err, "subscription")
		}
		return true, nil
	default:
		return false, fromRepo(err, "subscription")
	}
}

func (s *subscriptionService) IsSubscribed(ctx context.Context, subscriberID, channelID primitive.ObjectID) (bool, error) {
	_, err := s.subscriptions.Find(ctx, subscriberID, channelID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, fromRepo(err, "subscription")
	}
}

func (s *subscriptionService) Subscribers(ctx context.Context, channelID primitive.ObjectID) ([]entities.Channel, error) {
	channels, err := s.subscriptions.Subscribers(ctx, channelID)
	if err != nil {
		return nil, fromRepo(err, "subscription")
	}
	return channels, nil
}

func (s *subscriptionService) SubscribedChannels(ctx context.Context, subscriberID primitive.ObjectID) ([]entities.Channel, error) {
	channels, err := s.subscriptions.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		return nil, fromRepo(err, "subscription")
	}
	return channels, nil
}
