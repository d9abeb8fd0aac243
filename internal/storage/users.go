package storage

import (
	"errors"
	"log"
	"time"

	"chatterbox/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateUser inserts a new user document and fills in its generated ID.
func (s *Service) CreateUser(user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = models.StatusOffline
	}

	res, err := s.users().InsertOne(s.Ctx, user)
	if err != nil {
		log.Printf("ERROR: Failed to create user %s: %v", user.Email, err)
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindUserByEmail returns nil without an error when no user matches.
func (s *Service) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.users().FindOne(s.Ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) FindUserByID(userID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	var user models.User
	err = s.users().FindOne(s.Ctx, bson.M{"_id": oid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers matches username or email case-insensitively, excluding
// the caller, capped at 10 results.
func (s *Service) SearchUsers(query string, excludeUserID string) ([]models.User, error) {
	exclude, err := primitive.ObjectIDFromHex(excludeUserID)
	if err != nil {
		return nil, ErrInvalidID
	}

	pattern := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{
		"_id": bson.M{"$ne": exclude},
		"$or": bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
		},
	}

	cur, err := s.users().Find(s.Ctx, filter, options.Find().SetLimit(10))
	if err != nil {
		return nil, err
	}
	defer cur.Close(s.Ctx)

	var users []models.User
	if err := cur.All(s.Ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// userSummaries loads the embeddable form of the given users in one query.
func (s *Service) userSummaries(ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := s.users().Find(s.Ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(s.Ctx)

	var users []models.User
	if err := cur.All(s.Ctx, &users); err != nil {
		return nil, err
	}
	online := s.onlineSet()
	for i := range users {
		sum := users[i].Summary()
		if online != nil {
			if online[sum.ID.Hex()] {
				sum.Status = models.StatusOnline
			} else {
				sum.Status = models.StatusOffline
			}
		}
		out[sum.ID] = sum
	}
	return out, nil
}

// onlineSet loads the presence snapshot; on Redis failure the stored
// status fields are left as-is rather than failing the read.
func (s *Service) onlineSet() map[string]bool {
	ids, err := s.GetOnlineUserIDs()
	if err != nil {
		log.Printf("WARNING: Failed to load presence snapshot: %v", err)
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
