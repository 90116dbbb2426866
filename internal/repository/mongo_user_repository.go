package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"profilehub/internal/model"
)

// userDocument mirrors the users collection layout.
type userDocument struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	Name            string        `bson:"name"`
	Email           string        `bson:"email"`
	Password        string        `bson:"password,omitempty"`
	Gravatar        string        `bson:"gravatar,omitempty"`
	TechStack       []string      `bson:"techStack"`
	Location        string        `bson:"location,omitempty"`
	FieldOfInterest []string      `bson:"fieldOfInterest"`
	Seeking         []string      `bson:"seeking"`
	Bio             string        `bson:"bio,omitempty"`
	GithubURL       string        `bson:"githubURL,omitempty"`
	TwitterURL      string        `bson:"twitterURL,omitempty"`
	WebsiteURL      string        `bson:"websiteURL,omitempty"`
	LinkedinURL     string        `bson:"linkedinURL,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt"`
}

func newUserDocument(u *model.User) userDocument {
	return userDocument{
		Name:            u.Name,
		Email:           u.Email,
		Password:        u.PasswordHash,
		Gravatar:        u.Gravatar,
		TechStack:       nonNil(u.TechStack),
		Location:        u.Location,
		FieldOfInterest: nonNil(u.FieldOfInterest),
		Seeking:         nonNil(u.Seeking),
		Bio:             u.Bio,
		GithubURL:       u.GithubURL,
		TwitterURL:      u.TwitterURL,
		WebsiteURL:      u.WebsiteURL,
		LinkedinURL:     u.LinkedinURL,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (d userDocument) toModel() *model.User {
	return &model.User{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Email:           d.Email,
		PasswordHash:    d.Password,
		Gravatar:        d.Gravatar,
		TechStack:       d.TechStack,
		Location:        d.Location,
		FieldOfInterest: d.FieldOfInterest,
		Seeking:         d.Seeking,
		Bio:             d.Bio,
		GithubURL:       d.GithubURL,
		TwitterURL:      d.TwitterURL,
		WebsiteURL:      d.WebsiteURL,
		LinkedinURL:     d.LinkedinURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// MongoUserRepository stores users as documents with a unique index on email.
type MongoUserRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoUserRepository(client *mongo.Client, database, collection string) *MongoUserRepository {
	return &MongoUserRepository{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

// EnsureIndexes creates the unique email index that arbitrates concurrent registrations.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index failed: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *model.User) error {
	doc := newUserDocument(user)
	doc.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user failed: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user failed: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoUserRepository) Search(ctx context.Context, filter SearchFilter) ([]model.User, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "password", Value: 0}}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.coll.Find(ctx, searchQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("search users failed: %w", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users failed: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, *doc.toModel())
	}
	return users, nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) (*model.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	update := bson.D{{Key: "$set", Value: patchSet(patch, time.Now().UTC())}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update user profile failed: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoUserRepository) SetGravatar(ctx context.Context, id, gravatarURL string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", id, err)
	}
	_, err = r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "gravatar", Value: gravatarURL}}}},
	)
	if err != nil {
		return fmt.Errorf("update gravatar failed: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, fmt.Errorf("delete user failed: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// searchQuery turns each non-empty term into a case-insensitive literal
// substring match. A pattern against techStack matches any element of the array.
func searchQuery(filter SearchFilter) bson.D {
	f := filter.Normalize()
	query := bson.D{}
	if f.Name != "" {
		query = append(query, bson.E{Key: "name", Value: containsPattern(f.Name)})
	}
	if f.TechStack != "" {
		query = append(query, bson.E{Key: "techStack", Value: containsPattern(f.TechStack)})
	}
	if f.Bio != "" {
		query = append(query, bson.E{Key: "bio", Value: containsPattern(f.Bio)})
	}
	return query
}

func containsPattern(term string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

func patchSet(p model.ProfilePatch, now time.Time) bson.D {
	set := bson.D{}
	add := func(key string, value any) {
		set = append(set, bson.E{Key: key, Value: value})
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.FieldOfInterest != nil {
		add("fieldOfInterest", nonNil(*p.FieldOfInterest))
	}
	if p.TechStack != nil {
		add("techStack", nonNil(*p.TechStack))
	}
	if p.Seeking != nil {
		add("seeking", nonNil(*p.Seeking))
	}
	if p.Bio != nil {
		add("bio", *p.Bio)
	}
	if p.GithubURL != nil {
		add("githubURL", *p.GithubURL)
	}
	if p.TwitterURL != nil {
		add("twitterURL", *p.TwitterURL)
	}
	if p.WebsiteURL != nil {
		add("websiteURL", *p.WebsiteURL)
	}
	if p.LinkedinURL != nil {
		add("linkedinURL", *p.LinkedinURL)
	}
	add("updatedAt", now)
	return set
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
