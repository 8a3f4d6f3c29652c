package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/djenkins26/products-app/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
)

// Mongo is the document backend. Field names match the documents written by
// the original application so an existing database can be served as is.
type Mongo struct {
	db *mongo.Database
}

// NewMongo wraps a database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// Users returns the credential store view of m.
func (m *Mongo) Users() UserRepository {
	return mongoUsers{m.db.Collection(usersCollection)}
}

// Products returns the resource store view of m.
func (m *Mongo) Products() ProductRepository {
	return mongoProducts{m.db.Collection(productsCollection)}
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, readpref.Primary())
}

type userDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	Email          string             `bson:"email"`
	HashedPassword string             `bson:"hashedPassword"`
	Token          string             `bson:"token,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d userDocument) model() *models.User {
	return &models.User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		HashedPassword: d.HashedPassword,
		Token:          d.Token,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type productDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Text      string             `bson:"text"`
	Owner     primitive.ObjectID `bson:"owner"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d productDocument) model() models.Product {
	return models.Product{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Text:      d.Text,
		Owner:     d.Owner.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// parseObjectID maps a model id to an ObjectID; malformed hex cannot exist.
func parseObjectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// mongoNow truncates to millisecond precision, which is what BSON dates keep.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

type mongoUsers struct{ coll *mongo.Collection }

func (r mongoUsers) Create(ctx context.Context, user *models.User) error {
	now := mongoNow()
	doc := userDocument{
		ID:             primitive.NewObjectID(),
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Token:          user.Token,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r mongoUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r mongoUsers) FindByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"token": token})
}

func (r mongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.model(), nil
}

func (r mongoUsers) UpdateToken(ctx context.Context, id, token string) error {
	return r.set(ctx, id, bson.M{"token": token})
}

func (r mongoUsers) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	return r.set(ctx, id, bson.M{"hashedPassword": hashedPassword})
}

func (r mongoUsers) set(ctx context.Context, id string, fields bson.M) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return ErrNotFound
	}
	fields["updatedAt"] = mongoNow()
	result, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r mongoUsers) Count(ctx context.Context) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

type mongoProducts struct{ coll *mongo.Collection }

func (r mongoProducts) List(ctx context.Context, opts ListOptions) ([]models.Product, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := r.coll.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, doc.model())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r mongoProducts) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	product := doc.model()
	return &product, nil
}

func (r mongoProducts) Create(ctx context.Context, product *models.Product) error {
	owner, ok := parseObjectID(product.Owner)
	if !ok {
		return fmt.Errorf("insert product: invalid owner id %q", product.Owner)
	}

	now := mongoNow()
	doc := productDocument{
		ID:        primitive.NewObjectID(),
		Title:     product.Title,
		Text:      product.Text,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	*product = doc.model()
	return nil
}

func (r mongoProducts) Update(ctx context.Context, id string, patch models.ProductPatch) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return ErrNotFound
	}

	set := bson.M{"updatedAt": mongoNow()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}

	result, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update product %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r mongoProducts) Delete(ctx context.Context, id string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return ErrNotFound
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r mongoProducts) Count(ctx context.Context) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}
