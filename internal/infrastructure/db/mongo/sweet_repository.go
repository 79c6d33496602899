package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetshop/sweet-api/internal/core/domain"
	"github.com/sweetshop/sweet-api/internal/core/ports"
)

const sweetsCollection = "sweets"

type SweetRepository struct {
	col *mongo.Collection
}

func NewSweetRepository(db *mongo.Database) *SweetRepository {
	return &SweetRepository{col: db.Collection(sweetsCollection)}
}

type mongoSweet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Category  string             `bson:"category"`
	Price     float64            `bson:"price"`
	Quantity  int                `bson:"quantity"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (m mongoSweet) toDomain() *domain.Sweet {
	return &domain.Sweet{
		ID:        m.ID.Hex(),
		Name:      m.Name,
		Category:  domain.Category(m.Category),
		Price:     m.Price,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// Create inserts a new sweet document.
func (r *SweetRepository) Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoSweet{
		ID:        primitive.NewObjectID(),
		Name:      s.Name,
		Category:  string(s.Category),
		Price:     s.Price,
		Quantity:  s.Quantity,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrSweetExists
		}
		return nil, fmt.Errorf("insert sweet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *SweetRepository) FindByName(ctx context.Context, name string) (*domain.Sweet, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *SweetRepository) findOne(ctx context.Context, filter bson.M) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoSweet
	if err := r.col.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSweetNotFound
		}
		return nil, fmt.Errorf("find sweet: %w", err)
	}
	return m.toDomain(), nil
}

// List returns every sweet matching filter, sorted by name.
func (r *SweetRepository) List(ctx context.Context, filter ports.SweetFilter) ([]*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, buildFilter(filter), options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoSweet
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sweets: %w", err)
	}

	out := make([]*domain.Sweet, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// buildFilter translates a SweetFilter into a Mongo query document.
func buildFilter(f ports.SweetFilter) bson.M {
	q := bson.M{}
	if f.Name != "" {
		q["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	}
	if f.Category != "" {
		q["category"] = string(f.Category)
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		q["price"] = price
	}
	return q
}

func (r *SweetRepository) Update(ctx context.Context, id string, changes ports.SweetChanges) (*domain.Sweet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Category != nil {
		set["category"] = string(*changes.Category)
	}
	if changes.Price != nil {
		set["price"] = *changes.Price
	}

	updated, err := r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrSweetExists
	}
	return updated, err
}

func (r *SweetRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrSweetNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSweetNotFound
	}
	return nil
}

// DecrementStock applies the purchase as a conditional $inc so concurrent
// buyers can never drive quantity below zero.
func (r *SweetRepository) DecrementStock(ctx context.Context, id string, n int) (*domain.Sweet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}

	updated, err := r.findOneAndUpdate(ctx, purchaseFilter(oid, n), stockUpdate(-n, time.Now().UTC()))
	if errors.Is(err, domain.ErrSweetNotFound) {
		// Nothing matched: either the id is unknown or stock is short.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, domain.ErrInsufficientStock
	}
	return updated, err
}

func (r *SweetRepository) IncrementStock(ctx context.Context, id string, n int) (*domain.Sweet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, stockUpdate(n, time.Now().UTC()))
}

// purchaseFilter matches the sweet only while it still holds at least n units.
func purchaseFilter(oid primitive.ObjectID, n int) bson.M {
	return bson.M{"_id": oid, "quantity": bson.M{"$gte": n}}
}

func stockUpdate(delta int, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updated_at": now},
	}
}

func (r *SweetRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoSweet
	err := r.col.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSweetNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("update sweet: %w", err)
	}
	return m.toDomain(), nil
}
