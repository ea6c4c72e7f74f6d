package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

const (
	collectionUsers  = "users"
	collectionOrders = "orders"
)

type userDoc struct {
	ID         int    `bson:"_id"`
	Name       string `bson:"name"`
	Role       string `bson:"role"`
	Department string `bson:"department"`
}

type orderDoc struct {
	ID      int     `bson:"_id"`
	OwnerID int     `bson:"owner_id"`
	Item    string  `bson:"item"`
	Region  string  `bson:"region"`
	Total   float64 `bson:"total"`
}

func (d userDoc) toDomain() domain.User {
	return domain.User{ID: d.ID, Name: d.Name, Role: d.Role, Department: d.Department}
}

func (d orderDoc) toDomain() domain.Order {
	return domain.Order{ID: d.ID, OwnerID: d.OwnerID, Item: d.Item, Region: d.Region, Total: d.Total}
}

// Directory serves users and orders from MongoDB. Documents are keyed by the
// numeric id so lookups never depend on ObjectIDs.
type Directory struct {
	users  *mongo.Collection
	orders *mongo.Collection
}

func NewDirectory(db *mongo.Database) *Directory {
	return &Directory{
		users:  db.Collection(collectionUsers),
		orders: db.Collection(collectionOrders),
	}
}

func (r *Directory) FindUser(ctx context.Context, id int) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %w", domain.ErrStore, err)
	}
	u := doc.toDomain()
	return &u, nil
}

func (r *Directory) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %w", domain.ErrStore, err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode users: %w", domain.ErrStore, err)
	}
	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *Directory) FindOrder(ctx context.Context, id int) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDoc
	if err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: find order: %w", domain.ErrStore, err)
	}
	o := doc.toDomain()
	return &o, nil
}

// ListOrders applies the owner filter in the query itself when one is set.
func (r *Directory) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.OwnerID != 0 {
		query["owner_id"] = filter.OwnerID
	}

	cur, err := r.orders.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", domain.ErrStore, err)
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode orders: %w", domain.ErrStore, err)
	}
	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Seed upserts the given users and orders by id. Existing documents are
// replaced, so the collections always mirror the fixtures after startup.
func (r *Directory) Seed(ctx context.Context, users []domain.User, orders []domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	upsert := options.Replace().SetUpsert(true)

	for _, u := range users {
		doc := userDoc{ID: u.ID, Name: u.Name, Role: u.Role, Department: u.Department}
		if _, err := r.users.ReplaceOne(ctx, bson.M{"_id": u.ID}, doc, upsert); err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}
	for _, o := range orders {
		doc := orderDoc{ID: o.ID, OwnerID: o.OwnerID, Item: o.Item, Region: o.Region, Total: o.Total}
		if _, err := r.orders.ReplaceOne(ctx, bson.M{"_id": o.ID}, doc, upsert); err != nil {
			return fmt.Errorf("seed order %d: %w", o.ID, err)
		}
	}
	return nil
}

// EnsureIndexes creates the owner index used by ListOrders.
func (r *Directory) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	_, err := r.orders.Indexes().CreateMany(ctx, indexes)
	return err
}
