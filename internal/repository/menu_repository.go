package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoMenuRepository struct {
	collection *mongo.Collection
}

func NewMongoMenuRepository(db *mongo.Database) MenuRepository {
	return newMongoMenuRepository(db)
}

func newMongoMenuRepository(db *mongo.Database) *mongoMenuRepository {
	return &mongoMenuRepository{collection: db.Collection("menu_items")}
}

func (m *mongoMenuRepository) List(ctx context.Context) ([]domain.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]domain.MenuItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode menu items: %w", err)
	}
	return items, nil
}

func (m *mongoMenuRepository) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	if err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("find menu item: %w", err)
	}
	return &item, nil
}

func (m *mongoMenuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	now := time.Now()
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

func (m *mongoMenuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	item.UpdatedAt = time.Now()

	result, err := m.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

func (m *mongoMenuRepository) Delete(ctx context.Context, id string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

// SetStock overwrites the stock level. An item set to zero stock is marked
// unavailable; restocking does not flip availability back on.
func (m *mongoMenuRepository) SetStock(ctx context.Context, id string, stock int) (*domain.MenuItem, error) {
	if stock < 0 {
		stock = 0
	}
	return m.applyStock(ctx, id, bson.M{"$literal": stock})
}

// AdjustStock adds each delta to the current stock, flooring at zero.
func (m *mongoMenuRepository) AdjustStock(ctx context.Context, adjustments []domain.StockAdjustment) []domain.StockResult {
	results := make([]domain.StockResult, 0, len(adjustments))
	for _, adj := range adjustments {
		res := domain.StockResult{MenuItemID: adj.MenuItemID}
		item, err := m.applyStock(ctx, adj.MenuItemID, bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{"$stock", adj.Delta}}}})
		if err != nil {
			res.Err = err
		} else {
			res.Stock = item.Stock
		}
		results = append(results, res)
	}
	return results
}

func (m *mongoMenuRepository) applyStock(ctx context.Context, id string, stockExpr bson.M) (*domain.MenuItem, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"stock": stockExpr, "updated_at": time.Now()}}},
		{{Key: "$set", Value: bson.M{"available": bson.M{
			"$cond": bson.A{bson.M{"$lte": bson.A{"$stock", 0}}, false, "$available"},
		}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item domain.MenuItem
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("update stock of %s: %w", id, err)
	}
	return &item, nil
}

func (m *mongoMenuRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create menu indexes: %w", err)
	}
	return nil
}
