package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	kindNamespace = "namespace"
	kindRecord    = "record"
)

// mongoEntry is one namespace marker or record. _id is "<owner>/mindmaps/<key>";
// the marker uses an empty key.
type mongoEntry struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"ownerId"`
	Key       string    `bson:"key"`
	Kind      string    `bson:"kind"`
	Data      string    `bson:"data,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoResolver keeps every owner's records in one collection. Each record
// is a single document, so ReplaceOne gives the atomic replace Namespace needs.
type MongoResolver struct {
	col *mongo.Collection
}

func NewMongoResolver(ctx context.Context, col *mongo.Collection) (*MongoResolver, error) {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "kind", Value: 1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("create mindmap index: %w", err)
	}
	return &MongoResolver{col: col}, nil
}

func (r *MongoResolver) Namespace(_ context.Context, ownerID string) (Namespace, error) {
	if !ValidKey(ownerID) {
		return nil, fmt.Errorf("%w: owner %q", ErrInvalidKey, ownerID)
	}
	return &mongoNamespace{col: r.col, owner: ownerID}, nil
}

type mongoNamespace struct {
	col   *mongo.Collection
	owner string
}

func (n *mongoNamespace) id(key string) string {
	return n.owner + "/" + Folder + "/" + key
}

func (n *mongoNamespace) Exists(ctx context.Context) (bool, error) {
	cnt, err := n.col.CountDocuments(ctx, bson.M{"_id": n.id("")}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (n *mongoNamespace) Create(ctx context.Context) error {
	marker := bson.M{"$setOnInsert": bson.M{"ownerId": n.owner, "key": "", "kind": kindNamespace, "updatedAt": time.Now().UTC()}}
	_, err := n.col.UpdateOne(ctx, bson.M{"_id": n.id("")}, marker, options.Update().SetUpsert(true))
	return err
}

func (n *mongoNamespace) Read(ctx context.Context, name string) ([]byte, error) {
	var e mongoEntry
	err := n.col.FindOne(ctx, bson.M{"_id": n.id(name), "kind": kindRecord}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return []byte(e.Data), nil
}

func (n *mongoNamespace) Write(ctx context.Context, name string, data []byte) error {
	if !ValidKey(name) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	e := mongoEntry{ID: n.id(name), OwnerID: n.owner, Key: name, Kind: kindRecord, Data: string(data), UpdatedAt: time.Now().UTC()}
	_, err := n.col.ReplaceOne(ctx, bson.M{"_id": e.ID}, e, options.Replace().SetUpsert(true))
	return err
}

func (n *mongoNamespace) Remove(ctx context.Context, name string) error {
	res, err := n.col.DeleteOne(ctx, bson.M{"_id": n.id(name), "kind": kindRecord})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotExist
	}
	return nil
}

func (n *mongoNamespace) List(ctx context.Context) ([]Entry, error) {
	ok, err := n.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotExist
	}
	cur, err := n.col.Find(ctx, bson.M{"ownerId": n.owner, "kind": kindRecord})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Entry{}
	for cur.Next(ctx) {
		var e mongoEntry
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, Entry{Name: e.Key, Path: n.Path(e.Key)})
	}
	return out, cur.Err()
}

func (n *mongoNamespace) Path(name string) string {
	return "mongodb://" + n.col.Database().Name() + "/" + n.col.Name() + "/" + n.id(name)
}

func (r *MongoResolver) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, nil)
}
