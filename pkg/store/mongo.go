package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nodemap/nodemap/pkg/errors"
)

// Collection names used by the mongo backend.
const (
	graphsCollection = "graphs"
	notesCollection  = "notes"
)

// MongoGateway stores documents in MongoDB, keyed by document name. It
// implements the same single-writer gateway contract as FileGateway; it is a
// storage backend, not a collaboration layer.
type MongoGateway struct {
	client *mongo.Client
	graphs *mongo.Collection
	notes  *mongo.Collection
}

// graphDoc is the graphs collection schema.
type graphDoc struct {
	Name      string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// noteDoc is the notes collection schema, keyed by "<graph>/<nodeID>".
type noteDoc struct {
	Key       string    `bson:"_id"`
	Graph     string    `bson:"graph"`
	NodeID    string    `bson:"node_id"`
	Content   string    `bson:"content"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoGateway connects to MongoDB and returns a gateway backed by the
// given database.
func NewMongoGateway(ctx context.Context, uri, database string) (*MongoGateway, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "connect to mongodb")
	}
	db := client.Database(database)
	return &MongoGateway{
		client: client,
		graphs: db.Collection(graphsCollection),
		notes:  db.Collection(notesCollection),
	}, nil
}

var _ Gateway = (*MongoGateway)(nil)

// Close disconnects the underlying client.
func (g *MongoGateway) Close(ctx context.Context) error {
	return g.client.Disconnect(ctx)
}

func (g *MongoGateway) binding(ref string) (Binding, error) {
	if ref == "" {
		return Binding{}, errors.New(errors.ErrCodeCanceled, "no document chosen")
	}
	return Binding{Name: ref, Path: ref}, nil
}

// Open loads the topology document named ref.
func (g *MongoGateway) Open(ctx context.Context, ref string) (Binding, []byte, error) {
	b, err := g.binding(ref)
	if err != nil {
		return Binding{}, nil, err
	}
	var doc graphDoc
	if err := g.graphs.FindOne(ctx, bson.M{"_id": b.Name}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return Binding{}, nil, errors.New(errors.ErrCodeNotFound, "graph %q not found", b.Name)
		}
		return Binding{}, nil, errors.Wrap(errors.ErrCodeIO, err, "open graph %q", b.Name)
	}
	return b, doc.Data, nil
}

// Create establishes the binding. Mongo has no directory to materialize, so
// this only reserves the name.
func (g *MongoGateway) Create(ctx context.Context, ref string) (Binding, error) {
	return g.binding(ref)
}

// Save upserts the topology document.
func (g *MongoGateway) Save(ctx context.Context, b Binding, data []byte) error {
	if !b.Bound() {
		return errors.New(errors.ErrCodeNoFile, "no document bound")
	}
	_, err := g.graphs.UpdateOne(ctx,
		bson.M{"_id": b.Name},
		bson.M{"$set": bson.M{"data": data, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "save graph %q", b.Name)
	}
	return nil
}

func noteKey(b Binding, nodeID string) string {
	return b.Name + "/" + nodeID
}

// ReadNote returns the note content; a missing document is empty content.
func (g *MongoGateway) ReadNote(ctx context.Context, b Binding, nodeID string) (string, error) {
	var doc noteDoc
	err := g.notes.FindOne(ctx, bson.M{"_id": noteKey(b, nodeID)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "read note for %s", nodeID)
	}
	return doc.Content, nil
}

// WriteNote upserts the note content for a node.
func (g *MongoGateway) WriteNote(ctx context.Context, b Binding, nodeID string, content string) error {
	if !b.Bound() {
		return errors.New(errors.ErrCodeNoFile, "no document bound")
	}
	_, err := g.notes.UpdateOne(ctx,
		bson.M{"_id": noteKey(b, nodeID)},
		bson.M{"$set": bson.M{
			"graph":      b.Name,
			"node_id":    nodeID,
			"content":    content,
			"updated_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write note for %s", nodeID)
	}
	return nil
}
