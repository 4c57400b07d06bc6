package databases

// go generate: mockery --name ResponderDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/durjog-prohori/durjog-prohori-api/models"
)

const responderName = "responders"

// ResponderDatabase contains the methods to use with the responder collection
type ResponderDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Responder, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Responder, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type responderDatabase struct {
	db DatabaseHelper
}

// NewResponderDatabase initializes a new instance of responder database with the provided db connection
func NewResponderDatabase(db DatabaseHelper) ResponderDatabase {
	return &responderDatabase{
		db: db,
	}
}

func (c *responderDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Responder, error) {
	responder := &models.Responder{}
	err := c.db.Collection(responderName).FindOne(ctx, filter, opts...).Decode(&responder)
	if err != nil {
		return nil, err
	}
	return responder, nil
}

func (c *responderDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Responder, error) {
	var responders []models.Responder
	cr, err := c.db.Collection(responderName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&responders)
	if err != nil {
		return nil, err
	}
	return responders, nil
}

func (c *responderDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(responderName).InsertOne(ctx, document, opts...)
}

func (c *responderDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(responderName).UpdateOne(ctx, filter, update, opts...)
}

func (c *responderDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(responderName).CountDocuments(ctx, filter, opts...)
}
