package databases

// go generate: mockery --name WithdrawalDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/durjog-prohori/durjog-prohori-api/models"
)

const withdrawalName = "withdrawals"

// WithdrawalDatabase contains the methods to use with the withdrawal collection
type WithdrawalDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Withdrawal, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type withdrawalDatabase struct {
	db DatabaseHelper
}

// NewWithdrawalDatabase initializes a new instance of withdrawal database with the provided db connection
func NewWithdrawalDatabase(db DatabaseHelper) WithdrawalDatabase {
	return &withdrawalDatabase{
		db: db,
	}
}

func (c *withdrawalDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	cr, err := c.db.Collection(withdrawalName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&withdrawals)
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (c *withdrawalDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(withdrawalName).InsertOne(ctx, document, opts...)
}

func (c *withdrawalDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(withdrawalName).UpdateOne(ctx, filter, update, opts...)
}
