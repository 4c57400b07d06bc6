package databases

// go generate: mockery --name DonationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/durjog-prohori/durjog-prohori-api/models"
)

const (
	donationName = "donations"
	balanceName  = "ngo_balances"
)

// DonationDatabase contains the methods to use with the donation collection
// and the per-NGO running-balance documents.
type DonationDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Donation, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Donation, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)

	Balance(ctx context.Context, ngoID string) (*models.NgoBalance, error)
	CreditBalance(ctx context.Context, ngoID string, amount float64) error
	DebitBalance(ctx context.Context, ngoID string, amount float64) (*mongo.UpdateResult, error)
}

type donationDatabase struct {
	db DatabaseHelper
}

// NewDonationDatabase initializes a new instance of donation database with the provided db connection
func NewDonationDatabase(db DatabaseHelper) DonationDatabase {
	return &donationDatabase{
		db: db,
	}
}

func (c *donationDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Donation, error) {
	donation := &models.Donation{}
	err := c.db.Collection(donationName).FindOne(ctx, filter, opts...).Decode(&donation)
	if err != nil {
		return nil, err
	}
	return donation, nil
}

func (c *donationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Donation, error) {
	var donations []models.Donation
	cr, err := c.db.Collection(donationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&donations)
	if err != nil {
		return nil, err
	}
	return donations, nil
}

func (c *donationDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(donationName).InsertOne(ctx, document, opts...)
}

func (c *donationDatabase) Balance(ctx context.Context, ngoID string) (*models.NgoBalance, error) {
	balance := &models.NgoBalance{}
	err := c.db.Collection(balanceName).FindOne(ctx, bson.M{"_id": ngoID}).Decode(&balance)
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// CreditBalance adds a received money donation to the NGO's running totals,
// creating the balance document on first donation.
func (c *donationDatabase) CreditBalance(ctx context.Context, ngoID string, amount float64) error {
	upsert := true
	_, err := c.db.Collection(balanceName).UpdateOne(ctx,
		bson.M{"_id": ngoID},
		bson.M{"$inc": bson.M{"totalreceived": amount, "totalremaining": amount}},
		&options.UpdateOptions{Upsert: &upsert},
	)
	return err
}

// DebitBalance moves amount from remaining to withdrawn in one conditional
// write. The filter requires totalremaining >= amount, so an overdraw or a
// concurrent withdrawal that drained the balance first matches zero
// documents and the caller surfaces a conflict.
func (c *donationDatabase) DebitBalance(ctx context.Context, ngoID string, amount float64) (*mongo.UpdateResult, error) {
	filter := bson.M{"_id": ngoID, "totalremaining": bson.M{"$gte": amount}}
	update := bson.M{"$inc": bson.M{"totalremaining": -amount, "totalwithdraw": amount}}
	return c.db.Collection(balanceName).UpdateOne(ctx, filter, update)
}
