package databases

// go generate: mockery --name WeatherDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/durjog-prohori/durjog-prohori-api/models"
)

const weatherName = "weather_snapshots"

// WeatherDatabase contains the methods to use with the weather snapshot collection
type WeatherDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.WeatherSnapshot, error)
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.WeatherSnapshot, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type weatherDatabase struct {
	db DatabaseHelper
}

// NewWeatherDatabase initializes a new instance of weather database with the provided db connection
func NewWeatherDatabase(db DatabaseHelper) WeatherDatabase {
	return &weatherDatabase{
		db: db,
	}
}

func (c *weatherDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.WeatherSnapshot, error) {
	var snapshots []models.WeatherSnapshot
	cr, err := c.db.Collection(weatherName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&snapshots)
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (c *weatherDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.WeatherSnapshot, error) {
	snapshot := &models.WeatherSnapshot{}
	err := c.db.Collection(weatherName).FindOne(ctx, filter, opts...).Decode(&snapshot)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (c *weatherDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(weatherName).InsertOne(ctx, document, opts...)
}
