package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// WeatherSnapshot holds one polled forecast for a monitored district,
// persisted hourly by the scheduler for the portal dashboards.
type WeatherSnapshot struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	District      string             `json:"district" bson:"district"`
	Latitude      float64            `json:"latitude" bson:"latitude"`
	Longitude     float64            `json:"longitude" bson:"longitude"`
	TemperatureC  float64            `json:"temperatureC" bson:"temperatureC"`
	WindSpeedKmh  float64            `json:"windSpeedKmh" bson:"windSpeedKmh"`
	Precipitation float64            `json:"precipitation" bson:"precipitation"`
	WeatherCode   int                `json:"weatherCode" bson:"weatherCode"`
	FetchedAt     primitive.DateTime `json:"fetchedAt" bson:"fetchedAt"`
}
