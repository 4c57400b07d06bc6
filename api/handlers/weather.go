package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/durjog-prohori/durjog-prohori-api/config"
	"github.com/durjog-prohori/durjog-prohori-api/databases"
	"github.com/durjog-prohori/durjog-prohori-api/models"
	"github.com/durjog-prohori/durjog-prohori-api/weather"
)

// Weather serves the latest polled forecast snapshots
type Weather struct {
	DB databases.WeatherDatabase
}

// LatestHandler returns the most recent snapshot per monitored district
func (h Weather) LatestHandler(w http.ResponseWriter, r *http.Request) {
	latest := make([]models.WeatherSnapshot, 0, len(weather.Districts))
	for _, d := range weather.Districts {
		snapshot, err := h.DB.FindOne(context.TODO(),
			bson.M{"district": d.Name},
			options.FindOne().SetSort(bson.D{{Key: "fetchedAt", Value: -1}}),
		)
		if err != nil {
			continue
		}
		latest = append(latest, *snapshot)
	}

	b, err := json.Marshal(latest)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
