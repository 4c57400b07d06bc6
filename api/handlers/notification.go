package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/durjog-prohori/durjog-prohori-api/config"
	"github.com/durjog-prohori/durjog-prohori-api/databases"
	"github.com/durjog-prohori/durjog-prohori-api/models"
)

// Notification handles persisted notification requests
type Notification struct {
	DB databases.NotificationDatabase
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NotificationHub stores connected responders (responderId -> *websocket.Conn)
type NotificationHub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

var hub = &NotificationHub{
	clients: make(map[string]*websocket.Conn),
}

// HandleNotificationsWebSocket registers a responder connection for live
// notification and SOS pushes
func HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade error", "error", err)
		return
	}

	responderID := r.URL.Query().Get("responderId")
	if responderID == "" {
		conn.Close()
		return
	}

	hub.mutex.Lock()
	hub.clients[responderID] = conn
	hub.mutex.Unlock()
	zap.S().Debugf("responder %s connected to /ws/notifications", responderID)

	conn.SetCloseHandler(func(code int, text string) error {
		hub.mutex.Lock()
		delete(hub.clients, responderID)
		hub.mutex.Unlock()
		zap.S().Debugf("responder %s disconnected from /ws/notifications", responderID)
		return nil
	})

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			conn.Close()
			break
		}
	}
}

func sendNotificationToResponder(responderID string, notification interface{}) {
	hub.mutex.Lock()
	conn, exists := hub.clients[responderID]
	hub.mutex.Unlock()

	if exists {
		err := conn.WriteJSON(map[string]interface{}{
			"event": "new_notification",
			"data":  notification,
		})
		if err != nil {
			zap.S().Errorw("error sending notification to responder", "responderId", responderID, "error", err)
			hub.mutex.Lock()
			delete(hub.clients, responderID)
			hub.mutex.Unlock()
			conn.Close()
		}
	}
}

func broadcastSOSEvent(eventType string, data map[string]interface{}) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for responderID, conn := range hub.clients {
		err := conn.WriteJSON(map[string]interface{}{
			"event": eventType,
			"data":  data,
		})
		if err != nil {
			zap.S().Errorw("error broadcasting sos event", "responderId", responderID, "error", err)
			delete(hub.clients, responderID)
			conn.Close()
		}
	}
}

// BroadcastSOSEvent pushes an SOS event to every connected responder
func BroadcastSOSEvent(eventType string, data map[string]interface{}) {
	broadcastSOSEvent(eventType, data)
}

// NotificationsByResponderHandler returns a responder's notifications, newest first
func (h Notification) NotificationsByResponderHandler(w http.ResponseWriter, r *http.Request) {
	responderID := mux.Vars(r)["responder_id"]

	filter := bson.M{"responderId": responderID}
	if unread := r.URL.Query().Get("unread"); unread == "true" {
		filter["read"] = false
	}

	dbResp, err := h.DB.Find(context.TODO(), filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Notification{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkNotificationAsReadHandler flips the read flag on a notification
func (h Notification) MarkNotificationAsReadHandler(w http.ResponseWriter, r *http.Request) {
	responderID := mux.Vars(r)["responder_id"]
	notificationID := mux.Vars(r)["notification_id"]

	nID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		config.ErrorStatus("invalid notification ID", http.StatusBadRequest, w, err)
		return
	}

	res, err := h.DB.UpdateOne(context.Background(),
		bson.M{"_id": nID, "responderId": responderID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		config.ErrorStatus("failed to update notification", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("failed to get notification by ID", http.StatusNotFound, w, &models.NotFoundError{Resource: "notification", ID: notificationID})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Notification marked as read",
	})
}

// DeleteNotificationHandler deletes a notification
func (h Notification) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	responderID := mux.Vars(r)["responder_id"]
	notificationID := mux.Vars(r)["notification_id"]

	nID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		config.ErrorStatus("invalid notification ID", http.StatusBadRequest, w, err)
		return
	}

	err = h.DB.DeleteOne(context.Background(), bson.M{"_id": nID, "responderId": responderID})
	if err != nil {
		config.ErrorStatus("failed to delete notification", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Notification deleted successfully",
	})
}
