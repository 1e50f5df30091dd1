package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fincast/models"
)

const (
	emptyAll    = "No notifications"
	emptyUnread = "No unread notifications"
)

// NotificationService keeps the in-app notification feed. The working
// set lives in memory; MongoDB gets best-effort writes so the feed
// survives restarts.
type NotificationService struct {
	mongo *MongoDBService

	notifications map[string]*models.Notification
	mutex         sync.RWMutex
}

func NewNotificationService(mongo *MongoDBService) *NotificationService {
	return &NotificationService{
		mongo:         mongo,
		notifications: make(map[string]*models.Notification),
	}
}

// Create records a notification and persists it
func (ns *NotificationService) Create(n *models.Notification) error {
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}
	n.CreatedAt = time.Now()

	ns.mutex.Lock()
	ns.notifications[n.ID] = n
	ns.mutex.Unlock()

	if ns.mongo != nil && ns.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := ns.mongo.InsertNotification(ctx, n); err != nil {
			log.Printf("Failed to persist notification: %v", err)
		}
	}

	return nil
}

// List returns the feed newest-first. filter is "all" or "unread"; an
// empty feed carries the matching empty-state message.
func (ns *NotificationService) List(filter string) *models.NotificationList {
	ns.mutex.RLock()
	items := make([]*models.Notification, 0, len(ns.notifications))
	unread := 0
	for _, n := range ns.notifications {
		if !n.Read {
			unread++
		}
		if filter == "unread" && n.Read {
			continue
		}
		items = append(items, n)
	}
	ns.mutex.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	list := &models.NotificationList{
		Notifications: items,
		UnreadCount:   unread,
	}
	if len(items) == 0 {
		if filter == "unread" {
			list.EmptyMessage = emptyUnread
		} else {
			list.EmptyMessage = emptyAll
		}
	}

	return list
}

func (ns *NotificationService) UnreadCount() int {
	ns.mutex.RLock()
	defer ns.mutex.RUnlock()

	count := 0
	for _, n := range ns.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

func (ns *NotificationService) MarkRead(id string) error {
	ns.mutex.Lock()
	n, exists := ns.notifications[id]
	if !exists {
		ns.mutex.Unlock()
		return fmt.Errorf("notification not found")
	}
	n.Read = true
	ns.mutex.Unlock()

	if ns.mongo != nil && ns.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := ns.mongo.MarkNotificationRead(ctx, id); err != nil {
			log.Printf("Failed to persist read state: %v", err)
		}
	}

	return nil
}

func (ns *NotificationService) MarkAllRead() {
	ns.mutex.Lock()
	for _, n := range ns.notifications {
		n.Read = true
	}
	ns.mutex.Unlock()

	if ns.mongo != nil && ns.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := ns.mongo.MarkAllNotificationsRead(ctx); err != nil {
			log.Printf("Failed to persist read state: %v", err)
		}
	}
}

func (ns *NotificationService) Delete(id string) error {
	ns.mutex.Lock()
	if _, exists := ns.notifications[id]; !exists {
		ns.mutex.Unlock()
		return fmt.Errorf("notification not found")
	}
	delete(ns.notifications, id)
	ns.mutex.Unlock()

	if ns.mongo != nil && ns.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := ns.mongo.DeleteNotification(ctx, id); err != nil {
			log.Printf("Failed to delete persisted notification: %v", err)
		}
	}

	return nil
}

// LoadFromDB restores the recent feed on boot
func (ns *NotificationService) LoadFromDB() error {
	if ns.mongo == nil || !ns.mongo.enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items, err := ns.mongo.GetNotifications(ctx, false, 500)
	if err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}

	ns.mutex.Lock()
	for _, n := range items {
		ns.notifications[n.ID] = n
	}
	ns.mutex.Unlock()

	log.Printf("Loaded %d notifications", len(items))
	return nil
}
