package domain

import "time"

type ActivityType string

const (
	ActivityOrder    ActivityType = "order"
	ActivityStock    ActivityType = "stock"
	ActivitySystem   ActivityType = "system"
	ActivityAlert    ActivityType = "alert"
	ActivityReturn   ActivityType = "return"
	ActivityTransfer ActivityType = "transfer"
)

// Activity is an append-only audit line produced by a ledger mutation.
type Activity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
}

type NotificationType string

const (
	NotificationAlert   NotificationType = "alert"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
)

type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	Link      string           `json:"link,omitempty"`
}

// Deep links carried by notifications.
const (
	LinkProducts       = "/products"
	LinkPurchaseOrders = "/purchase-orders"
	LinkWarehouses     = "/warehouses"
	LinkReturns        = "/returns"
)

// Event is delivered to ledger subscribers once a mutation has committed.
type Event struct {
	Op            string         `json:"op"`
	Activities    []Activity     `json:"activities,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
	At            time.Time      `json:"at"`
}
