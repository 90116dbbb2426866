package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerConn is satisfied by *amqp.Connection.
type BrokerConn interface {
	IsClosed() bool
}

type HealthHandler struct {
	appName   string
	env       string
	startedAt time.Time
	store     Pinger
	broker    BrokerConn
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// NewHealthHandler takes a nil broker when events are disabled.
func NewHealthHandler(appName, env string, startedAt time.Time, store Pinger, broker BrokerConn) *HealthHandler {
	return &HealthHandler{
		appName:   appName,
		env:       env,
		startedAt: startedAt,
		store:     store,
		broker:    broker,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	storeStatus := h.checkStore(ctx)
	brokerStatus := h.checkBroker()

	statusCode := http.StatusOK
	if !storeStatus.OK || !brokerStatus.OK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.appName,
		"env":        h.env,
		"uptime_sec": int(time.Since(h.startedAt).Seconds()),
		"dependencies": gin.H{
			"store":    storeStatus,
			"rabbitmq": brokerStatus,
		},
	})
}

// Root answers the plain liveness probe.
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "working")
}

func (h *HealthHandler) checkStore(ctx context.Context) dependencyStatus {
	if err := h.store.Ping(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkBroker() dependencyStatus {
	if h.broker == nil {
		return dependencyStatus{OK: true, Message: "disabled"}
	}
	if h.broker.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
